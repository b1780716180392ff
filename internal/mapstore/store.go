package mapstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"albumsync/internal/fileutil"
	"albumsync/internal/logging"
	"albumsync/internal/services"
)

// Table names inside the persisted document. The two layout modes keep
// independent tables side by side so a run in one mode never disturbs the
// other mode's entries.
const (
	FolderLayout = "folder_layout"
	NameLayout   = "name_layout"
)

// Entry is one persisted association between a bin key and an album id.
type Entry struct {
	Key     string
	AlbumID string
}

// Store persists bin-key to album-id tables in a JSON document. The raw
// document is retained on load so unknown top-level keys and the inactive
// mode's table survive a save untouched.
type Store struct {
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
	doc    map[string]json.RawMessage
}

// New creates a store for the given mapping file path. An empty path yields an
// inert store: loads return empty tables and saves do nothing, so runs without
// persistence always fall through to create semantics.
func New(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logging.NewComponentLogger(logger, "mapstore"),
		doc:    make(map[string]json.RawMessage),
	}
}

// Active reports whether a mapping file is configured.
func (s *Store) Active() bool {
	return s.path != ""
}

// Path returns the configured mapping file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the mapping document from disk. An absent file is an empty
// document, but only if its parent directory exists; a missing parent is a
// configuration error surfaced before any remote call is made. A file that
// fails to parse is treated as empty with a warning so a damaged document
// cannot wedge every future run.
func (s *Store) Load() error {
	if !s.Active() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = make(map[string]json.RawMessage)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if _, dirErr := os.Stat(filepath.Dir(s.path)); dirErr != nil {
				return services.Wrap(
					services.ErrConfiguration,
					"mapping",
					"load",
					fmt.Sprintf("parent directory of %q does not exist", s.path),
					dirErr,
				)
			}
			return nil
		}
		return fmt.Errorf("read mapping file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("mapping file is malformed, starting with empty tables",
			logging.String("path", s.path),
			logging.Error(err))
		return nil
	}
	s.doc = doc

	s.logger.Debug("loaded mapping document",
		logging.String("path", s.path),
		logging.Int("tables", len(doc)))
	return nil
}

// Table returns a copy of the named table. Absent or malformed tables decode
// to an empty map.
func (s *Store) Table(name string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.decodeTable(name)
}

func (s *Store) decodeTable(name string) map[string]string {
	table := make(map[string]string)
	raw, ok := s.doc[name]
	if !ok {
		return table
	}
	if err := json.Unmarshal(raw, &table); err != nil {
		s.logger.Warn("mapping table is malformed, treating as empty",
			logging.String("table", name),
			logging.Error(err))
		return make(map[string]string)
	}
	return table
}

// SetTable replaces the named table in the in-memory document.
func (s *Store) SetTable(name string, table map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setTableLocked(name, table)
}

func (s *Store) setTableLocked(name string, table map[string]string) {
	raw, err := json.Marshal(table)
	if err != nil {
		// A map[string]string cannot fail to marshal; keep the old value if it
		// somehow does.
		s.logger.Warn("marshal mapping table failed", logging.String("table", name), logging.Error(err))
		return
	}
	s.doc[name] = raw
}

// Save writes the document to disk atomically. A store without a configured
// path saves nothing.
func (s *Store) Save() error {
	if !s.Active() {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal mapping document: %w", err)
	}
	data = append(data, '\n')

	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("persist mapping file: %w", err)
	}

	s.logger.Debug("saved mapping document", logging.String("path", s.path))
	return nil
}

// SaveTable replaces the named table and persists the document in one step.
func (s *Store) SaveTable(name string, table map[string]string) error {
	s.SetTable(name, table)
	return s.Save()
}

// Entries returns the named table's entries sorted by key for display.
func (s *Store) Entries(name string) []Entry {
	table := s.Table(name)
	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, Entry{Key: key, AlbumID: table[key]})
	}
	return entries
}

// Remove deletes one entry from the named table and persists the change.
func (s *Store) Remove(name, key string) error {
	if !s.Active() {
		return errors.New("no mapping file configured")
	}

	s.mu.Lock()
	table := s.decodeTable(name)
	if _, ok := table[key]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("key %q not found in %s", key, name)
	}
	delete(table, key)
	s.setTableLocked(name, table)
	s.mu.Unlock()

	return s.Save()
}

// Clear empties the named table and persists the change. The other table is
// untouched.
func (s *Store) Clear(name string) error {
	if !s.Active() {
		return errors.New("no mapping file configured")
	}
	return s.SaveTable(name, map[string]string{})
}
