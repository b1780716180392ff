package classify

import (
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"albumsync/internal/services/immich"
)

// Mode selects how assets are grouped into bins.
type Mode string

const (
	// ModeFolder groups assets by their containing folder path.
	ModeFolder Mode = "folder"
	// ModeLibrary groups assets by their source library id.
	ModeLibrary Mode = "library"
)

// ParseMode converts a layout flag into a Mode.
func ParseMode(folderLayout bool) Mode {
	if folderLayout {
		return ModeFolder
	}
	return ModeLibrary
}

// Bin is one logical grouping of assets destined for a single album.
type Bin struct {
	// Key identifies the bin across runs: the folder path in folder mode, the
	// library id in library mode.
	Key string
	// Label is the album name for this bin: the folder base name or the
	// library display name.
	Label string
	// AssetIDs holds the member asset ids, sorted for deterministic requests.
	AssetIDs []string
}

// SkipSet holds the exclusion rules applied to asset folders. Exact entries
// match a containing folder itself; recursive entries match any strict
// ancestor of the containing folder.
type SkipSet struct {
	exact     map[string]struct{}
	recursive map[string]struct{}
}

// NewSkipSet builds a SkipSet from configured skip paths. A path whose final
// element is "*" marks its parent as a recursive entry; all other paths are
// exact entries. Paths are cleaned so trailing slashes do not matter.
func NewSkipSet(paths []string) SkipSet {
	set := SkipSet{
		exact:     make(map[string]struct{}),
		recursive: make(map[string]struct{}),
	}
	for _, raw := range paths {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		cleaned := filepath.Clean(trimmed)
		if filepath.Base(cleaned) == "*" {
			set.recursive[filepath.Dir(cleaned)] = struct{}{}
			continue
		}
		set.exact[cleaned] = struct{}{}
	}
	return set
}

// Excludes reports whether a containing folder is ruled out by the skip set.
func (s SkipSet) Excludes(folder string) bool {
	folder = filepath.Clean(folder)
	if _, ok := s.exact[folder]; ok {
		return true
	}
	if len(s.recursive) == 0 {
		return false
	}
	for dir := filepath.Dir(folder); ; dir = filepath.Dir(dir) {
		if _, ok := s.recursive[dir]; ok {
			return true
		}
		if dir == filepath.Dir(dir) {
			return false
		}
	}
}

// Partition groups assets into bins for the given mode.
//
// libraryFilter is the set of admitted library ids; a nil filter admits every
// asset. libraryNames maps library ids to display names and is consulted only
// in library mode (a missing id yields an empty label). Assets whose
// containing folder is excluded by the skip set are omitted from every bin.
//
// Bins are returned in collated key order so repeated runs process them the
// same way; member ids are sorted within each bin.
func Partition(assets []immich.Asset, libraryFilter map[string]struct{}, skips SkipSet, mode Mode, libraryNames map[string]string) []Bin {
	members := make(map[string]map[string]struct{})
	for _, asset := range assets {
		if libraryFilter != nil {
			if _, ok := libraryFilter[asset.LibraryID]; !ok {
				continue
			}
		}

		folder := filepath.Dir(asset.OriginalPath)
		if skips.Excludes(folder) {
			continue
		}

		key := asset.LibraryID
		if mode == ModeFolder {
			key = folder
		}
		if _, ok := members[key]; !ok {
			members[key] = make(map[string]struct{})
		}
		members[key][asset.ID] = struct{}{}
	}

	keys := make([]string, 0, len(members))
	for key := range members {
		keys = append(keys, key)
	}
	sortKeys(keys)

	bins := make([]Bin, 0, len(keys))
	for _, key := range keys {
		label := libraryNames[key]
		if mode == ModeFolder {
			label = filepath.Base(key)
		}

		ids := make([]string, 0, len(members[key]))
		for id := range members[key] {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		bins = append(bins, Bin{Key: key, Label: label, AssetIDs: ids})
	}
	return bins
}

// sortKeys orders bin keys case-insensitively with a bytewise tiebreak so the
// order is total even when keys differ only by case.
func sortKeys(keys []string) {
	collator := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(keys, func(i, j int) bool {
		switch collator.CompareString(keys[i], keys[j]) {
		case -1:
			return true
		case 1:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
}
