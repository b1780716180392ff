package reconcile

// Action is the decision the reconciler executed for one bin.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionSkipped Action = "skipped"
	ActionFailed  Action = "failed"
)

// Outcome records what happened to a single bin. Added and Removed count
// per-member successes reported by the server; under dry-run they hold the
// member counts the skipped requests would have carried.
type Outcome struct {
	Bin     string
	Label   string
	AlbumID string
	Action  Action
	Added   int
	Removed int
	Detail  string
}

// Summary aggregates the outcomes of one reconciliation pass.
type Summary struct {
	Outcomes      []Outcome
	Created       int
	Updated       int
	Skipped       int
	Failed        int
	AssetsAdded   int
	AssetsRemoved int
}

func (s *Summary) add(outcome Outcome) {
	s.Outcomes = append(s.Outcomes, outcome)
	switch outcome.Action {
	case ActionCreated:
		s.Created++
	case ActionUpdated:
		s.Updated++
	case ActionSkipped:
		s.Skipped++
	case ActionFailed:
		s.Failed++
	}
	s.AssetsAdded += outcome.Added
	s.AssetsRemoved += outcome.Removed
}

// Bins returns the number of bins the pass touched.
func (s *Summary) Bins() int {
	return len(s.Outcomes)
}

// HasFailures reports whether any bin failed.
func (s *Summary) HasFailures() bool {
	return s.Failed > 0
}
