package domain

// OutcomeKind tags the result of fetching one working entity.
type OutcomeKind int

const (
	// OutcomeSkipped means the entity had no URL; no capability was invoked.
	OutcomeSkipped OutcomeKind = iota
	// OutcomeSucceeded means the entity now carries a thumbnail.
	OutcomeSucceeded
	// OutcomeFailed means fetching or resizing failed; Err holds the reason.
	OutcomeFailed
)

// String returns a human-readable representation of the kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FetchOutcome is the result of fetching and resizing one entity.
// Entity is always the entity the outcome refers to; on success it carries
// the thumbnail.
type FetchOutcome struct {
	Kind   OutcomeKind
	Entity WorkingEntity
	Err    error
}

// Succeeded builds a successful outcome.
func Succeeded(e WorkingEntity) FetchOutcome {
	return FetchOutcome{Kind: OutcomeSucceeded, Entity: e}
}

// Skipped builds an outcome for an entity with nothing to fetch.
func Skipped(e WorkingEntity) FetchOutcome {
	return FetchOutcome{Kind: OutcomeSkipped, Entity: e}
}

// Failed builds a failed outcome.
func Failed(e WorkingEntity, err error) FetchOutcome {
	return FetchOutcome{Kind: OutcomeFailed, Entity: e, Err: err}
}
