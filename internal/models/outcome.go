package models

// Outcome reports what a mutating catalog operation did. Persisted state for
// NotFound and Refused is left untouched.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeNotFound
	OutcomeRefused
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeRefused:
		return "refused"
	default:
		return "unknown"
	}
}
