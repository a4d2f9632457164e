package validation

// Status is the local lifecycle state of a validation assignment.
type Status string

const (
	StatusSelected   Status = "selected"
	StatusEvaluating Status = "evaluating"
	StatusCommitted  Status = "committed"
	StatusRevealed   Status = "revealed"
	StatusFailed     Status = "failed"
	StatusCompleted  Status = "completed"
)

// Committed reports whether the on-chain commit for the assignment has landed.
func (s Status) Committed() bool {
	return s == StatusCommitted || s == StatusRevealed
}

// Terminal reports whether no further local transition can happen, except for
// the move to completed when the job closes.
func (s Status) Terminal() bool {
	return s == StatusRevealed || s == StatusCompleted
}

// CanTransition reports whether moving from s to next is a legal step of the
// assignment state machine. Any state may move to completed.
func (s Status) CanTransition(next Status) bool {
	if next == StatusCompleted {
		return s != StatusCompleted
	}
	switch s {
	case StatusSelected:
		return next == StatusEvaluating || next == StatusCommitted || next == StatusRevealed
	case StatusEvaluating:
		return next == StatusCommitted || next == StatusFailed
	case StatusFailed:
		return next == StatusEvaluating
	case StatusCommitted:
		return next == StatusRevealed
	default:
		return false
	}
}
