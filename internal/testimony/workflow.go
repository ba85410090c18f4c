package testimony

import "errors"

// ErrIllegalTransition is returned when a reviewer-surface status change is
// not in the transition table.
var ErrIllegalTransition = errors.New("illegal status transition")

// reviewTransitions is the transition table exposed to the pastor-review
// surface. There is deliberately no path back to pending from either decided
// state; only a direct administrative edit can do that.
var reviewTransitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusDeclined},
	StatusApproved: {StatusDeclined},
	StatusDeclined: {StatusApproved},
}

// CanReview reports whether the reviewer surface may move a testimony from
// one status to another. Self-loops are allowed (idempotent no-ops).
func CanReview(from, to Status) bool {
	if from == to {
		return true
	}
	for _, t := range reviewTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// CheckReview validates a reviewer-surface transition, returning
// ErrIllegalTransition when the table forbids it.
func CheckReview(from, to Status) error {
	if !to.Valid() {
		return ErrIllegalTransition
	}
	if !CanReview(from, to) {
		return ErrIllegalTransition
	}
	return nil
}
