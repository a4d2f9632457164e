package validation

import (
	"errors"
)

var (
	// ErrNotConfigured is returned when the engine is created without a
	// validation module client.
	ErrNotConfigured = errors.New("validation module not configured")

	// ErrStakeRequirement marks attempts that failed the minimum stake check.
	// Such failures are not retried.
	ErrStakeRequirement = errors.New("validator stake requirement not met")

	// ErrIdentity marks attempts that failed identity verification. Such
	// failures are not retried.
	ErrIdentity = errors.New("validator identity verification failed")

	// ErrNoCommitData is returned when a reveal finds neither in-memory nor
	// durable commit data.
	ErrNoCommitData = errors.New("no commit data for reveal")
)

// isFatal reports whether the error requires operator intervention before
// another attempt can succeed.
func isFatal(err error) bool {
	return errors.Is(err, ErrStakeRequirement) || errors.Is(err, ErrIdentity)
}
