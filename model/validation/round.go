package validation

import (
	"time"
)

// RoundMetadata is a point-in-time copy of the on-chain validation round of a
// job. Deadlines are unix timestamps in seconds; zero means unknown.
type RoundMetadata struct {
	CommitDeadline uint64 `json:"commitDeadline"`
	RevealDeadline uint64 `json:"revealDeadline"`
	Approvals      uint64 `json:"approvals"`
	Rejections     uint64 `json:"rejections"`
	CommitteeSize  uint64 `json:"committeeSize"`
	Tallied        bool   `json:"tallied"`
}

// CommitDeadlineTime returns the commit deadline, or the zero time if unknown.
func (r *RoundMetadata) CommitDeadlineTime() time.Time {
	if r == nil || r.CommitDeadline == 0 {
		return time.Time{}
	}
	return time.Unix(int64(r.CommitDeadline), 0)
}

// RevealDeadlineTime returns the reveal deadline, or the zero time if unknown.
func (r *RoundMetadata) RevealDeadlineTime() time.Time {
	if r == nil || r.RevealDeadline == 0 {
		return time.Time{}
	}
	return time.Unix(int64(r.RevealDeadline), 0)
}
