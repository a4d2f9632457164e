package validation

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// DisputeInfo is the dispute fact appended to a commit record when the
// dispute module raises a dispute for the job.
type DisputeInfo struct {
	Claimant     common.Address `json:"claimant"`
	EvidenceHash common.Hash    `json:"evidenceHash"`
	RaisedAt     time.Time      `json:"raisedAt"`
}

// ResolutionInfo is the outcome of a dispute.
type ResolutionInfo struct {
	Resolver     common.Address `json:"resolver"`
	EmployerWins bool           `json:"employerWins"`
	ResolvedAt   time.Time      `json:"resolvedAt"`
}

// CommitRecord is the durable ground truth of one validator's participation in
// a job's round. Approve, Salt and CommitHash are always present together.
type CommitRecord struct {
	JobID       JobID                  `json:"jobId"`
	Validator   string                 `json:"validator"`
	Approve     bool                   `json:"approve"`
	Salt        common.Hash            `json:"salt"`
	CommitHash  common.Hash            `json:"commitHash"`
	CommitTx    *common.Hash           `json:"commitTx,omitempty"`
	CommittedAt *time.Time             `json:"committedAt,omitempty"`
	RevealTx    *common.Hash           `json:"revealTx,omitempty"`
	RevealedAt  *time.Time             `json:"revealedAt,omitempty"`
	Evaluation  *Evaluation            `json:"evaluation,omitempty"`
	Submission  *SubmissionInfo        `json:"submission,omitempty"`
	Dispute     *DisputeInfo           `json:"dispute,omitempty"`
	Resolution  *ResolutionInfo        `json:"resolution,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

// Committed reports whether the commit transaction is known to have landed.
func (r *CommitRecord) Committed() bool {
	return r != nil && r.CommitTx != nil
}

// Revealed reports whether the reveal transaction is known to have landed.
func (r *CommitRecord) Revealed() bool {
	return r != nil && r.RevealTx != nil
}

// CommitRecordUpdate is a partial update of a CommitRecord. Only non-nil
// fields replace the stored ones; Metadata is merged key by key.
type CommitRecordUpdate struct {
	Approve     *bool
	Salt        *common.Hash
	CommitHash  *common.Hash
	CommitTx    *common.Hash
	CommittedAt *time.Time
	RevealTx    *common.Hash
	RevealedAt  *time.Time
	Evaluation  *Evaluation
	Submission  *SubmissionInfo
	Dispute     *DisputeInfo
	Resolution  *ResolutionInfo
	Metadata    map[string]interface{}
}

// HasCommitData reports whether the update carries the full commit triple.
func (u *CommitRecordUpdate) HasCommitData() bool {
	return u.Approve != nil && u.Salt != nil && u.CommitHash != nil
}

// TouchesCommitData reports whether the update carries any part of the commit
// triple.
func (u *CommitRecordUpdate) TouchesCommitData() bool {
	return u.Approve != nil || u.Salt != nil || u.CommitHash != nil
}
