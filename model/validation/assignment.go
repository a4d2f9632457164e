package validation

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// CommitData is what the assignment remembers about its on-chain commit. The
// reveal must use exactly this Approve and Salt.
type CommitData struct {
	Approve     bool        `json:"approve"`
	Salt        common.Hash `json:"salt"`
	CommitHash  common.Hash `json:"commitHash"`
	Nonce       string      `json:"nonce,omitempty"`
	TxHash      common.Hash `json:"txHash"`
	CommittedAt time.Time   `json:"committedAt"`
	Evaluation  *Evaluation `json:"evaluation,omitempty"`
}

// RevealData is what the assignment remembers about its on-chain reveal.
type RevealData struct {
	TxHash     common.Hash `json:"txHash"`
	RevealedAt time.Time   `json:"revealedAt"`
}

// Snapshot is the flattened, JSON-serializable view of one assignment used by
// operational queries. It never carries timers or key material.
type Snapshot struct {
	JobID                 JobID          `json:"jobId"`
	Validator             common.Address `json:"validator"`
	ENSName               string         `json:"ensName,omitempty"`
	Status                Status         `json:"status"`
	CreatedAt             time.Time      `json:"createdAt"`
	UpdatedAt             time.Time      `json:"updatedAt"`
	Attempts              uint           `json:"attempts"`
	Round                 *RoundMetadata `json:"round,omitempty"`
	Commit                *CommitData    `json:"commit,omitempty"`
	Reveal                *RevealData    `json:"reveal,omitempty"`
	Error                 string         `json:"error,omitempty"`
	RevealScheduledFor    *time.Time     `json:"revealScheduledFor,omitempty"`
	EnergySample          *EnergySample  `json:"energySample,omitempty"`
	NotifiedAt            *time.Time     `json:"notifiedAt,omitempty"`
	NotificationDelivered bool           `json:"notificationDelivered"`
}

// AssignmentList is the answer to an assignment listing query.
type AssignmentList struct {
	Active  []Snapshot `json:"active"`
	History []Snapshot `json:"history"`
}
