package validation

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Identity is the verified identity of a validator wallet. Label is submitted
// on-chain together with commits and reveals.
type Identity struct {
	Address common.Address `json:"address"`
	Label   string         `json:"label"`
	ENSName string         `json:"ensName"`
	Role    string         `json:"role"`
}

// SpanHandle identifies an open measurement span.
type SpanHandle struct {
	ID        string         `json:"id"`
	JobID     JobID          `json:"jobId"`
	Validator common.Address `json:"validator"`
	StartedAt time.Time      `json:"startedAt"`
}

// EnergySample is the measurement produced when a span is closed.
type EnergySample struct {
	SpanID     string         `json:"spanId"`
	JobID      JobID          `json:"jobId"`
	Validator  common.Address `json:"validator"`
	Outcome    string         `json:"outcome"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
	DurationMs int64          `json:"durationMs"`
}
