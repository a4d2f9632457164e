package module

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/agentjobs/validation-gateway/model/validation"
)

// StakeManager checks that a wallet holds the minimum stake for a role.
type StakeManager interface {
	EnsureStake(ctx context.Context, wallet common.Address, minimum *big.Int, role validation.Role) error
}

// IdentityVerifier verifies that a wallet owns the identity required for a
// role and returns the label to submit on-chain.
type IdentityVerifier interface {
	EnsureIdentity(ctx context.Context, wallet common.Address, role string) (*validation.Identity, error)
}

// Telemetry measures the work done for an evaluation and publishes the
// resulting sample.
type Telemetry interface {
	StartSpan(ctx context.Context, jobID validation.JobID, validator common.Address) validation.SpanHandle
	EndSpan(span validation.SpanHandle, outcome string) (*validation.EnergySample, error)
	Publish(ctx context.Context, sample *validation.EnergySample) error
}

// AuditEntry is one audit log line.
type AuditEntry struct {
	Component string                 `json:"component"`
	Action    string                 `json:"action"`
	JobID     validation.JobID       `json:"jobId"`
	Agent     string                 `json:"agent"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Success   bool                   `json:"success"`
}

// Auditor records audit entries. Implementations must not block for long and
// must not fail the caller.
type Auditor interface {
	Log(entry AuditEntry)
}
