package module

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/agentjobs/validation-gateway/model/validation"
)

// ValidatorWallet is a validator key managed by this process. Key custody and
// signing live behind this interface.
type ValidatorWallet interface {
	Address() common.Address

	// Transactor returns signing options for a state-changing contract call
	// bound to the given context.
	Transactor(ctx context.Context) (*bind.TransactOpts, error)
}

// ValidationContract is the client of the on-chain validation module.
type ValidationContract interface {

	// JobNonce returns the replay-protection counter of the job, which is part
	// of the commit hash.
	JobNonce(ctx context.Context, jobID validation.JobID) (*big.Int, error)

	// CommitValidation submits the blinded vote and blocks until the
	// transaction is included. It returns the transaction hash.
	CommitValidation(ctx context.Context, wallet ValidatorWallet, jobID validation.JobID, commitHash common.Hash, label string, proof []common.Hash) (common.Hash, error)

	// RevealValidation reveals the vote and salt used for the commit and blocks
	// until the transaction is included.
	RevealValidation(ctx context.Context, wallet ValidatorWallet, jobID validation.JobID, approve bool, salt common.Hash, label string, proof []common.Hash) (common.Hash, error)

	// Round returns a snapshot of the job's validation round.
	Round(ctx context.Context, jobID validation.JobID) (*validation.RoundMetadata, error)
}

// ValidationEvents consumes the chain events that drive the validation
// lifecycle.
type ValidationEvents interface {
	OnValidatorSelected(jobID validation.JobID, validators []common.Address)
	OnResultSubmitted(submission *validation.SubmissionInfo)
	OnJobCompleted(jobID validation.JobID)
	OnDisputeRaised(jobID validation.JobID, claimant common.Address, evidenceHash common.Hash)
	OnDisputeResolved(jobID validation.JobID, resolver common.Address, employerWins bool)
}

// ResultFetcher resolves the result reference of a submission. It never fails;
// an unavailable result is reported with a nil payload.
type ResultFetcher interface {
	Fetch(ctx context.Context, submission *validation.SubmissionInfo) validation.FetchResult
}

// Notifier pushes best-effort notifications to the agent owning a validator
// key. It reports whether the notification was delivered.
type Notifier interface {
	Notify(ctx context.Context, validator common.Address, notification *validation.Notification) bool
}
