package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/agentjobs/validation-gateway/model/validation"
	"github.com/agentjobs/validation-gateway/module"
	"github.com/agentjobs/validation-gateway/utils/logging"
)

var (
	// ErrTransactionReverted is returned when a transaction was included but failed.
	ErrTransactionReverted = errors.New("transaction reverted")

	// ErrMalformedRound is returned when the round returned by the contract
	// can not be interpreted.
	ErrMalformedRound = errors.New("malformed round data")
)

const (
	DefaultReadRetries    = 3
	DefaultReadRetryDelay = 500 * time.Millisecond
)

// Backend is the chain connection used by the contract clients. It is
// satisfied by *ethclient.Client.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// ValidationClient is a client of the on-chain validation module. Read calls
// are retried with a constant backoff; transactions are sent once and awaited
// until they are mined.
type ValidationClient struct {
	log            zerolog.Logger
	address        common.Address
	backend        Backend
	contract       *bind.BoundContract
	readRetries    uint64
	readRetryDelay time.Duration
}

var _ module.ValidationContract = (*ValidationClient)(nil)

// NewValidationClient returns a new client of the validation module deployed at the given address.
func NewValidationClient(log zerolog.Logger, backend Backend, address common.Address, opts ...func(*ValidationClient)) *ValidationClient {
	c := &ValidationClient{
		log:            log.With().Str("module", "validation_client").Str("contract", address.Hex()).Logger(),
		address:        address,
		backend:        backend,
		contract:       bind.NewBoundContract(address, ValidationModuleABI, backend, backend, backend),
		readRetries:    DefaultReadRetries,
		readRetryDelay: DefaultReadRetryDelay,
	}
	for _, apply := range opts {
		apply(c)
	}
	return c
}

// WithReadRetries configures how often failed read calls are retried and how
// long to wait between attempts.
func WithReadRetries(retries uint64, delay time.Duration) func(*ValidationClient) {
	return func(c *ValidationClient) {
		c.readRetries = retries
		c.readRetryDelay = delay
	}
}

func (c *ValidationClient) JobNonce(ctx context.Context, jobID validation.JobID) (*big.Int, error) {
	out, err := c.call(ctx, "jobNonce", jobID.Big())
	if err != nil {
		return nil, fmt.Errorf("could not read nonce of job %d: %w", jobID, err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("unexpected nonce output length %d", len(out))
	}
	nonce, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected nonce type %T", out[0])
	}
	return nonce, nil
}

func (c *ValidationClient) Round(ctx context.Context, jobID validation.JobID) (*validation.RoundMetadata, error) {
	out, err := c.call(ctx, "rounds", jobID.Big())
	if err != nil {
		return nil, fmt.Errorf("could not read round of job %d: %w", jobID, err)
	}
	round, err := decodeRound(out)
	if err != nil {
		return nil, fmt.Errorf("could not decode round of job %d: %w", jobID, err)
	}
	return round, nil
}

// CommitValidation submits the commit transaction. This function returns only
// once the transaction has been mined. An error is returned if the transaction
// could not be sent or reverted.
func (c *ValidationClient) CommitValidation(
	ctx context.Context,
	wallet module.ValidatorWallet,
	jobID validation.JobID,
	commitHash common.Hash,
	label string,
	proof []common.Hash,
) (common.Hash, error) {
	return c.transact(ctx, wallet, jobID, "commitValidation", jobID.Big(), [32]byte(commitHash), label, proofArg(proof))
}

// RevealValidation submits the reveal transaction and waits until it is mined.
func (c *ValidationClient) RevealValidation(
	ctx context.Context,
	wallet module.ValidatorWallet,
	jobID validation.JobID,
	approve bool,
	salt common.Hash,
	label string,
	proof []common.Hash,
) (common.Hash, error) {
	return c.transact(ctx, wallet, jobID, "revealValidation", jobID.Big(), approve, [32]byte(salt), label, proofArg(proof))
}

func (c *ValidationClient) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	backoff := retry.NewConstant(c.readRetryDelay)
	backoff = retry.WithMaxRetries(c.readRetries, backoff)

	var out []interface{}
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		out = nil
		err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...)
		if err != nil {
			c.log.Warn().Err(err).Str("method", method).Int("attempt", attempt).Msg("contract call failed")
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ValidationClient) transact(ctx context.Context, wallet module.ValidatorWallet, jobID validation.JobID, method string, args ...interface{}) (common.Hash, error) {
	log := c.log.With().
		Str("method", method).
		Str(logging.KeyJobID, jobID.String()).
		Str(logging.KeyValidator, logging.Address(wallet.Address())).
		Logger()

	opts, err := wallet.Transactor(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("could not get transactor: %w", err)
	}

	tx, err := c.contract.Transact(opts, method, args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("could not send %s transaction: %w", method, err)
	}
	log.Debug().Str("tx", tx.Hash().Hex()).Msg("transaction sent, waiting for inclusion")

	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		return tx.Hash(), fmt.Errorf("could not wait for %s transaction %s: %w", method, tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return tx.Hash(), fmt.Errorf("%s transaction %s: %w", method, tx.Hash().Hex(), ErrTransactionReverted)
	}

	log.Info().
		Str("tx", tx.Hash().Hex()).
		Uint64("block", receipt.BlockNumber.Uint64()).
		Msg("transaction included")
	return tx.Hash(), nil
}

func proofArg(proof []common.Hash) [][32]byte {
	arg := make([][32]byte, 0, len(proof))
	for _, p := range proof {
		arg = append(arg, [32]byte(p))
	}
	return arg
}

// decodeRound converts the outputs of the rounds getter. Unknown deadlines are
// reported as zero.
func decodeRound(out []interface{}) (*validation.RoundMetadata, error) {
	method := ValidationModuleABI.Methods["rounds"]
	if len(out) != len(method.Outputs) {
		return nil, fmt.Errorf("expected %d outputs, got %d: %w", len(method.Outputs), len(out), ErrMalformedRound)
	}

	values := make(map[string]uint64, 5)
	for _, i := range []int{2, 3, 4, 5, 7} {
		name := method.Outputs[i].Name
		v, ok := out[i].(*big.Int)
		if !ok || v == nil {
			return nil, fmt.Errorf("output %s has type %T: %w", name, out[i], ErrMalformedRound)
		}
		if v.Sign() < 0 || !v.IsUint64() {
			return nil, fmt.Errorf("output %s out of range: %w", name, ErrMalformedRound)
		}
		values[name] = v.Uint64()
	}
	tallied, ok := out[6].(bool)
	if !ok {
		return nil, fmt.Errorf("output tallied has type %T: %w", out[6], ErrMalformedRound)
	}

	return &validation.RoundMetadata{
		CommitDeadline: values["commitDeadline"],
		RevealDeadline: values["revealDeadline"],
		Approvals:      values["approvals"],
		Rejections:     values["rejections"],
		CommitteeSize:  values["committeeSize"],
		Tallied:        tallied,
	}, nil
}
