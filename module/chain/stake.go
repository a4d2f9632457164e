package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/agentjobs/validation-gateway/model/validation"
	"github.com/agentjobs/validation-gateway/module"
)

// ErrInsufficientStake is returned when a wallet holds less than the required stake.
var ErrInsufficientStake = errors.New("insufficient stake")

// StakeChecker reads stakes from the on-chain stake manager.
type StakeChecker struct {
	contract *bind.BoundContract
}

var _ module.StakeManager = (*StakeChecker)(nil)

func NewStakeChecker(backend bind.ContractCaller, address common.Address) *StakeChecker {
	return &StakeChecker{
		contract: bind.NewBoundContract(address, StakeManagerABI, backend, nil, nil),
	}
}

// StakeOf returns the stake of the wallet for the role.
func (s *StakeChecker) StakeOf(ctx context.Context, wallet common.Address, role validation.Role) (*big.Int, error) {
	var out []interface{}
	err := s.contract.Call(&bind.CallOpts{Context: ctx}, &out, "stakeOf", wallet, uint8(role))
	if err != nil {
		return nil, fmt.Errorf("could not read stake of %s: %w", wallet.Hex(), err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("unexpected stake output length %d", len(out))
	}
	stake, ok := out[0].(*big.Int)
	if !ok || stake == nil {
		return nil, fmt.Errorf("unexpected stake type %T", out[0])
	}
	return stake, nil
}

// EnsureStake returns ErrInsufficientStake if the wallet's stake for the role
// is below the minimum. A nil or zero minimum is always met.
func (s *StakeChecker) EnsureStake(ctx context.Context, wallet common.Address, minimum *big.Int, role validation.Role) error {
	if minimum == nil || minimum.Sign() <= 0 {
		return nil
	}
	stake, err := s.StakeOf(ctx, wallet, role)
	if err != nil {
		return err
	}
	if stake.Cmp(minimum) < 0 {
		return fmt.Errorf("%s stake of %s is %s, minimum is %s: %w", role, wallet.Hex(), stake, minimum, ErrInsufficientStake)
	}
	return nil
}
