package chain

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentjobs/validation-gateway/model/validation"
	"github.com/agentjobs/validation-gateway/utils/unittest"
)

func TestEnsureStake(t *testing.T) {
	backend := newFakeBackend(StakeManagerABI)
	backend.outputs["stakeOf"] = []interface{}{big.NewInt(500)}
	checker := NewStakeChecker(backend, unittest.AddressFixture())
	wallet := unittest.AddressFixture()

	stake, err := checker.StakeOf(context.Background(), wallet, validation.RoleValidator)
	require.NoError(t, err)
	assert.Equal(t, int64(500), stake.Int64())

	require.NoError(t, checker.EnsureStake(context.Background(), wallet, big.NewInt(500), validation.RoleValidator))

	err = checker.EnsureStake(context.Background(), wallet, big.NewInt(501), validation.RoleValidator)
	require.ErrorIs(t, err, ErrInsufficientStake)

	// no minimum configured does not touch the chain
	backend.failCalls = 1
	require.NoError(t, checker.EnsureStake(context.Background(), wallet, nil, validation.RoleValidator))
	assert.Equal(t, 3, backend.calls)
}
