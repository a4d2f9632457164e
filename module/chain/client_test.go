package chain

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentjobs/validation-gateway/model/validation"
	"github.com/agentjobs/validation-gateway/utils/unittest"
)

func newTestClient(backend *fakeBackend) *ValidationClient {
	return NewValidationClient(unittest.Logger(), backend, unittest.AddressFixture(), WithReadRetries(2, time.Millisecond))
}

func TestJobNonce(t *testing.T) {
	backend := newFakeBackend(ValidationModuleABI)
	backend.outputs["jobNonce"] = []interface{}{big.NewInt(7)}
	client := newTestClient(backend)

	nonce, err := client.JobNonce(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, int64(7), nonce.Int64())
}

func TestReadRetries(t *testing.T) {
	t.Run("transient failures are retried", func(t *testing.T) {
		backend := newFakeBackend(ValidationModuleABI)
		backend.outputs["jobNonce"] = []interface{}{big.NewInt(1)}
		backend.failCalls = 2
		client := newTestClient(backend)

		nonce, err := client.JobNonce(context.Background(), 12)
		require.NoError(t, err)
		assert.Equal(t, int64(1), nonce.Int64())
		assert.Equal(t, 3, backend.calls)
	})

	t.Run("gives up after the configured retries", func(t *testing.T) {
		backend := newFakeBackend(ValidationModuleABI)
		backend.failCalls = 10
		client := newTestClient(backend)

		_, err := client.JobNonce(context.Background(), 12)
		require.Error(t, err)
		assert.Equal(t, 3, backend.calls)
	})
}

func TestRound(t *testing.T) {
	backend := newFakeBackend(ValidationModuleABI)
	backend.outputs["rounds"] = []interface{}{
		[]common.Address{unittest.AddressFixture()},
		[]common.Address{},
		big.NewInt(1_700_000_000),
		big.NewInt(1_700_000_600),
		big.NewInt(2),
		big.NewInt(1),
		true,
		big.NewInt(3),
	}
	client := newTestClient(backend)

	round, err := client.Round(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, &validation.RoundMetadata{
		CommitDeadline: 1_700_000_000,
		RevealDeadline: 1_700_000_600,
		Approvals:      2,
		Rejections:     1,
		CommitteeSize:  3,
		Tallied:        true,
	}, round)
}

func TestDecodeRoundMalformed(t *testing.T) {
	_, err := decodeRound([]interface{}{big.NewInt(1)})
	require.ErrorIs(t, err, ErrMalformedRound)

	out := []interface{}{
		[]common.Address{}, []common.Address{},
		"not a number", big.NewInt(1), big.NewInt(0), big.NewInt(0), false, big.NewInt(1),
	}
	_, err = decodeRound(out)
	require.ErrorIs(t, err, ErrMalformedRound)

	out[2] = new(big.Int).Lsh(big.NewInt(1), 70)
	_, err = decodeRound(out)
	require.ErrorIs(t, err, ErrMalformedRound)
}

func TestCommitValidation(t *testing.T) {
	backend := newFakeBackend(ValidationModuleABI)
	client := newTestClient(backend)
	wallet := NewKeyedWallet(unittest.PrivateKeyFixture(), big.NewInt(31337))
	commitHash := unittest.HashFixture()
	proof := []common.Hash{unittest.HashFixture()}

	txHash, err := client.CommitValidation(context.Background(), wallet, 9, commitHash, "alice", proof)
	require.NoError(t, err)

	sent := backend.sentTransactions()
	require.Len(t, sent, 1)
	assert.Equal(t, sent[0].Hash(), txHash)

	method, err := ValidationModuleABI.MethodById(sent[0].Data()[:4])
	require.NoError(t, err)
	assert.Equal(t, "commitValidation", method.Name)
	args, err := method.Inputs.Unpack(sent[0].Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, int64(9), args[0].(*big.Int).Int64())
	assert.Equal(t, [32]byte(commitHash), args[1].([32]byte))
	assert.Equal(t, "alice", args[2].(string))
	assert.Equal(t, [][32]byte{[32]byte(proof[0])}, args[3].([][32]byte))

	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(31337)), sent[0])
	require.NoError(t, err)
	assert.Equal(t, wallet.Address(), sender)
}

func TestRevealValidation(t *testing.T) {
	backend := newFakeBackend(ValidationModuleABI)
	client := newTestClient(backend)
	wallet := NewKeyedWallet(unittest.PrivateKeyFixture(), big.NewInt(31337))
	salt := unittest.HashFixture()

	_, err := client.RevealValidation(context.Background(), wallet, 9, true, salt, "alice", nil)
	require.NoError(t, err)

	sent := backend.sentTransactions()
	require.Len(t, sent, 1)
	args, err := ValidationModuleABI.Methods["revealValidation"].Inputs.Unpack(sent[0].Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, true, args[1].(bool))
	assert.Equal(t, [32]byte(salt), args[2].([32]byte))
	assert.Empty(t, args[4].([][32]byte))
}

func TestTransactionReverted(t *testing.T) {
	backend := newFakeBackend(ValidationModuleABI)
	backend.receiptStatus = types.ReceiptStatusFailed
	client := newTestClient(backend)
	wallet := NewKeyedWallet(unittest.PrivateKeyFixture(), big.NewInt(1))

	txHash, err := client.CommitValidation(context.Background(), wallet, 1, unittest.HashFixture(), "", nil)
	require.ErrorIs(t, err, ErrTransactionReverted)
	assert.NotEqual(t, common.Hash{}, txHash)
}
