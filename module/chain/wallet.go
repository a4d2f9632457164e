package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/agentjobs/validation-gateway/module"
)

// KeyedWallet is a validator wallet backed by an in-memory private key.
type KeyedWallet struct {
	key     *ecdsa.PrivateKey
	address common.Address
	chainID *big.Int
}

var _ module.ValidatorWallet = (*KeyedWallet)(nil)

func NewKeyedWallet(key *ecdsa.PrivateKey, chainID *big.Int) *KeyedWallet {
	return &KeyedWallet{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		chainID: new(big.Int).Set(chainID),
	}
}

// WalletFromHex parses a hex encoded private key, with or without 0x prefix.
func WalletFromHex(hexKey string, chainID *big.Int) (*KeyedWallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("could not parse private key: %w", err)
	}
	return NewKeyedWallet(key, chainID), nil
}

func (w *KeyedWallet) Address() common.Address {
	return w.address
}

func (w *KeyedWallet) Transactor(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(w.key, w.chainID)
	if err != nil {
		return nil, fmt.Errorf("could not create transactor for %s: %w", w.address.Hex(), err)
	}
	opts.Context = ctx
	return opts, nil
}
