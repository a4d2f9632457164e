package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/agentjobs/validation-gateway/model/validation"
	"github.com/agentjobs/validation-gateway/module"
)

var (
	// ErrUnknownIdentity is returned for wallets without a configured identity.
	ErrUnknownIdentity = errors.New("no identity configured for wallet")

	// ErrRoleMismatch is returned when the configured identity holds another role.
	ErrRoleMismatch = errors.New("identity does not hold the requested role")
)

// StaticVerifier verifies identities against a fixed, operator-supplied list
// of labels and ENS names.
type StaticVerifier struct {
	mu         sync.RWMutex
	identities map[string]validation.Identity
}

var _ module.IdentityVerifier = (*StaticVerifier)(nil)

func NewStaticVerifier(identities ...validation.Identity) *StaticVerifier {
	v := &StaticVerifier{
		identities: make(map[string]validation.Identity, len(identities)),
	}
	for _, identity := range identities {
		v.Add(identity)
	}
	return v
}

// Add registers or replaces the identity of a wallet. An empty ENS name is
// derived from the label, an empty role defaults to validator.
func (v *StaticVerifier) Add(identity validation.Identity) {
	if identity.Role == "" {
		identity.Role = validation.RoleValidator.String()
	}
	if identity.ENSName == "" && identity.Label != "" {
		identity.ENSName = identity.Label + ".club.agi.eth"
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.identities[validation.AddressKey(identity.Address)] = identity
}

func (v *StaticVerifier) EnsureIdentity(_ context.Context, wallet common.Address, role string) (*validation.Identity, error) {
	v.mu.RLock()
	identity, ok := v.identities[validation.AddressKey(wallet)]
	v.mu.RUnlock()

	if !ok || identity.Label == "" {
		return nil, fmt.Errorf("%s: %w", wallet.Hex(), ErrUnknownIdentity)
	}
	if !strings.EqualFold(identity.Role, role) {
		return nil, fmt.Errorf("%s is %s, not %s: %w", wallet.Hex(), identity.Role, role, ErrRoleMismatch)
	}
	return &identity, nil
}
