package validation

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// JobID is the on-chain identifier of a job in the job registry.
type JobID uint64

// Big returns the job ID as a uint256-compatible big integer for contract calls.
func (id JobID) Big() *big.Int {
	return new(big.Int).SetUint64(uint64(id))
}

func (id JobID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// JobIDFromBig converts a contract job ID. The second return value is false if
// the value does not fit into a JobID.
func JobIDFromBig(v *big.Int) (JobID, bool) {
	if v == nil || v.Sign() < 0 || !v.IsUint64() {
		return 0, false
	}
	return JobID(v.Uint64()), true
}

// AddressKey returns the canonical lower-case hex key of a validator address.
// All maps and durable records are keyed by it.
func AddressKey(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

// Role is the stake manager role enumeration.
type Role uint8

const (
	RoleAgent Role = iota
	RoleValidator
	RolePlatform
)

func (r Role) String() string {
	switch r {
	case RoleAgent:
		return "agent"
	case RoleValidator:
		return "validator"
	case RolePlatform:
		return "platform"
	default:
		return "unknown"
	}
}
