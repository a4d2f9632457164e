package logging

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/agentjobs/validation-gateway/model/validation"
)

// Log field keys shared across components.
const (
	KeyJobID     = "job_id"
	KeyValidator = "validator"
	KeyStatus    = "status"
	KeyAttempt   = "attempt"
)

// Address returns the canonical lower-case representation of an address.
func Address(addr common.Address) string {
	return validation.AddressKey(addr)
}

// Addresses returns the canonical representations of the given addresses.
func Addresses(addrs []common.Address) []string {
	ss := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		ss = append(ss, Address(addr))
	}
	return ss
}

// Hash returns the hex representation of a hash.
func Hash(h common.Hash) string {
	return h.Hex()
}
