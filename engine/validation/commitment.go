package validation

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/agentjobs/validation-gateway/model/validation"
)

// CommitHash returns the blinded vote expected by the validation module:
// keccak256 over the tightly packed (uint256 jobId, uint256 nonce, bool approve, bytes32 salt).
func CommitHash(jobID validation.JobID, nonce *big.Int, approve bool, salt common.Hash) common.Hash {
	if nonce == nil {
		nonce = new(big.Int)
	}
	vote := byte(0)
	if approve {
		vote = 1
	}
	return crypto.Keccak256Hash(
		common.LeftPadBytes(jobID.Big().Bytes(), 32),
		common.LeftPadBytes(nonce.Bytes(), 32),
		[]byte{vote},
		salt.Bytes(),
	)
}

// NewSalt returns 32 bytes from a cryptographically secure source.
func NewSalt() (common.Hash, error) {
	var salt common.Hash
	_, err := rand.Read(salt[:])
	if err != nil {
		return common.Hash{}, fmt.Errorf("could not generate salt: %w", err)
	}
	return salt, nil
}
