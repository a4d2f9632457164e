package unittest

import (
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/agentjobs/validation-gateway/model/validation"
)

func randomBytes(n int) []byte {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		panic(err)
	}
	return b
}

func AddressFixture() common.Address {
	return common.BytesToAddress(randomBytes(common.AddressLength))
}

// AddressListFixture returns n random addresses.
func AddressListFixture(n int) []common.Address {
	list := make([]common.Address, 0, n)
	for i := 0; i < n; i++ {
		list = append(list, AddressFixture())
	}
	return list
}

func HashFixture() common.Hash {
	return common.BytesToHash(randomBytes(common.HashLength))
}

func JobIDFixture() validation.JobID {
	return validation.JobID(binary.BigEndian.Uint32(randomBytes(4)) + 1)
}

func PrivateKeyFixture() *ecdsa.PrivateKey {
	key, err := crypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	return key
}

// SubmissionFixture returns a submission whose result hash matches the
// keccak-256 digest of the given payload.
func SubmissionFixture(jobID validation.JobID, payload string, opts ...func(*validation.SubmissionInfo)) *validation.SubmissionInfo {
	sub := &validation.SubmissionInfo{
		JobID:      jobID,
		Worker:     AddressFixture(),
		ResultHash: crypto.Keccak256Hash([]byte(payload)),
		ResultURI:  fmt.Sprintf("ipfs://result-%d", jobID),
		Subdomain:  "worker",
		ReceivedAt: time.Now().UTC(),
	}
	for _, apply := range opts {
		apply(sub)
	}
	return sub
}

func WithResultURI(uri string) func(*validation.SubmissionInfo) {
	return func(sub *validation.SubmissionInfo) {
		sub.ResultURI = uri
	}
}

func WithResultHash(hash common.Hash) func(*validation.SubmissionInfo) {
	return func(sub *validation.SubmissionInfo) {
		sub.ResultHash = hash
	}
}

func EvaluationFixture(approve bool) *validation.Evaluation {
	reasons := []string{validation.ReasonIntegrityVerified}
	if !approve {
		reasons = []string{validation.ReasonHashMismatch}
	}
	return &validation.Evaluation{
		Approve:         approve,
		Reasons:         reasons,
		HashMatches:     approve,
		ResultAvailable: true,
		Worker:          AddressFixture(),
		ResultURI:       "ipfs://result",
		PayloadType:     validation.PayloadTypeJSONObject,
	}
}

// CommitUpdateFixture returns an update carrying a complete commit triple and
// the commit transaction.
func CommitUpdateFixture(approve bool) *validation.CommitRecordUpdate {
	salt := HashFixture()
	commitHash := HashFixture()
	tx := HashFixture()
	committedAt := time.Now().UTC()
	return &validation.CommitRecordUpdate{
		Approve:     &approve,
		Salt:        &salt,
		CommitHash:  &commitHash,
		CommitTx:    &tx,
		CommittedAt: &committedAt,
		Evaluation:  EvaluationFixture(approve),
	}
}

// RoundFixture returns round metadata with the given deadlines. A zero time
// leaves the deadline unknown.
func RoundFixture(commitDeadline, revealDeadline time.Time) *validation.RoundMetadata {
	round := &validation.RoundMetadata{CommitteeSize: 3}
	if !commitDeadline.IsZero() {
		round.CommitDeadline = uint64(commitDeadline.Unix())
	}
	if !revealDeadline.IsZero() {
		round.RevealDeadline = uint64(revealDeadline.Unix())
	}
	return round
}
