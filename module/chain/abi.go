package chain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const validationModuleABI = `[
	{"type":"function","name":"jobNonce","stateMutability":"view",
	 "inputs":[{"name":"jobId","type":"uint256"}],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"commitValidation","stateMutability":"nonpayable",
	 "inputs":[{"name":"jobId","type":"uint256"},{"name":"commitHash","type":"bytes32"},{"name":"subdomain","type":"string"},{"name":"proof","type":"bytes32[]"}],
	 "outputs":[]},
	{"type":"function","name":"revealValidation","stateMutability":"nonpayable",
	 "inputs":[{"name":"jobId","type":"uint256"},{"name":"approve","type":"bool"},{"name":"salt","type":"bytes32"},{"name":"subdomain","type":"string"},{"name":"proof","type":"bytes32[]"}],
	 "outputs":[]},
	{"type":"function","name":"rounds","stateMutability":"view",
	 "inputs":[{"name":"jobId","type":"uint256"}],
	 "outputs":[{"name":"validators","type":"address[]"},{"name":"participants","type":"address[]"},{"name":"commitDeadline","type":"uint256"},{"name":"revealDeadline","type":"uint256"},{"name":"approvals","type":"uint256"},{"name":"rejections","type":"uint256"},{"name":"tallied","type":"bool"},{"name":"committeeSize","type":"uint256"}]},
	{"type":"event","name":"ValidatorsSelected","anonymous":false,
	 "inputs":[{"name":"jobId","type":"uint256","indexed":true},{"name":"validators","type":"address[]","indexed":false}]}
]`

const jobRegistryABI = `[
	{"type":"event","name":"ResultSubmitted","anonymous":false,
	 "inputs":[{"name":"jobId","type":"uint256","indexed":true},{"name":"worker","type":"address","indexed":true},{"name":"resultHash","type":"bytes32","indexed":false},{"name":"resultURI","type":"string","indexed":false},{"name":"subdomain","type":"string","indexed":false}]},
	{"type":"event","name":"JobCompleted","anonymous":false,
	 "inputs":[{"name":"jobId","type":"uint256","indexed":true},{"name":"success","type":"bool","indexed":false}]}
]`

const disputeModuleABI = `[
	{"type":"event","name":"DisputeRaised","anonymous":false,
	 "inputs":[{"name":"jobId","type":"uint256","indexed":true},{"name":"claimant","type":"address","indexed":true},{"name":"evidenceHash","type":"bytes32","indexed":false}]},
	{"type":"event","name":"DisputeResolved","anonymous":false,
	 "inputs":[{"name":"jobId","type":"uint256","indexed":true},{"name":"resolver","type":"address","indexed":true},{"name":"employerWins","type":"bool","indexed":false}]}
]`

const stakeManagerABI = `[
	{"type":"function","name":"stakeOf","stateMutability":"view",
	 "inputs":[{"name":"user","type":"address"},{"name":"role","type":"uint8"}],
	 "outputs":[{"name":"","type":"uint256"}]}
]`

// Parsed contract interfaces.
var (
	ValidationModuleABI = mustParseABI("validation module", validationModuleABI)
	JobRegistryABI      = mustParseABI("job registry", jobRegistryABI)
	DisputeModuleABI    = mustParseABI("dispute module", disputeModuleABI)
	StakeManagerABI     = mustParseABI("stake manager", stakeManagerABI)
)

// Event names as declared in the contract interfaces.
const (
	EventValidatorsSelected = "ValidatorsSelected"
	EventResultSubmitted    = "ResultSubmitted"
	EventJobCompleted       = "JobCompleted"
	EventDisputeRaised      = "DisputeRaised"
	EventDisputeResolved    = "DisputeResolved"
)

func mustParseABI(name string, definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(fmt.Sprintf("invalid %s abi: %v", name, err))
	}
	return parsed
}
