package validation

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/atomic"

	"github.com/agentjobs/validation-gateway/model/validation"
	"github.com/agentjobs/validation-gateway/module"
)

// assignment is the in-memory state of one (job, validator) pair. The
// processing flag serializes evaluate-and-commit attempts and the revealing
// flag serializes reveals; concurrent attempts are dropped, not queued. All
// other fields are guarded by mu.
type assignment struct {
	jobID     validation.JobID
	validator common.Address
	wallet    module.ValidatorWallet

	processing *atomic.Bool
	revealing  *atomic.Bool

	mu                    sync.Mutex
	status                validation.Status
	ensName               string
	createdAt             time.Time
	updatedAt             time.Time
	attempts              uint
	round                 *validation.RoundMetadata
	commit                *validation.CommitData
	reveal                *validation.RevealData
	err                   string
	revealTimer           *time.Timer
	revealGen             uint64
	revealAt              *time.Time
	retryTimer            *time.Timer
	energySample          *validation.EnergySample
	notifiedAt            *time.Time
	notificationDelivered bool
}

func newAssignment(jobID validation.JobID, wallet module.ValidatorWallet, now time.Time) *assignment {
	return &assignment{
		jobID:      jobID,
		validator:  wallet.Address(),
		wallet:     wallet,
		processing: atomic.NewBool(false),
		revealing:  atomic.NewBool(false),
		status:     validation.StatusSelected,
		createdAt:  now,
		updatedAt:  now,
	}
}

func (a *assignment) key() string {
	return validation.AddressKey(a.validator)
}

// setStatus moves the assignment to the given status if the lifecycle allows
// the step and reports whether it did. Must be called with mu held.
func (a *assignment) setStatus(status validation.Status, now time.Time) bool {
	if !a.status.CanTransition(status) {
		return false
	}
	a.status = status
	a.updatedAt = now
	return true
}

// stopTimers cancels the armed reveal and retry timers. Must be called with mu held.
func (a *assignment) stopTimers() {
	if a.revealTimer != nil {
		a.revealTimer.Stop()
		a.revealTimer = nil
	}
	// a timer that already fired must not run the reveal anymore
	a.revealGen++
	a.revealAt = nil
	if a.retryTimer != nil {
		a.retryTimer.Stop()
		a.retryTimer = nil
	}
}

// snapshot returns a copy of the assignment without timers or key material.
func (a *assignment) snapshot() validation.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := validation.Snapshot{
		JobID:                 a.jobID,
		Validator:             a.validator,
		ENSName:               a.ensName,
		Status:                a.status,
		CreatedAt:             a.createdAt,
		UpdatedAt:             a.updatedAt,
		Attempts:              a.attempts,
		Error:                 a.err,
		NotificationDelivered: a.notificationDelivered,
	}
	if a.round != nil {
		round := *a.round
		s.Round = &round
	}
	if a.commit != nil {
		commit := *a.commit
		s.Commit = &commit
	}
	if a.reveal != nil {
		reveal := *a.reveal
		s.Reveal = &reveal
	}
	if a.revealAt != nil {
		at := *a.revealAt
		s.RevealScheduledFor = &at
	}
	if a.energySample != nil {
		sample := *a.energySample
		s.EnergySample = &sample
	}
	if a.notifiedAt != nil {
		at := *a.notifiedAt
		s.NotifiedAt = &at
	}
	return s
}
