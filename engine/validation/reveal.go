package validation

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/agentjobs/validation-gateway/model/validation"
	"github.com/agentjobs/validation-gateway/storage"
	"github.com/agentjobs/validation-gateway/utils/logging"
)

// scheduleReveal arms the reveal timer of a committed assignment. The delay is
// derived from the job's round; without a usable window the fallback delay is
// used. A previously armed reveal timer is replaced.
func (e *Engine) scheduleReveal(a *assignment) {
	lg := e.assignmentLogger(a)

	fallback := false
	var delay time.Duration
	round, err := e.contract.Round(e.ctx, a.jobID)
	if err != nil {
		lg.Warn().Err(err).Msg("could not read validation round, using fallback reveal delay")
		fallback = true
	} else {
		delay = RevealDelay(e.now(), round, e.config.RevealLead)
		fallback = delay <= 0
	}
	if fallback {
		delay = e.config.RevealFallbackDelay
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if round != nil {
		a.round = round
	}
	if a.status != validation.StatusCommitted || e.ctx.Err() != nil {
		return
	}

	if a.revealTimer != nil {
		a.revealTimer.Stop()
	}
	a.revealGen++
	gen := a.revealGen
	at := e.now().Add(delay).UTC()
	a.revealAt = &at
	a.revealTimer = time.AfterFunc(delay, func() {
		e.spawn(func() { e.reveal(a, gen) })
	})

	e.metrics.RevealScheduled(delay, fallback)
	lg.Info().
		Dur("delay", delay).
		Bool("fallback", fallback).
		Time("reveal_at", at).
		Msg("reveal scheduled")
}

// reveal submits the vote and salt of the assignment's commit. It only runs for
// the timer generation that armed it. Failures are recorded and the timer is
// not re-armed.
func (e *Engine) reveal(a *assignment, gen uint64) {
	a.mu.Lock()
	if gen != a.revealGen || a.status != validation.StatusCommitted {
		a.mu.Unlock()
		return
	}
	a.revealTimer = nil
	commit := a.commit
	a.mu.Unlock()

	lg := e.assignmentLogger(a)
	if !a.revealing.CAS(false, true) {
		lg.Debug().Msg("reveal already in progress")
		return
	}
	defer a.revealing.Store(false)

	if commit == nil {
		record, err := e.records.ByID(a.jobID, a.validator)
		if errors.Is(err, storage.ErrNotFound) {
			err = ErrNoCommitData
		}
		if err != nil {
			e.onRevealFailure(lg, a, fmt.Errorf("could not load commit data: %w", err))
			return
		}
		commit = commitDataFromRecord(record)
		if record.Revealed() {
			e.markRevealed(a, commit, *record.RevealTx, e.now().UTC())
			return
		}
		a.mu.Lock()
		a.commit = commit
		a.mu.Unlock()
	}

	identity, err := e.identity.EnsureIdentity(e.ctx, a.validator, identityRole)
	if err != nil {
		e.onRevealFailure(lg, a, fmt.Errorf("%w: %w", ErrIdentity, err))
		return
	}

	txHash, err := e.contract.RevealValidation(e.ctx, a.wallet, a.jobID, commit.Approve, commit.Salt, identity.Label, nil)
	e.metrics.RevealSubmitted(err == nil)
	if err != nil {
		e.onRevealFailure(lg, a, fmt.Errorf("could not reveal validation: %w", err))
		return
	}
	revealedAt := e.now().UTC()

	_, err = e.records.Update(a.jobID, a.validator, &validation.CommitRecordUpdate{
		RevealTx:   &txHash,
		RevealedAt: &revealedAt,
	})
	if err != nil {
		lg.Error().Err(err).Msg("could not persist reveal")
	}

	e.markRevealed(a, commit, txHash, revealedAt)
	lg.Info().
		Bool("approve", commit.Approve).
		Str("reveal_tx", logging.Hash(txHash)).
		Msg("validation revealed")
	e.audit(actionReveal, a.jobID, a.validator, true, map[string]interface{}{
		"approve": commit.Approve,
		"txHash":  txHash.Hex(),
	})
}

func (e *Engine) markRevealed(a *assignment, commit *validation.CommitData, txHash common.Hash, revealedAt time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.commit = commit
	a.reveal = &validation.RevealData{
		TxHash:     txHash,
		RevealedAt: revealedAt,
	}
	a.revealAt = nil
	a.err = ""
	a.setStatus(validation.StatusRevealed, revealedAt)
}

func (e *Engine) onRevealFailure(lg zerolog.Logger, a *assignment, err error) {
	a.mu.Lock()
	a.err = err.Error()
	a.updatedAt = e.now().UTC()
	a.mu.Unlock()

	lg.Error().Err(err).Msg("reveal failed")
	e.persistError(lg, a, err)
	e.audit(actionReveal, a.jobID, a.validator, false, map[string]interface{}{
		"reason": err.Error(),
	})
}
