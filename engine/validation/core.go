package validation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentjobs/validation-gateway/engine/validation/evaluator"
	"github.com/agentjobs/validation-gateway/model/validation"
	"github.com/agentjobs/validation-gateway/module/trace"
	"github.com/agentjobs/validation-gateway/storage"
	"github.com/agentjobs/validation-gateway/utils/logging"
)

const (
	identityRole = "validator"

	auditComponent       = "validation"
	actionCommit         = "validation.commit"
	actionReveal         = "validation.reveal"
	actionDispute        = "validation.dispute"
	actionDisputeResolve = "validation.dispute-resolved"

	metaNotifiedAt            = "notifiedAt"
	metaNotificationDelivered = "notificationDelivered"
	metaLastError             = "lastError"
	metaLastErrorAt           = "lastErrorAt"
)

// evaluateAndCommit runs one evaluation attempt for the assignment and
// submits the resulting blinded vote. Concurrent calls for the same
// assignment are dropped.
func (e *Engine) evaluateAndCommit(submission *validation.SubmissionInfo, a *assignment) {
	if !a.processing.CAS(false, true) {
		return
	}
	lg := e.assignmentLogger(a)

	a.mu.Lock()
	if a.status.Committed() || a.status == validation.StatusCompleted || a.attempts >= e.config.MaxRetries {
		a.mu.Unlock()
		a.processing.Store(false)
		return
	}
	a.attempts++
	attempt := a.attempts
	a.setStatus(validation.StatusEvaluating, e.now().UTC())
	a.err = ""
	a.mu.Unlock()

	lg = lg.With().Uint(logging.KeyAttempt, attempt).Logger()
	lg.Debug().Msg("evaluating submission")

	e.notifyAwaiting(a, submission)

	span := e.telemetry.StartSpan(e.ctx, a.jobID, a.validator)
	commit, err := e.commit(e.ctx, lg, submission, a)
	outcome := trace.OutcomeSuccess
	if err != nil {
		outcome = trace.OutcomeFailure
	}
	e.closeSpan(lg, a, span, outcome)

	if err != nil {
		e.onCommitFailure(lg, a, attempt, err)
		return
	}

	a.mu.Lock()
	a.commit = commit
	a.setStatus(validation.StatusCommitted, e.now().UTC())
	a.mu.Unlock()

	lg.Info().
		Bool("approve", commit.Approve).
		Str("commit_tx", logging.Hash(commit.TxHash)).
		Msg("validation committed")
	e.audit(actionCommit, a.jobID, a.validator, true, map[string]interface{}{
		"attempt": attempt,
		"approve": commit.Approve,
		"txHash":  commit.TxHash.Hex(),
	})

	a.processing.Store(false)
	e.scheduleReveal(a)
}

// commit checks the preconditions of the validator, evaluates the submission
// and sends the commit transaction. A failure to persist the record after the
// transaction landed is logged only.
func (e *Engine) commit(ctx context.Context, lg zerolog.Logger, submission *validation.SubmissionInfo, a *assignment) (*validation.CommitData, error) {
	err := e.stake.EnsureStake(ctx, a.validator, e.config.MinimumStake, validation.RoleValidator)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStakeRequirement, err)
	}
	identity, err := e.identity.EnsureIdentity(ctx, a.validator, identityRole)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIdentity, err)
	}
	a.mu.Lock()
	a.ensName = identity.ENSName
	a.mu.Unlock()

	result := e.fetcher.Fetch(ctx, submission)
	evaluation := evaluator.Evaluate(result, submission)
	e.metrics.EvaluationCompleted(evaluation.Approve, evaluation.Reasons)
	lg.Debug().
		Bool("approve", evaluation.Approve).
		Strs("reasons", evaluation.Reasons).
		Str("source", evaluation.Source).
		Msg("submission evaluated")

	nonce, err := e.contract.JobNonce(ctx, a.jobID)
	if err != nil {
		return nil, fmt.Errorf("could not read job nonce: %w", err)
	}
	salt, err := NewSalt()
	if err != nil {
		return nil, err
	}
	approve := evaluation.Approve
	commitHash := CommitHash(a.jobID, nonce, approve, salt)

	txHash, err := e.contract.CommitValidation(ctx, a.wallet, a.jobID, commitHash, identity.Label, nil)
	e.metrics.CommitSubmitted(err == nil)
	if err != nil {
		return nil, fmt.Errorf("could not commit validation: %w", err)
	}
	committedAt := e.now().UTC()

	_, err = e.records.Update(a.jobID, a.validator, &validation.CommitRecordUpdate{
		Approve:     &approve,
		Salt:        &salt,
		CommitHash:  &commitHash,
		CommitTx:    &txHash,
		CommittedAt: &committedAt,
		Evaluation:  evaluation,
		Submission:  submission,
		Metadata:    e.notificationMetadata(a),
	})
	if err != nil {
		lg.Error().Err(err).Msg("could not persist commit record")
	}

	return &validation.CommitData{
		Approve:     approve,
		Salt:        salt,
		CommitHash:  commitHash,
		Nonce:       nonce.String(),
		TxHash:      txHash,
		CommittedAt: committedAt,
		Evaluation:  evaluation,
	}, nil
}

func (e *Engine) closeSpan(lg zerolog.Logger, a *assignment, span validation.SpanHandle, outcome string) {
	sample, err := e.telemetry.EndSpan(span, outcome)
	if err != nil {
		lg.Warn().Err(err).Msg("could not close evaluation span")
		return
	}
	a.mu.Lock()
	a.energySample = sample
	a.mu.Unlock()
	err = e.telemetry.Publish(e.ctx, sample)
	if err != nil {
		lg.Warn().Err(err).Msg("could not publish energy sample")
	}
}

// onCommitFailure records the failure and arms a retry unless the failure is
// fatal or the attempts are exhausted.
func (e *Engine) onCommitFailure(lg zerolog.Logger, a *assignment, attempt uint, err error) {
	a.mu.Lock()
	a.err = err.Error()
	a.setStatus(validation.StatusFailed, e.now().UTC())
	a.mu.Unlock()

	lg.Error().Err(err).Msg("validation attempt failed")
	e.persistError(lg, a, err)
	e.audit(actionCommit, a.jobID, a.validator, false, map[string]interface{}{
		"attempt": attempt,
		"reason":  err.Error(),
	})

	a.processing.Store(false)

	if isFatal(err) || attempt >= e.config.MaxRetries {
		return
	}
	e.scheduleRetry(lg, a)
}

func (e *Engine) scheduleRetry(lg zerolog.Logger, a *assignment) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status != validation.StatusFailed || e.ctx.Err() != nil {
		return
	}
	if a.retryTimer != nil {
		a.retryTimer.Stop()
	}
	a.retryTimer = time.AfterFunc(e.config.RetryDelay, func() {
		e.spawn(func() { e.retry(a) })
	})
	e.metrics.RetryScheduled()
	lg.Info().Dur("delay", e.config.RetryDelay).Msg("validation retry scheduled")
}

// retry re-runs the evaluation with the current submission of the job. It is
// a no-op once the job was completed.
func (e *Engine) retry(a *assignment) {
	current, submission, ok := e.tracked(a.jobID, a.key())
	if !ok || current != a || submission == nil {
		return
	}
	e.evaluateAndCommit(submission, a)
}

// notifyAwaiting tells the agent owning the validator key that a result awaits
// validation. It is sent at most once per assignment.
func (e *Engine) notifyAwaiting(a *assignment, submission *validation.SubmissionInfo) {
	a.mu.Lock()
	if a.notifiedAt != nil {
		a.mu.Unlock()
		return
	}
	now := e.now().UTC()
	a.notifiedAt = &now
	a.mu.Unlock()

	delivered := e.notify(&validation.Notification{
		ID:        uuid.New().String(),
		Type:      validation.EventValidationAwaiting,
		JobID:     a.jobID,
		Validator: a.validator,
		Timestamp: now,
		Payload: map[string]interface{}{
			"worker":     logging.Address(submission.Worker),
			"resultHash": submission.ResultHash.Hex(),
			"resultURI":  submission.ResultURI,
			"subdomain":  submission.Subdomain,
		},
	})

	a.mu.Lock()
	a.notificationDelivered = delivered
	a.mu.Unlock()
}

// notify delivers the notification within the configured timeout.
func (e *Engine) notify(n *validation.Notification) bool {
	ctx, cancel := context.WithTimeout(e.ctx, e.config.NotificationTimeout)
	defer cancel()
	delivered := e.notifier.Notify(ctx, n.Validator, n)
	e.metrics.NotificationSent(string(n.Type), delivered)
	if !delivered {
		e.log.Debug().
			Uint64(logging.KeyJobID, uint64(n.JobID)).
			Str(logging.KeyValidator, logging.Address(n.Validator)).
			Str("type", string(n.Type)).
			Msg("notification not delivered")
	}
	return delivered
}

func (e *Engine) notificationMetadata(a *assignment) map[string]interface{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.notifiedAt == nil {
		return nil
	}
	return map[string]interface{}{
		metaNotifiedAt:            a.notifiedAt.Format(time.RFC3339Nano),
		metaNotificationDelivered: a.notificationDelivered,
	}
}

// persistError stores the last error of the assignment in its record. There is
// nothing to update before the first commit landed.
func (e *Engine) persistError(lg zerolog.Logger, a *assignment, cause error) {
	_, err := e.records.Update(a.jobID, a.validator, &validation.CommitRecordUpdate{
		Metadata: map[string]interface{}{
			metaLastError:   cause.Error(),
			metaLastErrorAt: e.now().UTC().Format(time.RFC3339Nano),
		},
	})
	if err != nil && !errors.Is(err, storage.ErrIncompleteCommit) {
		lg.Warn().Err(err).Msg("could not persist assignment error")
	}
}

// rehydrate restores the commit and reveal state of a new assignment from its
// durable record, if one exists.
func (e *Engine) rehydrate(a *assignment) {
	record, err := e.records.ByID(a.jobID, a.validator)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			lg := e.assignmentLogger(a)
			lg.Error().Err(err).Msg("could not load commit record")
		}
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.commit = commitDataFromRecord(record)
	a.setStatus(validation.StatusCommitted, a.updatedAt)
	if record.Revealed() {
		reveal := &validation.RevealData{TxHash: *record.RevealTx}
		if record.RevealedAt != nil {
			reveal.RevealedAt = *record.RevealedAt
		}
		a.reveal = reveal
		a.setStatus(validation.StatusRevealed, a.updatedAt)
	}
	if at, ok := record.Metadata[metaNotifiedAt].(string); ok {
		if notifiedAt, err := time.Parse(time.RFC3339Nano, at); err == nil {
			a.notifiedAt = &notifiedAt
		}
	}
	if delivered, ok := record.Metadata[metaNotificationDelivered].(bool); ok {
		a.notificationDelivered = delivered
	}
}

func commitDataFromRecord(record *validation.CommitRecord) *validation.CommitData {
	commit := &validation.CommitData{
		Approve:    record.Approve,
		Salt:       record.Salt,
		CommitHash: record.CommitHash,
		Evaluation: record.Evaluation,
	}
	if record.CommitTx != nil {
		commit.TxHash = *record.CommitTx
	}
	if record.CommittedAt != nil {
		commit.CommittedAt = *record.CommittedAt
	}
	return commit
}
