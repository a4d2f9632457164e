package validation

import (
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/agentjobs/validation-gateway/model/validation"
	"github.com/agentjobs/validation-gateway/module"
	"github.com/agentjobs/validation-gateway/storage"
	"github.com/agentjobs/validation-gateway/utils/logging"
)

// OnDisputeRaised appends the dispute to the record of every managed validator
// that committed for the job and notifies its agent. In-memory assignments are
// not involved.
func (e *Engine) OnDisputeRaised(jobID validation.JobID, claimant common.Address, evidenceHash common.Hash) {
	accepted := e.spawn(func() {
		raisedAt := e.now().UTC()
		dispute := &validation.DisputeInfo{
			Claimant:     claimant,
			EvidenceHash: evidenceHash,
			RaisedAt:     raisedAt,
		}
		e.applyDisputeFact(jobID, validation.EventValidationDispute, actionDispute,
			&validation.CommitRecordUpdate{Dispute: dispute},
			map[string]interface{}{
				"claimant":     logging.Address(claimant),
				"evidenceHash": evidenceHash.Hex(),
			})
	})
	if !accepted {
		e.droppedDispute(jobID, validation.EventValidationDispute)
	}
}

// OnDisputeResolved appends the resolution to the record of every managed
// validator that committed for the job and notifies its agent.
func (e *Engine) OnDisputeResolved(jobID validation.JobID, resolver common.Address, employerWins bool) {
	accepted := e.spawn(func() {
		resolution := &validation.ResolutionInfo{
			Resolver:     resolver,
			EmployerWins: employerWins,
			ResolvedAt:   e.now().UTC(),
		}
		e.applyDisputeFact(jobID, validation.EventValidationDisputeResolved, actionDisputeResolve,
			&validation.CommitRecordUpdate{Resolution: resolution},
			map[string]interface{}{
				"resolver":     logging.Address(resolver),
				"employerWins": employerWins,
			})
	})
	if !accepted {
		e.droppedDispute(jobID, validation.EventValidationDisputeResolved)
	}
}

func (e *Engine) droppedDispute(jobID validation.JobID, eventType validation.EventType) {
	e.log.Warn().
		Uint64(logging.KeyJobID, uint64(jobID)).
		Str("event", string(eventType)).
		Msg("engine is shutting down, dispute event not recorded")
}

// applyDisputeFact stores the update for each managed validator holding a
// record for the job, then notifies and records the delivery. Validators
// without a record are skipped.
func (e *Engine) applyDisputeFact(
	jobID validation.JobID,
	eventType validation.EventType,
	action string,
	update *validation.CommitRecordUpdate,
	payload map[string]interface{},
) {
	for _, key := range e.walletKeys {
		validator := e.wallets[key].Address()
		lg := e.log.With().
			Uint64(logging.KeyJobID, uint64(jobID)).
			Str(logging.KeyValidator, key).
			Str("event", string(eventType)).
			Logger()

		_, err := e.records.ByID(jobID, validator)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			lg.Error().Err(err).Msg("could not load commit record")
			e.audit(action, jobID, validator, false, map[string]interface{}{"reason": err.Error()})
			continue
		}

		_, err = e.records.Update(jobID, validator, update)
		if err != nil {
			lg.Error().Err(err).Msg("could not record dispute")
			e.audit(action, jobID, validator, false, map[string]interface{}{"reason": err.Error()})
			continue
		}

		now := e.now().UTC()
		delivered := e.notify(&validation.Notification{
			ID:        uuid.New().String(),
			Type:      eventType,
			JobID:     jobID,
			Validator: validator,
			Timestamp: now,
			Payload:   payload,
		})

		_, err = e.records.Update(jobID, validator, &validation.CommitRecordUpdate{
			Metadata: map[string]interface{}{
				string(eventType): map[string]interface{}{
					metaNotifiedAt:            now.Format(time.RFC3339Nano),
					metaNotificationDelivered: delivered,
				},
			},
		})
		if err != nil {
			lg.Warn().Err(err).Msg("could not record notification delivery")
		}

		lg.Info().Bool("delivered", delivered).Msg("dispute recorded")
		e.audit(action, jobID, validator, true, payload)
	}
}

func (e *Engine) audit(action string, jobID validation.JobID, validator common.Address, success bool, metadata map[string]interface{}) {
	e.auditor.Log(module.AuditEntry{
		Component: auditComponent,
		Action:    action,
		JobID:     jobID,
		Agent:     logging.Address(validator),
		Metadata:  metadata,
		Success:   success,
	})
}
