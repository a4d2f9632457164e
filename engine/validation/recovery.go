package validation

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/agentjobs/validation-gateway/model/validation"
	"github.com/agentjobs/validation-gateway/module/component"
	"github.com/agentjobs/validation-gateway/module/irrecoverable"
	"github.com/agentjobs/validation-gateway/utils/logging"
)

// recoverOnStart tracks the unrevealed commits found in storage before the
// engine reports ready.
func (e *Engine) recoverOnStart(_ irrecoverable.SignalerContext, ready component.ReadyFunc) {
	recovered, err := e.RecoverUnrevealed()
	if err != nil {
		e.log.Error().Err(err).Msg("could not recover unrevealed commits")
	} else if recovered > 0 {
		e.log.Info().Int("assignments", recovered).Msg("recovered unrevealed commits")
	}
	ready()
}

// RecoverUnrevealed tracks every managed validator whose stored commit was
// never revealed, which reschedules its reveal. Commits of tallied rounds and
// of resolved disputes are skipped. It returns the number of assignments
// handed to the selection path.
func (e *Engine) RecoverUnrevealed() (int, error) {
	records, err := e.records.Unrevealed()
	if err != nil {
		return 0, fmt.Errorf("could not list unrevealed commit records: %w", err)
	}

	var jobs []validation.JobID
	validators := make(map[validation.JobID][]common.Address)
	for _, record := range records {
		if record.Resolution != nil || !common.IsHexAddress(record.Validator) {
			continue
		}
		validator := common.HexToAddress(record.Validator)
		if _, managed := e.wallets[validation.AddressKey(validator)]; !managed {
			continue
		}
		if _, ok := validators[record.JobID]; !ok {
			jobs = append(jobs, record.JobID)
		}
		validators[record.JobID] = append(validators[record.JobID], validator)
	}

	recovered := 0
	for _, jobID := range jobs {
		round, err := e.contract.Round(e.ctx, jobID)
		if err != nil {
			// the reveal falls back to the configured delay
			e.log.Warn().Err(err).Uint64(logging.KeyJobID, uint64(jobID)).Msg("could not read round of unrevealed commit")
		} else if round != nil && round.Tallied {
			e.log.Debug().Uint64(logging.KeyJobID, uint64(jobID)).Msg("round already tallied, skipping unrevealed commit")
			continue
		}
		e.OnValidatorSelected(jobID, validators[jobID])
		recovered += len(validators[jobID])
	}
	return recovered, nil
}
