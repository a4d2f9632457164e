package storage

import (
	"fmt"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/agentjobs/validation-gateway/model/validation"
)

// MergeCommitRecord applies the update to the existing record (nil if none
// exists yet) and returns the merged copy. The existing record is not modified.
// All backends share these merge semantics.
func MergeCommitRecord(
	existing *validation.CommitRecord,
	jobID validation.JobID,
	validator common.Address,
	update *validation.CommitRecordUpdate,
	now time.Time,
) (*validation.CommitRecord, error) {
	if update == nil {
		update = &validation.CommitRecordUpdate{}
	}
	if update.TouchesCommitData() && !update.HasCommitData() {
		return nil, fmt.Errorf("partial commit data for job %d: %w", jobID, ErrIncompleteCommit)
	}

	var merged validation.CommitRecord
	if existing == nil {
		if !update.HasCommitData() {
			return nil, fmt.Errorf("no commit data for new record of job %d: %w", jobID, ErrIncompleteCommit)
		}
		merged = validation.CommitRecord{
			JobID:     jobID,
			Validator: validation.AddressKey(validator),
		}
	} else {
		merged = *existing
		merged.Metadata = copyMetadata(existing.Metadata)
	}

	if update.HasCommitData() {
		merged.Approve = *update.Approve
		merged.Salt = *update.Salt
		merged.CommitHash = *update.CommitHash
	}
	if update.CommitTx != nil {
		merged.CommitTx = update.CommitTx
	}
	if update.CommittedAt != nil {
		merged.CommittedAt = update.CommittedAt
	}
	if update.RevealTx != nil {
		merged.RevealTx = update.RevealTx
	}
	if update.RevealedAt != nil {
		merged.RevealedAt = update.RevealedAt
	}
	if update.Evaluation != nil {
		merged.Evaluation = update.Evaluation
	}
	if update.Submission != nil {
		merged.Submission = update.Submission
	}
	if update.Dispute != nil {
		merged.Dispute = update.Dispute
	}
	if update.Resolution != nil {
		merged.Resolution = update.Resolution
	}
	if len(update.Metadata) > 0 {
		if merged.Metadata == nil {
			merged.Metadata = make(map[string]interface{}, len(update.Metadata))
		}
		for k, v := range update.Metadata {
			merged.Metadata[k] = v
		}
	}
	merged.UpdatedAt = now.UTC()

	return &merged, nil
}

func copyMetadata(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	c := make(map[string]interface{}, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// SortCommitRecords orders records by job and then by validator key.
func SortCommitRecords(records []*validation.CommitRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].JobID != records[j].JobID {
			return records[i].JobID < records[j].JobID
		}
		return records[i].Validator < records[j].Validator
	})
}
