package badger

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/ethereum/go-ethereum/common"

	"github.com/agentjobs/validation-gateway/model/validation"
	"github.com/agentjobs/validation-gateway/storage"
	"github.com/agentjobs/validation-gateway/storage/badger/operation"
)

// CommitRecords stores commit-reveal records in badger. Each update runs the
// read-merge-write cycle inside one transaction.
type CommitRecords struct {
	db  *badger.DB
	now func() time.Time
}

var _ storage.CommitRecords = (*CommitRecords)(nil)

func NewCommitRecords(db *badger.DB) *CommitRecords {
	return &CommitRecords{
		db:  db,
		now: time.Now,
	}
}

func (c *CommitRecords) ByID(jobID validation.JobID, validator common.Address) (*validation.CommitRecord, error) {
	var record validation.CommitRecord
	err := c.db.View(operation.RetrieveCommitRecord(jobID, validator, &record))
	if err != nil {
		return nil, fmt.Errorf("could not retrieve commit record: %w", err)
	}
	return &record, nil
}

func (c *CommitRecords) ByJob(jobID validation.JobID) ([]*validation.CommitRecord, error) {
	var records []*validation.CommitRecord
	err := c.db.View(func(tx *badger.Txn) error {
		var validators []common.Address
		err := operation.LookupJobValidators(jobID, &validators)(tx)
		if err != nil {
			return fmt.Errorf("could not lookup validators: %w", err)
		}
		for _, validator := range validators {
			var record validation.CommitRecord
			err = operation.RetrieveCommitRecord(jobID, validator, &record)(tx)
			if err != nil {
				return fmt.Errorf("could not retrieve record for %s: %w", validator.Hex(), err)
			}
			records = append(records, &record)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not retrieve commit records of job %d: %w", jobID, err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Validator < records[j].Validator
	})
	return records, nil
}

func (c *CommitRecords) Unrevealed() ([]*validation.CommitRecord, error) {
	var records []*validation.CommitRecord
	err := c.db.View(operation.FindUnrevealedCommitRecords(&records))
	if err != nil {
		return nil, fmt.Errorf("could not retrieve unrevealed commit records: %w", err)
	}
	storage.SortCommitRecords(records)
	return records, nil
}

func (c *CommitRecords) Update(jobID validation.JobID, validator common.Address, update *validation.CommitRecordUpdate) (*validation.CommitRecord, error) {
	var merged *validation.CommitRecord
	err := operation.RetryOnConflict(c.db.Update, func(tx *badger.Txn) error {
		var existing *validation.CommitRecord
		var stored validation.CommitRecord
		err := operation.RetrieveCommitRecord(jobID, validator, &stored)(tx)
		if err == nil {
			existing = &stored
		} else if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("could not retrieve existing record: %w", err)
		}

		merged, err = storage.MergeCommitRecord(existing, jobID, validator, update, c.now())
		if err != nil {
			return err
		}

		err = operation.UpsertCommitRecord(merged, validator)(tx)
		if err != nil {
			return fmt.Errorf("could not store record: %w", err)
		}
		return operation.SkipDuplicates(operation.IndexJobValidator(jobID, validator))(tx)
	})
	if err != nil {
		return nil, fmt.Errorf("could not update commit record of job %d: %w", jobID, err)
	}
	return merged, nil
}
