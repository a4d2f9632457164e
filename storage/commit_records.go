package storage

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/agentjobs/validation-gateway/model/validation"
)

// CommitRecords represents durable storage for the per (job, validator)
// commit-reveal records. Implementations assume a single writing process.
type CommitRecords interface {

	// ByID returns the record for the given job and validator.
	// Expected errors during normal operations:
	//   - storage.ErrNotFound if no record exists
	ByID(jobID validation.JobID, validator common.Address) (*validation.CommitRecord, error)

	// ByJob returns all records stored for the job, ordered by validator key.
	// No errors are expected during normal operation.
	ByJob(jobID validation.JobID) ([]*validation.CommitRecord, error)

	// Unrevealed returns all records whose commit landed but whose reveal did
	// not, ordered by job and validator key.
	// No errors are expected during normal operation.
	Unrevealed() ([]*validation.CommitRecord, error)

	// Update merges the update into the stored record, creating it if needed,
	// and returns the resulting record.
	// Expected errors during normal operations:
	//   - storage.ErrIncompleteCommit if the update would create a record without
	//     the commit triple, or carries only part of it
	Update(jobID validation.JobID, validator common.Address, update *validation.CommitRecordUpdate) (*validation.CommitRecord, error)
}
