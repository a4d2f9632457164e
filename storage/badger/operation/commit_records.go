package operation

import (
	"github.com/dgraph-io/badger/v2"
	"github.com/ethereum/go-ethereum/common"

	"github.com/agentjobs/validation-gateway/model/validation"
)

func UpsertCommitRecord(record *validation.CommitRecord, validator common.Address) func(*badger.Txn) error {
	return upsert(makePrefix(codeCommitRecord, record.JobID, validator), record)
}

func RetrieveCommitRecord(jobID validation.JobID, validator common.Address, record *validation.CommitRecord) func(*badger.Txn) error {
	return retrieve(makePrefix(codeCommitRecord, jobID, validator), record)
}

func IndexJobValidator(jobID validation.JobID, validator common.Address) func(*badger.Txn) error {
	return insert(makePrefix(codeJobValidators, jobID, validator), validator)
}

func CheckJobValidator(jobID validation.JobID, validator common.Address, exists *bool) func(*badger.Txn) error {
	return check(makePrefix(codeJobValidators, jobID, validator), exists)
}

// LookupJobValidators returns all validators with a commit record for the job.
func LookupJobValidators(jobID validation.JobID, validators *[]common.Address) func(*badger.Txn) error {
	*validators = (*validators)[:0]
	create := func() interface{} {
		return new(common.Address)
	}
	handle := func(_ []byte, entity interface{}) error {
		*validators = append(*validators, *entity.(*common.Address))
		return nil
	}
	return traverse(makePrefix(codeJobValidators, jobID), create, handle)
}

// FindUnrevealedCommitRecords returns all committed records without a reveal.
func FindUnrevealedCommitRecords(records *[]*validation.CommitRecord) func(*badger.Txn) error {
	create := func() interface{} {
		return new(validation.CommitRecord)
	}
	handle := func(_ []byte, entity interface{}) error {
		record := entity.(*validation.CommitRecord)
		if record.Committed() && !record.Revealed() {
			*records = append(*records, record)
		}
		return nil
	}
	return traverse(makePrefix(codeCommitRecord), create, handle)
}
