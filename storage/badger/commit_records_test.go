package badger_test

import (
	"testing"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentjobs/validation-gateway/model/validation"
	"github.com/agentjobs/validation-gateway/storage"
	bstorage "github.com/agentjobs/validation-gateway/storage/badger"
	"github.com/agentjobs/validation-gateway/storage/badger/operation"
	"github.com/agentjobs/validation-gateway/utils/unittest"
)

func TestCommitRecordStoreRetrieve(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		store := bstorage.NewCommitRecords(db)
		jobID := unittest.JobIDFixture()
		validator := unittest.AddressFixture()

		_, err := store.ByID(jobID, validator)
		require.ErrorIs(t, err, storage.ErrNotFound)

		update := unittest.CommitUpdateFixture(true)
		stored, err := store.Update(jobID, validator, update)
		require.NoError(t, err)

		retrieved, err := store.ByID(jobID, validator)
		require.NoError(t, err)
		assert.Equal(t, validation.AddressKey(validator), retrieved.Validator)
		assert.Equal(t, jobID, retrieved.JobID)
		assert.True(t, retrieved.Approve)
		assert.Equal(t, *update.Salt, retrieved.Salt)
		assert.Equal(t, *update.CommitHash, retrieved.CommitHash)
		assert.Equal(t, *update.CommitTx, *retrieved.CommitTx)
		assert.Equal(t, stored.UpdatedAt.Unix(), retrieved.UpdatedAt.Unix())
		assert.True(t, retrieved.Committed())
		assert.False(t, retrieved.Revealed())
	})
}

func TestCommitRecordIncompleteCommit(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		store := bstorage.NewCommitRecords(db)
		jobID := unittest.JobIDFixture()
		validator := unittest.AddressFixture()

		// a record can not be created without the commit triple
		_, err := store.Update(jobID, validator, &validation.CommitRecordUpdate{
			Metadata: map[string]interface{}{"lastError": "boom"},
		})
		require.ErrorIs(t, err, storage.ErrIncompleteCommit)

		_, err = store.ByID(jobID, validator)
		require.ErrorIs(t, err, storage.ErrNotFound)

		// a partial triple is rejected for existing records
		_, err = store.Update(jobID, validator, unittest.CommitUpdateFixture(false))
		require.NoError(t, err)
		approve := true
		_, err = store.Update(jobID, validator, &validation.CommitRecordUpdate{Approve: &approve})
		require.ErrorIs(t, err, storage.ErrIncompleteCommit)

		record, err := store.ByID(jobID, validator)
		require.NoError(t, err)
		assert.False(t, record.Approve)
	})
}

func TestCommitRecordMergesUpdates(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		store := bstorage.NewCommitRecords(db)
		jobID := unittest.JobIDFixture()
		validator := unittest.AddressFixture()

		commit := unittest.CommitUpdateFixture(true)
		commit.Metadata = map[string]interface{}{"notificationDelivered": true}
		_, err := store.Update(jobID, validator, commit)
		require.NoError(t, err)

		revealTx := unittest.HashFixture()
		revealedAt := time.Now().UTC()
		_, err = store.Update(jobID, validator, &validation.CommitRecordUpdate{
			RevealTx:   &revealTx,
			RevealedAt: &revealedAt,
			Metadata:   map[string]interface{}{"lastError": "none"},
		})
		require.NoError(t, err)

		record, err := store.ByID(jobID, validator)
		require.NoError(t, err)
		assert.Equal(t, *commit.Salt, record.Salt)
		assert.Equal(t, revealTx, *record.RevealTx)
		assert.True(t, record.Revealed())
		assert.Equal(t, true, record.Metadata["notificationDelivered"])
		assert.Equal(t, "none", record.Metadata["lastError"])
	})
}

func TestCommitRecordsByJob(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		store := bstorage.NewCommitRecords(db)
		jobID := unittest.JobIDFixture()
		validators := unittest.AddressListFixture(3)

		for _, validator := range validators {
			_, err := store.Update(jobID, validator, unittest.CommitUpdateFixture(true))
			require.NoError(t, err)
		}
		// records of other jobs are not returned
		_, err := store.Update(jobID+1, validators[0], unittest.CommitUpdateFixture(false))
		require.NoError(t, err)

		records, err := store.ByJob(jobID)
		require.NoError(t, err)
		require.Len(t, records, 3)
		for i := 1; i < len(records); i++ {
			assert.Less(t, records[i-1].Validator, records[i].Validator)
		}

		var indexed bool
		err = db.View(operation.CheckJobValidator(jobID, validators[1], &indexed))
		require.NoError(t, err)
		assert.True(t, indexed)
		err = db.View(operation.CheckJobValidator(jobID+1, validators[1], &indexed))
		require.NoError(t, err)
		assert.False(t, indexed)

		records, err = store.ByJob(jobID + 2)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestCommitRecordsUnrevealed(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		store := bstorage.NewCommitRecords(db)
		validators := unittest.AddressListFixture(2)

		_, err := store.Update(5, validators[0], unittest.CommitUpdateFixture(true))
		require.NoError(t, err)
		_, err = store.Update(2, validators[1], unittest.CommitUpdateFixture(true))
		require.NoError(t, err)

		revealTx := unittest.HashFixture()
		revealedAt := time.Now().UTC()
		_, err = store.Update(5, validators[0], &validation.CommitRecordUpdate{
			RevealTx:   &revealTx,
			RevealedAt: &revealedAt,
		})
		require.NoError(t, err)
		_, err = store.Update(7, validators[0], unittest.CommitUpdateFixture(false))
		require.NoError(t, err)

		records, err := store.Unrevealed()
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, validation.JobID(2), records[0].JobID)
		assert.Equal(t, validation.AddressKey(validators[1]), records[0].Validator)
		assert.Equal(t, validation.JobID(7), records[1].JobID)
		assert.Equal(t, validation.AddressKey(validators[0]), records[1].Validator)
	})
}
