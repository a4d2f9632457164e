package files_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentjobs/validation-gateway/model/validation"
	"github.com/agentjobs/validation-gateway/storage"
	"github.com/agentjobs/validation-gateway/storage/files"
	"github.com/agentjobs/validation-gateway/utils/unittest"
)

func TestCommitRecordFiles(t *testing.T) {
	unittest.RunWithTempDir(t, func(dir string) {
		recordDir := filepath.Join(dir, "commits")
		store, err := files.NewCommitRecords(recordDir)
		require.NoError(t, err)

		jobID := validation.JobID(42)
		validator := unittest.AddressFixture()

		t.Run("missing record", func(t *testing.T) {
			_, err := store.ByID(jobID, validator)
			require.ErrorIs(t, err, storage.ErrNotFound)
		})

		t.Run("create without commit data fails", func(t *testing.T) {
			_, err := store.Update(jobID, validator, &validation.CommitRecordUpdate{
				Metadata: map[string]interface{}{"lastError": "boom"},
			})
			require.ErrorIs(t, err, storage.ErrIncompleteCommit)
			_, err = os.Stat(filepath.Join(recordDir, "42-"+validation.AddressKey(validator)+".json"))
			require.True(t, os.IsNotExist(err))
		})

		update := unittest.CommitUpdateFixture(false)

		t.Run("create and reload", func(t *testing.T) {
			_, err := store.Update(jobID, validator, update)
			require.NoError(t, err)

			path := filepath.Join(recordDir, "42-"+validation.AddressKey(validator)+".json")
			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

			reopened, err := files.NewCommitRecords(recordDir)
			require.NoError(t, err)
			record, err := reopened.ByID(jobID, validator)
			require.NoError(t, err)
			assert.False(t, record.Approve)
			assert.Equal(t, *update.Salt, record.Salt)
			assert.Equal(t, *update.CommitHash, record.CommitHash)
			require.NotNil(t, record.Evaluation)
			assert.Equal(t, update.Evaluation.Reasons, record.Evaluation.Reasons)
		})

		t.Run("merge keeps commit data", func(t *testing.T) {
			revealTx := unittest.HashFixture()
			revealedAt := time.Now().UTC()
			record, err := store.Update(jobID, validator, &validation.CommitRecordUpdate{
				RevealTx:   &revealTx,
				RevealedAt: &revealedAt,
				Dispute: &validation.DisputeInfo{
					Claimant: unittest.AddressFixture(),
					RaisedAt: revealedAt,
				},
			})
			require.NoError(t, err)
			assert.Equal(t, *update.Salt, record.Salt)
			assert.True(t, record.Revealed())
			assert.NotNil(t, record.Dispute)
		})

		t.Run("by job", func(t *testing.T) {
			other := unittest.AddressFixture()
			_, err := store.Update(jobID, other, unittest.CommitUpdateFixture(true))
			require.NoError(t, err)
			_, err = store.Update(jobID+100, other, unittest.CommitUpdateFixture(true))
			require.NoError(t, err)

			records, err := store.ByJob(jobID)
			require.NoError(t, err)
			assert.Len(t, records, 2)

			// no temporary files are left behind
			entries, err := os.ReadDir(recordDir)
			require.NoError(t, err)
			assert.Len(t, entries, 3)
		})
	})
}

func TestCommitRecordFilesUnrevealed(t *testing.T) {
	unittest.RunWithTempDir(t, func(dir string) {
		store, err := files.NewCommitRecords(dir)
		require.NoError(t, err)

		pending := unittest.AddressFixture()
		revealed := unittest.AddressFixture()
		for _, jobID := range []validation.JobID{9, 3} {
			_, err = store.Update(jobID, pending, unittest.CommitUpdateFixture(true))
			require.NoError(t, err)
		}
		update := unittest.CommitUpdateFixture(false)
		revealTx := unittest.HashFixture()
		update.RevealTx = &revealTx
		_, err = store.Update(3, revealed, update)
		require.NoError(t, err)

		// stray files are ignored
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

		records, err := store.Unrevealed()
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, validation.JobID(3), records[0].JobID)
		assert.Equal(t, validation.JobID(9), records[1].JobID)
		for _, record := range records {
			assert.Equal(t, validation.AddressKey(pending), record.Validator)
			assert.False(t, record.Revealed())
		}
	})
}
