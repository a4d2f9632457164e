package main

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentjobs/validation-gateway/config"
	"github.com/agentjobs/validation-gateway/model/validation"
	"github.com/agentjobs/validation-gateway/utils/unittest"
)

func TestRootCommand_InvalidConfig(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"--rpc-url", "http://localhost:8545", "--store-backend", "sqlite"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store-backend")
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger("debug")
	require.NoError(t, err)

	_, err = newLogger("loud")
	require.Error(t, err)
}

func TestOpenStore(t *testing.T) {
	for _, backend := range []string{config.StoreBackendFiles, config.StoreBackendBadger} {
		t.Run(backend, func(t *testing.T) {
			unittest.RunWithTempDir(t, func(dir string) {
				cfg := config.DefaultConfig()
				cfg.StoreBackend = backend
				cfg.StoreDir = dir

				records, closeStore, err := openStore(&cfg)
				require.NoError(t, err)

				jobID := validation.JobID(7)
				validator := common.HexToAddress("0x01")
				approve := true
				salt := common.HexToHash("0x02")
				hash := common.HexToHash("0x03")
				_, err = records.Update(jobID, validator, &validation.CommitRecordUpdate{
					Approve:    &approve,
					Salt:       &salt,
					CommitHash: &hash,
				})
				require.NoError(t, err)

				stored, err := records.ByJob(jobID)
				require.NoError(t, err)
				assert.Len(t, stored, 1)

				require.NoError(t, closeStore())
			})
		})
	}
}
