package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
)

func TestSyncCmd_Use(t *testing.T) {
	assert.Equal(t, "sync [source-id]", syncCmd.Use)
}

func TestSyncCmd_ErrorsWithoutServices(t *testing.T) {
	oldSync := syncOrchestrator
	syncOrchestrator = nil
	defer func() {
		syncOrchestrator = oldSync
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"sync", "src-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestSyncCmd_SyncsOneSource(t *testing.T) {
	sync, _, cleanup := setupTestServices()
	defer cleanup()
	sync.summary = &domain.SyncSummary{SourceID: "src-1", Created: 3, Updated: 1}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"sync", "src-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, []string{"src-1"}, sync.syncCalls)
	assert.False(t, sync.lastOpts.ForceFull)
	assert.Contains(t, buf.String(), "3 new, 1 updated")
}

func TestSyncCmd_FullFlagForcesFullSync(t *testing.T) {
	sync, _, cleanup := setupTestServices()
	defer cleanup()
	defer func() { syncFull = false }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"sync", "src-1", "--full"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.True(t, sync.lastOpts.ForceFull)
}

func TestSyncCmd_NoArgSyncsAll(t *testing.T) {
	sync, _, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"sync"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, 1, sync.syncAllCalls)
	assert.Empty(t, sync.syncCalls)
}

func TestSyncCmd_ReportsNoChanges(t *testing.T) {
	sync, _, cleanup := setupTestServices()
	defer cleanup()
	sync.summary = &domain.SyncSummary{SourceID: "src-1"}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"sync", "src-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No changes")
}
