package cmd_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/SscSPs/autoledger/cmd/ledgerctl/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("IS_PRODUCTION", "false")

	var out bytes.Buffer
	root := cmd.NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func TestSeedChart(t *testing.T) {
	out, err := run(t, "seed-chart")
	require.NoError(t, err)
	assert.Regexp(t, `created [1-9]\d* accounts`, out)
}

func TestTrialBalance(t *testing.T) {
	out, err := run(t, "trial-balance", "--as-of", "2025-12-31")
	require.NoError(t, err)
	assert.Contains(t, out, "Trial balance as of 2025-12-31")
	assert.Contains(t, out, "balanced")

	_, err = run(t, "trial-balance", "--as-of", "31/12/2025")
	assert.Error(t, err)
}

func TestSyncQueue(t *testing.T) {
	out, err := run(t, "sync-queue", "--limit", "10", "--kind", "pos_sale")
	require.NoError(t, err)
	assert.Contains(t, out, "claimed 0, synced 0, failed 0, retrying 0")

	_, err = run(t, "sync-queue", "--kind", "invoice")
	assert.Error(t, err)
}

func TestUnreconciled(t *testing.T) {
	out, err := run(t, "unreconciled", "--source-type", "pos_refund")
	require.NoError(t, err)
	assert.Contains(t, out, "all pos_refund records are posted")

	_, err = run(t, "unreconciled")
	assert.Error(t, err, "--source-type is required")

	_, err = run(t, "unreconciled", "--source-type", "invoice")
	assert.Error(t, err)
}

func TestMigrateNeedsPostgres(t *testing.T) {
	_, err := run(t, "migrate")
	assert.ErrorContains(t, err, "STORAGE_DRIVER=postgres")
}

func TestIssueToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-test-secret")
	out, err := run(t, "issue-token", "--actor", "pos-terminal-3", "--ttl", "1h")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "."), 3)

	_, err = run(t, "issue-token")
	assert.Error(t, err)
}
