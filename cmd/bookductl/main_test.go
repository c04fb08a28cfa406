package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestReindexEmptyDataDir(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "reindex", "--data-path", dir, "--env-file", filepath.Join(dir, "none.env"))
	require.NoError(t, err)
	assert.Equal(t, "Indexed 0 notes\n", out)
}

func TestBadgesList(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "badges", "list", "--data-path", dir, "--env-file", filepath.Join(dir, "none.env"))
	require.NoError(t, err)
	assert.Contains(t, out, `"oneline-1"`)
}

func TestLedgerShowUnknownUser(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "ledger", "show", "user-nobody", "--data-path", dir, "--env-file", filepath.Join(dir, "none.env"))
	require.Error(t, err)
}

func TestArgsValidation(t *testing.T) {
	_, err := run(t, "badges", "evaluate")
	require.Error(t, err)
}
