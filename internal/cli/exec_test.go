package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitAndExecRoundTrip(t *testing.T) {
	db := tempDB(t)

	out, _, err := execRoot(t, "init", "alice", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "✓ init alice -> ok\n", out)

	out, _, err = execRoot(t, "exec", "alice", "init_max", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "✓ exec alice init_max -> ok\n", out)

	for _, v := range []string{"10", "20", "5"} {
		out, _, err = execRoot(t, "exec", "alice", "insert", v, "--db", db)
		require.NoError(t, err)
		assert.Equal(t, "✓ exec alice insert "+v+" -> ok\n", out)
	}

	out, _, err = execRoot(t, "peek", "alice", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "20\n", out)

	out, _, err = execRoot(t, "size", "alice", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)

	out, _, err = execRoot(t, "exec", "alice", "extract", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "✓ exec alice extract = 20 -> ok\n", out)

	out, _, err = execRoot(t, "size", "alice", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	out, _, err = execRoot(t, "peek", "alice", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "10\n", out)
}

func TestExecJSONOutput(t *testing.T) {
	db := tempDB(t)

	_, _, err := execRoot(t, "init", "dana", "--db", db)
	require.NoError(t, err)
	_, _, err = execRoot(t, "exec", "dana", "init_min", "--db", db)
	require.NoError(t, err)
	_, _, err = execRoot(t, "exec", "dana", "insert", "7", "--db", db)
	require.NoError(t, err)

	out, _, err := execRoot(t, "exec", "dana", "extract", "--db", db, "--format", "json")
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)

	data, ok := response.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "dana", data["principal"])
	assert.Equal(t, "extract", data["op"])
	assert.Equal(t, "ok", data["outcome"])
	assert.Equal(t, float64(7), data["result"])
}

func TestInitTwiceFails(t *testing.T) {
	db := tempDB(t)

	_, _, err := execRoot(t, "init", "alice", "--db", db)
	require.NoError(t, err)

	out, _, err := execRoot(t, "init", "alice", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [already_initialized]")
}

func TestExecBeforeInitFails(t *testing.T) {
	db := tempDB(t)

	out, _, err := execRoot(t, "exec", "bob", "insert", "1", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [not_initialized]")
}

func TestExtractEmptyHeapFails(t *testing.T) {
	db := tempDB(t)

	_, _, err := execRoot(t, "init", "carol", "--db", db)
	require.NoError(t, err)
	_, _, err = execRoot(t, "exec", "carol", "init_max", "--db", db)
	require.NoError(t, err)

	out, _, err := execRoot(t, "exec", "carol", "extract", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [empty_heap]")
}

func TestQuotaFlagEnforced(t *testing.T) {
	db := tempDB(t)

	_, _, err := execRoot(t, "init", "eve", "--db", db)
	require.NoError(t, err)
	_, _, err = execRoot(t, "exec", "eve", "init_max", "--db", db)
	require.NoError(t, err)

	_, _, err = execRoot(t, "exec", "eve", "insert", "1", "--db", db, "--quota", "2")
	require.NoError(t, err)
	_, _, err = execRoot(t, "exec", "eve", "insert", "2", "--db", db, "--quota", "2")
	require.NoError(t, err)

	out, _, err := execRoot(t, "exec", "eve", "insert", "3", "--db", db, "--quota", "2")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [quota_exceeded]")
}

func TestExecCommandErrors(t *testing.T) {
	db := tempDB(t)

	// Unknown op.
	_, _, err := execRoot(t, "exec", "alice", "sort", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "unknown operation kind")

	// Insert without a value.
	_, _, err = execRoot(t, "exec", "alice", "insert", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "insert requires a value")

	// Value on an op that takes none.
	_, _, err = execRoot(t, "exec", "alice", "extract", "5", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "takes no value")

	// Malformed value.
	_, _, err = execRoot(t, "exec", "alice", "insert", "[1,2]", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestMissingDatabasePath(t *testing.T) {
	_, _, err := execRoot(t, "init", "alice")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "database path required")
}

func TestInsertRecordValue(t *testing.T) {
	db := tempDB(t)

	_, _, err := execRoot(t, "init", "hr", "--db", db)
	require.NoError(t, err)
	_, _, err = execRoot(t, "exec", "hr", "init_max", "--db", db)
	require.NoError(t, err)

	out, _, err := execRoot(t, "exec", "hr", "insert", `{"age": 30, "name": "ana"}`, "--db", db)
	require.NoError(t, err)
	// Canonical rendering sorts record keys.
	assert.Equal(t, `✓ exec hr insert {"age":30,"name":"ana"} -> ok`+"\n", out)
}

func TestStatCommand(t *testing.T) {
	db := tempDB(t)

	_, _, err := execRoot(t, "init", "alice", "--db", db)
	require.NoError(t, err)
	_, _, err = execRoot(t, "exec", "alice", "init_max", "--db", db)
	require.NoError(t, err)
	_, _, err = execRoot(t, "exec", "alice", "insert", "10", "--db", db)
	require.NoError(t, err)

	out, _, err := execRoot(t, "stat", "alice", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "principal: alice")
	assert.Contains(t, out, "ordering:  max")
	assert.Contains(t, out, "size:      1")
	assert.Contains(t, out, "top:       10")
	assert.Contains(t, out, "bundle:    attached")
}

func TestStatJSON(t *testing.T) {
	db := tempDB(t)

	_, _, err := execRoot(t, "init", "alice", "--db", db)
	require.NoError(t, err)
	_, _, err = execRoot(t, "exec", "alice", "init_min", "--db", db)
	require.NoError(t, err)

	out, _, err := execRoot(t, "stat", "alice", "--db", db, "--format", "json")
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)

	data, ok := response.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "min", data["ordering"])
	assert.Equal(t, float64(0), data["size"])
	assert.Equal(t, true, data["bundle_attached"])
	assert.NotContains(t, data, "top")
}

func TestStatUninitialized(t *testing.T) {
	db := tempDB(t)

	out, _, err := execRoot(t, "stat", "ghost", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [not_initialized]")
}

func TestPeekUninitializedHeap(t *testing.T) {
	db := tempDB(t)

	// Module initialized but the heap is not: still not_initialized.
	_, _, err := execRoot(t, "init", "fred", "--db", db)
	require.NoError(t, err)

	out, _, err := execRoot(t, "peek", "fred", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [not_initialized]")
}
