package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPrincipal(t *testing.T, db, principal string) {
	t.Helper()

	_, _, err := execRoot(t, "init", principal, "--db", db)
	require.NoError(t, err)
	_, _, err = execRoot(t, "exec", principal, "init_max", "--db", db)
	require.NoError(t, err)
	_, _, err = execRoot(t, "exec", principal, "insert", "10", "--db", db)
	require.NoError(t, err)
}

func TestVerifyConsistentHistory(t *testing.T) {
	db := tempDB(t)
	seedPrincipal(t, db, "alice")

	out, _, err := execRoot(t, "verify", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ alice: consistent (2 records, 0 skipped)")
	assert.Contains(t, out, "Verify Summary: 1 checked, 0 divergent")
	assert.Contains(t, out, "✓ All principals consistent")
}

func TestVerifySinglePrincipal(t *testing.T) {
	db := tempDB(t)
	seedPrincipal(t, db, "alice")
	seedPrincipal(t, db, "bob")

	out, _, err := execRoot(t, "verify", "--db", db, "--principal", "bob")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ bob: consistent")
	assert.NotContains(t, out, "alice")
}

func TestVerifyUnknownPrincipal(t *testing.T) {
	db := tempDB(t)
	seedPrincipal(t, db, "alice")

	out, _, err := execRoot(t, "verify", "--db", db, "--principal", "ghost")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [not_initialized]")
}

func TestVerifyEmptyStore(t *testing.T) {
	db := tempDB(t)

	out, _, err := execRoot(t, "verify", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No principals found.")
}

func TestVerifyJSONOutput(t *testing.T) {
	db := tempDB(t)
	seedPrincipal(t, db, "alice")

	out, _, err := execRoot(t, "verify", "--db", db, "--format", "json")
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)

	data, ok := response.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), data["checked"])
	assert.Equal(t, float64(0), data["divergent"])
}

func TestVerifyTextRendersDivergence(t *testing.T) {
	cmd := &cobra.Command{}
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)

	result := VerifyResult{
		Reports: []PrincipalReport{
			{Principal: "alice", Records: 5, Consistent: true},
			{Principal: "bob", Records: 7, Skipped: 1, Consistent: false,
				Problems: []string{"replayed size 3, stored size 2"}},
		},
		Checked:   2,
		Divergent: 1,
	}

	err := outputVerifyText(cmd, result)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out := buf.String()
	assert.Contains(t, out, "✓ alice: consistent (5 records, 0 skipped)")
	assert.Contains(t, out, "✗ bob: divergent (7 records, 1 skipped)")
	assert.Contains(t, out, "  replayed size 3, stored size 2")
	assert.Contains(t, out, "Verify Summary: 2 checked, 1 divergent")
	assert.NotContains(t, out, "All principals consistent")
}

func TestVerifyJSONRendersDivergence(t *testing.T) {
	cmd := &cobra.Command{}
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)

	result := VerifyResult{
		Reports:   []PrincipalReport{{Principal: "bob", Records: 3, Consistent: false}},
		Checked:   1,
		Divergent: 1,
	}

	err := outputVerifyJSON(cmd, result)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var response CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &response))
	assert.Equal(t, "error", response.Status)
	require.NotNil(t, response.Error)
	assert.Equal(t, ErrCodeDiverged, response.Error.Code)
}
