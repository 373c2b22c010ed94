package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// executeWith runs the root command with args and returns the exit status and output.
// The root command is shared, so these tests do not run in parallel.
func executeWith(t *testing.T, args ...string) (int, string) {
	t.Helper()

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		rootCmd.SilenceUsage = false
		previewCmd.SilenceUsage = false

		configPath = ""
	})

	return execute(), out.String()
}

// TestRoot_RequiresOneCredential rejects a missing or extra argument with usage.
func TestRoot_RequiresOneCredential(t *testing.T) {
	code, out := executeWith(t)
	require.Equal(t, 1, code)
	require.Contains(t, out, "Error: accepts 1 arg(s), received 0")
	require.Contains(t, out, "Usage:")

	code, out = executeWith(t, "token", "extra")
	require.Equal(t, 1, code)
	require.Contains(t, out, "Error: accepts 1 arg(s), received 2")
	require.Contains(t, out, "Usage:")
}

// TestRoot_RuntimeErrorOmitsUsage prints only the error once arguments are valid.
func TestRoot_RuntimeErrorOmitsUsage(t *testing.T) {
	code, out := executeWith(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "token")
	require.Equal(t, 1, code)
	require.Contains(t, out, "Error: load configuration")
	require.NotContains(t, out, "Usage:")
}

// TestPreview_ArgumentCount requires a branch and a device.
func TestPreview_ArgumentCount(t *testing.T) {
	code, out := executeWith(t, "preview", "vic")
	require.Equal(t, 1, code)
	require.Contains(t, out, "Error: accepts between 2 and 3 arg(s), received 1")
}
