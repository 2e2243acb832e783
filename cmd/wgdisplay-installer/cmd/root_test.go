package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// executeChildEnv makes the test binary run Execute in place of the test.
const executeChildEnv = "WGDISPLAY_INSTALLER_EXECUTE_CHILD"

// execute runs the root command with args and returns the error and stderr.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stderr bytes.Buffer

	rootCmd.SetErr(&stderr)
	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())

	return stderr.String(), err
}

// TestRoot_UnsupportedArchitecture reports the machine and fails.
func TestRoot_UnsupportedArchitecture(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "settings.yaml")
	chdir(t, t.TempDir())

	stderr, err := execute(t, "--machine", "x86_64", "--config", "wgdisplay-installer.yaml")
	require.EqualError(t, err, "Unsupported architecture: x86_64")
	require.Contains(t, stderr, "Unsupported architecture: x86_64")

	_, err = execute(t, "--machine", "x86_64", "--config", missing)
	require.Error(t, err)
	require.Contains(t, err.Error(), "load settings")
}

// TestRoot_RejectsArguments keeps the invocation argument free.
func TestRoot_RejectsArguments(t *testing.T) {
	_, err := execute(t, "now")
	require.Error(t, err)
}

// TestRoot_UnknownLogLevel fails before any installation step.
func TestRoot_UnknownLogLevel(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := execute(t, "--log-level", "chatty")
	require.EqualError(t, err, `unknown log level "chatty"`)

	_, err = execute(t, "--log-level", "info", "--machine", "x86_64", "--config", "wgdisplay-installer.yaml")
	require.Error(t, err)
}

// TestExecute_ExitStatus exits with status 1 and prints the error once.
func TestExecute_ExitStatus(t *testing.T) {
	if os.Getenv(executeChildEnv) == "1" {
		rootCmd.SetArgs([]string{"--machine", "x86_64", "--config", "wgdisplay-installer.yaml"})
		Execute()

		return
	}

	self, err := os.Executable()
	require.NoError(t, err)

	cmd := exec.Command(self, "-test.run=^TestExecute_ExitStatus$")
	cmd.Env = append(os.Environ(), executeChildEnv+"=1")
	cmd.Dir = t.TempDir()

	output, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "expected a non-zero exit, got %v: %s", err, output)
	require.Equal(t, 1, exitErr.ExitCode())
	require.Equal(t, 1, strings.Count(string(output), "Unsupported architecture: x86_64"), string(output))
}

// chdir changes the working directory for the test and restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()

	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
