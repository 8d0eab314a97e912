package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/triagesec/pkg/exitcode"
)

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "triage", rootCmd.Use)
	assert.Contains(t, rootCmd.Short, "triage")

	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"analyze", "adapters", "init", "version", "completion"} {
		assert.True(t, names[want], want)
	}
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "verbosity", "no-color", "debug"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}

func TestAnalyzeCommand_Flags(t *testing.T) {
	for _, name := range []string{
		"artifacts", "gate", "ref", "out", "workers", "context-lines",
		"source", "no-evidence", "allow-empty", "disable", "target",
	} {
		assert.NotNil(t, analyzeCmd.Flags().Lookup(name), name)
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	defer versionCmd.SetOut(nil)

	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, out.String(), "triage dev")
	assert.Contains(t, out.String(), "Commit:")
}

func TestExecute_ExitCodes(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		printed string
	}{
		{"success", nil, exitcode.Success, ""},
		{"high impact is silent", &exitError{code: exitcode.HighImpact}, exitcode.HighImpact, ""},
		{"wrapped failure is printed", &exitError{code: exitcode.Error, err: errors.New("no readable artifacts")}, exitcode.Error, "no readable artifacts\n"},
		{"plain error is an error", errors.New("unknown flag"), exitcode.Error, "unknown flag\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{
				Use:           "x",
				SilenceUsage:  true,
				SilenceErrors: true,
				RunE:          func(*cobra.Command, []string) error { return tt.err },
			}
			cmd.SetArgs([]string{})
			var stderr bytes.Buffer

			assert.Equal(t, tt.code, execute(cmd, &stderr))
			assert.Equal(t, tt.printed, stderr.String())
		})
	}
}

func TestExitError(t *testing.T) {
	inner := errors.New("boom")
	err := &exitError{code: exitcode.Error, err: inner}
	assert.Equal(t, "boom", err.Error())
	assert.ErrorIs(t, err, inner)

	silent := &exitError{code: exitcode.HighImpact}
	assert.Equal(t, "Critical or high findings present", silent.Error())
}

func TestGlobalOverrides(t *testing.T) {
	oldVerbosity, oldNoColor, oldDebug := verbosity, noColor, debug
	defer func() { verbosity, noColor, debug = oldVerbosity, oldNoColor, oldDebug }()

	verbosity, noColor, debug = "", false, false
	o := globalOverrides()
	assert.Nil(t, o.Verbosity)
	assert.Nil(t, o.NoColor)
	assert.Nil(t, o.LogLevel)

	verbosity, noColor, debug = "quiet", true, true
	o = globalOverrides()
	require.NotNil(t, o.Verbosity)
	assert.Equal(t, "quiet", *o.Verbosity)
	assert.True(t, *o.NoColor)
	assert.Equal(t, "debug", *o.LogLevel)
}
