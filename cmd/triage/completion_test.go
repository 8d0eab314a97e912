package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletionCmd_Init(t *testing.T) {
	assert.Equal(t, "completion [bash|zsh|fish|powershell]", completionCmd.Use)
	assert.ElementsMatch(t, []string{"bash", "zsh", "fish", "powershell"}, completionCmd.ValidArgs)
}

func TestCompletionCmd_Shells(t *testing.T) {
	tests := []struct {
		shell string
		want  string
	}{
		{"bash", "bash completion"},
		{"zsh", "triage"},
		{"fish", "complete -c triage"},
		{"powershell", "Register-ArgumentCompleter"},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			var buf bytes.Buffer
			completionCmd.SetOut(&buf)
			defer completionCmd.SetOut(nil)

			require.NoError(t, completionCmd.RunE(completionCmd, []string{tt.shell}))
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestCompletionCmd_UnsupportedShell(t *testing.T) {
	err := completionCmd.RunE(completionCmd, []string{"tcsh"})
	assert.ErrorContains(t, err, "unsupported shell")
}
