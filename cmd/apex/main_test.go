package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urfave/cli/v2"
)

func TestEvalExprSuccess(t *testing.T) {
	err := evalExpr("1 + 2;", false)
	assert.NoError(t, err)
}

func TestEvalExprSyntaxErrorExitsWithCodeOne(t *testing.T) {
	err := evalExpr("x = ;", false)
	require.Error(t, err)
	exitErr, ok := err.(cli.ExitCoder)
	require.True(t, ok)
	assert.Equal(t, exitSyntax, exitErr.ExitCode())
}

func TestEvalExprRuntimeErrorExitsWithCodeTwo(t *testing.T) {
	err := evalExpr("1 / 0;", false)
	require.Error(t, err)
	exitErr, ok := err.(cli.ExitCoder)
	require.True(t, ok)
	assert.Equal(t, exitRuntime, exitErr.ExitCode())
}

func TestRunFileExposesArgsGlobal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.apex")
	require.NoError(t, os.WriteFile(path, []byte("args[1];"), 0o644))

	err := runFile(path, []string{"hello"}, false)
	assert.NoError(t, err)
}

func TestRunFileMissingFileIsRuntimeError(t *testing.T) {
	err := runFile(filepath.Join(t.TempDir(), "nope.apex"), nil, false)
	require.Error(t, err)
	exitErr, ok := err.(cli.ExitCoder)
	require.True(t, ok)
	assert.Equal(t, exitRuntime, exitErr.ExitCode())
}
