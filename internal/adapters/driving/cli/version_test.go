package cli

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
	assert.False(t, needsServices(versionCmd))
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := execute("version")

	require.NoError(t, err)
	assert.Contains(t, out, "tablesync version test-version-1.0.0")
	assert.Contains(t, out, runtime.Version())
}

func TestVersionCmd_DisplaysDevByDefault(t *testing.T) {
	originalVersion := version
	version = "dev"
	defer func() { version = originalVersion }()

	out, err := execute("version")

	require.NoError(t, err)
	assert.Contains(t, out, "tablesync version dev")
}

func TestVersionCmd_RejectsArgs(t *testing.T) {
	_, err := execute("version", "extra")

	assert.Error(t, err)
}
