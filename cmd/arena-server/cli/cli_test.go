package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSubcommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.db")

	require.NoError(t, Run([]string{"init", "-path", path}))
	_, err := os.Stat(path)
	require.NoError(t, err)

	assert.NoError(t, Run([]string{"query", "-path", path}))
	assert.NoError(t, Run([]string{"moves", "-path", path, "-matchId", "missing"}))
	assert.Error(t, Run([]string{"moves", "-path", path}))

	require.NoError(t, Run([]string{"delete", "-path", path}))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestRunErrors(t *testing.T) {
	assert.Error(t, Run(nil))
	assert.Error(t, Run([]string{"user"}))
	assert.Error(t, Run([]string{"init"}))
}
