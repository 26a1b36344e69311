package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPasswordFromStdin(t *testing.T) {
	userPassword = ""
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("s3cretpass\nignored\n"))
	cmd.SetErr(&bytes.Buffer{})

	password, err := readPassword(cmd)
	require.NoError(t, err)
	assert.Equal(t, "s3cretpass", password)
}

func TestReadPasswordFromFlag(t *testing.T) {
	userPassword = "from-flag"
	t.Cleanup(func() { userPassword = "" })

	password, err := readPassword(&cobra.Command{})
	require.NoError(t, err)
	assert.Equal(t, "from-flag", password)
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"serve"},
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "version"},
		{"user", "create"},
		{"user", "list"},
		{"user", "set-password"},
	} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestUserCommandsRejectMemoryDriver(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "memory")

	rootCmd.SetArgs([]string{"user", "list"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	assert.ErrorIs(t, err, errMemoryDriver)
}
