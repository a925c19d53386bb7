package main

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-auth-api/internal/config"
)

func stubConfig() *config.Config {
	return &config.Config{LogFormat: "json", LogLevel: "ERROR", DatabaseURL: "postgres://unused"}
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd(func() (*config.Config, error) { return stubConfig(), nil })

	names := make([]string, 0)
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate", "create-superuser"}, names)

	migrate, _, err := cmd.Find([]string{"migrate", "version"})
	require.NoError(t, err)
	assert.Equal(t, "version", migrate.Name())
}

func TestRootCmd_LoadFailureStopsSubcommand(t *testing.T) {
	calls := 0
	cmd := NewRootCmd(func() (*config.Config, error) {
		calls++
		return nil, errors.New("SECRET_KEY is required")
	})
	cmd.SetArgs([]string{"migrate", "version"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SECRET_KEY is required")
	assert.Equal(t, 1, calls)
}

func TestCreateSuperuserCmd_ValidatesBeforeConnecting(t *testing.T) {
	loaded := 0
	cmd := NewRootCmd(func() (*config.Config, error) {
		loaded++
		return stubConfig(), nil
	})
	cmd.SetArgs([]string{"create-superuser", "--email", "not-an-email", "--username", "root", "--password", "RootPass1"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid superuser")
	assert.Equal(t, 1, loaded)
}

func TestCreateSuperuserCmd_RequiredFlags(t *testing.T) {
	cmd := NewCreateSuperuserCmd(stubConfig)

	for _, name := range []string{"email", "username", "password"} {
		flag := cmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, []string{"true"}, flag.Annotations["cobra_annotation_bash_completion_one_required_flag"], name)
	}
	assert.NotNil(t, cmd.Flags().Lookup("full-name"))
}
