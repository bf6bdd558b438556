package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smallsh/internal/config"
)

func newTestCmd(t *testing.T, fsys afero.Fs, args ...string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd(fsys)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	return cmd, &out
}

func TestRootHelp(t *testing.T) {
	cmd, out := newTestCmd(t, afero.NewMemMapFs(), "--help")

	require.NoError(t, cmd.Execute())

	for _, want := range []string{"smallsh", "Usage:", "--config", "--debug", "--log-file", "--log-level", "--color"} {
		assert.Contains(t, out.String(), want)
	}
}

func TestRootRejectsArguments(t *testing.T) {
	cmd, _ := newTestCmd(t, afero.NewMemMapFs(), "--config", "/etc/smallsh", "extra")

	assert.Error(t, cmd.Execute())
}

func TestRootRejectsInvalidColorFlag(t *testing.T) {
	cmd, _ := newTestCmd(t, afero.NewMemMapFs(), "--config", "/etc/smallsh", "--color", "purple")

	err := cmd.Execute()

	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestRootRejectsInvalidLogLevel(t *testing.T) {
	cmd, _ := newTestCmd(t, afero.NewMemMapFs(), "--config", "/etc/smallsh", "--log-level", "chatty")

	assert.ErrorIs(t, cmd.Execute(), config.ErrInvalid)
}

func TestRootRejectsInvalidConfigFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/etc/smallsh/config.yaml", []byte("max_args: 0\n"), 0o644))

	cmd, _ := newTestCmd(t, fsys, "--config", "/etc/smallsh/config.yaml")

	err := cmd.Execute()

	assert.ErrorIs(t, err, config.ErrInvalid)
	assert.Contains(t, err.Error(), "load config")
}

func TestRootRejectsUnknownConfigKey(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/etc/smallsh.yaml", []byte("prompt: \"$ \"\n"), 0o644))

	cmd, _ := newTestCmd(t, fsys, "--config", "/etc/smallsh.yaml")

	assert.Error(t, cmd.Execute())
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/cfg.yaml", []byte("debug: false\ncolor: always\nmax_args: 16\n"), 0o644))

	cmd := newRootCmd(fsys)
	require.NoError(t, cmd.ParseFlags([]string{"--config", "/cfg.yaml", "--debug", "--log-file", "/tmp/smallsh.log", "--log-level", "error", "--color", "never"}))
	opts := &options{}
	opts.configPath, _ = cmd.Flags().GetString("config")
	opts.debug, _ = cmd.Flags().GetBool("debug")
	opts.logFile, _ = cmd.Flags().GetString("log-file")
	opts.color, _ = cmd.Flags().GetString("color")
	opts.logLevel, _ = cmd.Flags().GetString("log-level")

	cfg, err := loadConfig(cmd, fsys, opts)

	require.NoError(t, err)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "/tmp/smallsh.log", cfg.LogFile)
	assert.Equal(t, "never", cfg.Color)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 16, cfg.MaxArgs)
}

func TestLoadConfigKeepsFileWithoutFlags(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/cfg.yaml", []byte("color: always\n"), 0o644))

	cmd := newRootCmd(fsys)
	require.NoError(t, cmd.ParseFlags([]string{"--config", "/cfg.yaml"}))

	cfg, err := loadConfig(cmd, fsys, &options{configPath: "/cfg.yaml"})

	require.NoError(t, err)
	assert.Equal(t, "always", cfg.Color)
	assert.False(t, cfg.Debug)
}
