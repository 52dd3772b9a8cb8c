package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/convtree/internal/config"
	errs "github.com/mozilla-ai/convtree/internal/errors"
	"github.com/mozilla-ai/convtree/internal/flags"
)

func TestBaseCmd_RequireTogether(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		flagNames   []string
		setFlags    []string
		expectError bool
	}{
		{
			name:        "all flags provided",
			flagNames:   []string{"flag1", "flag2"},
			setFlags:    []string{"flag1", "flag2"},
			expectError: false,
		},
		{
			name:        "no flags provided",
			flagNames:   []string{"flag1", "flag2"},
			setFlags:    []string{},
			expectError: false,
		},
		{
			name:        "only first flag provided",
			flagNames:   []string{"flag1", "flag2"},
			setFlags:    []string{"flag1"},
			expectError: true,
		},
		{
			name:        "only second flag provided",
			flagNames:   []string{"flag1", "flag2"},
			setFlags:    []string{"flag2"},
			expectError: true,
		},
		{
			name:        "three flags all provided",
			flagNames:   []string{"flag1", "flag2", "flag3"},
			setFlags:    []string{"flag1", "flag2", "flag3"},
			expectError: false,
		},
		{
			name:        "three flags none provided",
			flagNames:   []string{"flag1", "flag2", "flag3"},
			setFlags:    []string{},
			expectError: false,
		},
		{
			name:        "three flags only one provided",
			flagNames:   []string{"flag1", "flag2", "flag3"},
			setFlags:    []string{"flag1"},
			expectError: true,
		},
		{
			name:        "three flags only two provided",
			flagNames:   []string{"flag1", "flag2", "flag3"},
			setFlags:    []string{"flag1", "flag3"},
			expectError: true,
		},
		{
			name:        "three flags only two provided - test sorting",
			flagNames:   []string{"flag1", "flag2", "flag3"},
			setFlags:    []string{"flag3", "flag1"},
			expectError: true,
		},
		{
			name:        "single flag not provided",
			flagNames:   []string{"flag1"},
			setFlags:    []string{},
			expectError: false,
		},
		{
			name:        "single flag provided",
			flagNames:   []string{"flag1"},
			setFlags:    []string{"flag1"},
			expectError: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cmd := &cobra.Command{
				Use: "test",
			}

			for _, flagName := range tc.flagNames {
				cmd.Flags().String(flagName, "", "test flag")
			}

			for _, flagName := range tc.setFlags {
				err := cmd.Flags().Set(flagName, "value")
				require.NoError(t, err)
			}

			baseCmd := &BaseCmd{}
			err := baseCmd.RequireTogether(cmd, tc.flagNames...)

			if tc.expectError {
				require.Error(t, err)
				require.ErrorContains(t, err, "must be provided together or not at all")
				names := slices.Clone(tc.flagNames)
				slices.Sort(names)
				sortedNames := strings.Join(names, ", ")
				require.ErrorContains(t, err, fmt.Sprintf("(%s)", sortedNames))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func setLogFlags(t *testing.T, level string, path string) {
	t.Helper()

	prevLevel, prevPath := flags.LogLevel, flags.LogPath
	flags.LogLevel, flags.LogPath = level, path
	t.Cleanup(func() {
		flags.LogLevel, flags.LogPath = prevLevel, prevPath
	})
}

func TestBaseCmd_Logger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "convtree.log")
	setLogFlags(t, "DEBUG", logPath)

	c := &BaseCmd{}
	logger, err := c.Logger()
	require.NoError(t, err)
	require.True(t, logger.IsDebug())

	logger.Debug("hello")
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "hello")

	again, err := c.Logger()
	require.NoError(t, err)
	require.Same(t, logger, again)
}

func TestBaseCmd_LoggerErrors(t *testing.T) {
	setLogFlags(t, "chatty", "")
	_, err := (&BaseCmd{}).Logger()
	require.ErrorContains(t, err, "invalid log level 'chatty'")

	setLogFlags(t, "info", filepath.Join(t.TempDir(), "missing", "convtree.log"))
	_, err = (&BaseCmd{}).Logger()
	require.ErrorContains(t, err, "failed to open log file")
}

func TestBaseCmd_SetLogger(t *testing.T) {
	t.Parallel()

	c := &BaseCmd{}
	l := hclog.NewNullLogger()
	c.SetLogger(l)

	got, err := c.Logger()
	require.NoError(t, err)
	require.Equal(t, l, got)
}

func TestBaseCmd_BuildCatalog(t *testing.T) {
	t.Parallel()

	c := &BaseCmd{}
	c.SetLogger(hclog.NewNullLogger())

	mod, err := (&config.DefaultLoader{}).Load(filepath.Join("..", "catalog", "testdata", "convtree.toml"))
	require.NoError(t, err)

	cat, err := c.BuildCatalog(mod.(*config.Config))
	require.NoError(t, err)
	require.Equal(t, []string{"people", "stamped"}, cat.Names())

	mod, err = (&config.DefaultLoader{}).Load(filepath.Join("..", "catalog", "testdata", "broken.toml"))
	require.NoError(t, err)

	_, err = c.BuildCatalog(mod.(*config.Config))
	require.ErrorIs(t, err, errs.ErrInvalidMapping)
}
