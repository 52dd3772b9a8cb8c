package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/convtree/internal/cmd"
	cmdopts "github.com/mozilla-ai/convtree/internal/cmd/options"
	"github.com/mozilla-ai/convtree/internal/flags"
)

const peopleDefinition = `name: person
description: People export
fields:
  - name: id
    attr: true
  - name: name
    decorate: [trim]
  - name: age
    map: int
  - name: kids
    each: kids
    item: kid
    fields:
      - name: name
`

const brokenDefinition = `name: broken
fields:
  - name: a
    map: hex
`

const projectConfig = `[[mappings]]
name = "people"
file = "people.yaml"
description = "People for the address book"
`

// setupProject writes files into a temporary project directory and points the config file flag at
// its .convtree.toml. Tests using it must not run in parallel.
func setupProject(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	prev := flags.ConfigFile
	flags.ConfigFile = filepath.Join(dir, flags.DefaultConfigFile)
	t.Cleanup(func() { flags.ConfigFile = prev })

	return dir
}

func peopleProject(t *testing.T) string {
	t.Helper()

	return setupProject(t, map[string]string{
		flags.DefaultConfigFile: projectConfig,
		"people.yaml":           peopleDefinition,
	})
}

func testBaseCmd() *cmd.BaseCmd {
	b := &cmd.BaseCmd{}
	b.SetLogger(hclog.NewNullLogger())
	return b
}

type cmdFactory func(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error)

// execute builds a command with colour disabled and runs it with args, feeding stdin.
func execute(t *testing.T, factory cmdFactory, stdin string, args ...string) (string, error) {
	t.Helper()

	base := testBaseCmd()
	c, err := factory(base, cmdopts.WithCatalogBuilder(base), cmdopts.WithColor(false))
	require.NoError(t, err)

	c.SilenceUsage = true
	c.SilenceErrors = true

	var out bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&out)
	c.SetIn(strings.NewReader(stdin))
	c.SetArgs(args)

	err = c.Execute()
	return out.String(), err
}
