package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchdash/dashboard/pkg/core"
)

func parseInputs(t *testing.T, args ...string) core.Inputs {
	t.Helper()
	var f inputFlags
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return f.inputs(cmd, core.PayloadRange{100, 9600})
}

func TestInputFlags(t *testing.T) {
	in := parseInputs(t)
	assert.Equal(t, core.AllSites, in.Site)
	assert.Nil(t, in.Payload, "no bounds leaves the payload to the callee")

	in = parseInputs(t, "--site", "KSC LC-39A", "--min", "2000", "--max", "5000")
	assert.Equal(t, "KSC LC-39A", in.Site)
	require.NotNil(t, in.Payload)
	assert.Equal(t, core.PayloadRange{2000, 5000}, *in.Payload)

	in = parseInputs(t, "--max", "3000")
	require.NotNil(t, in.Payload)
	assert.Equal(t, core.PayloadRange{100, 3000}, *in.Payload)
}

func TestRootCommand(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "import", "export", "snapshot"}, names)

	for _, flag := range []string{"config", "csv", "host", "port", "log-level"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}

	export, _, err := root.Find([]string{"export"})
	require.NoError(t, err)
	for _, flag := range []string{"out", "gzip", "png", "html", "site", "min", "max"} {
		assert.NotNil(t, export.Flags().Lookup(flag), flag)
	}
}
