package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashfaaq98/customer-issues/internal/store"
)

// resetFlags clears values left over from a previous Execute in the same
// process.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(args ...string) (string, error) {
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandsEndToEnd(t *testing.T) {
	db := filepath.Join(t.TempDir(), "data", "issues.db")
	global := []string{"--db", db, "--redis=", "--actor", "tester", "--log-level", "error"}
	run := func(args ...string) string {
		t.Helper()
		out, err := execute(append(args, global...)...)
		require.NoError(t, err, out)
		return out
	}

	assert.Contains(t, run("case", "add", "--customer", "Ana Ruiz", "--subscriber", "100", "--category", "Billing"), "Created case 1")
	assert.Contains(t, run("case", "add", "--customer", "Bob", "--subscriber", "200", "--status", "resolved"), "Created case 2")

	out := run("list")
	assert.Contains(t, out, "Showing 2 of 2 cases")
	assert.Contains(t, out, "Ana Ruiz")
	assert.Contains(t, out, "Billing")

	out = run("list", "--field", "customer", "--query", "ana")
	assert.Contains(t, out, "Ana Ruiz")
	assert.NotContains(t, out, "Bob")

	assert.Contains(t, run("list", "--year", "1999"), "No cases found.")

	var cases []store.Case
	require.NoError(t, json.Unmarshal([]byte(run("list", "--sort", "name-asc", "--json")), &cases))
	require.Len(t, cases, 2)
	assert.Equal(t, "Ana Ruiz", cases[0].CustomerName)
	assert.Equal(t, "Bob", cases[1].CustomerName)

	out = run("list", "--field", "status", "--query", "Resolved", "--store-query")
	assert.Contains(t, out, "Bob")
	assert.NotContains(t, out, "Ana Ruiz")

	assert.Contains(t, run("correspondence", "add", "1", "Refund sent"), "Added correspondence #1")
	assert.Contains(t, run("correspondence", "next", "1"), "#2")

	assert.Contains(t, run("case", "update", "1", "--status", "Closed"), "Updated case 1")
	out = run("case", "show", "1")
	assert.Contains(t, out, "Closed")
	assert.Contains(t, out, "Refund sent")
	assert.Contains(t, out, "Case updated")

	assert.Contains(t, run("case", "delete", "2", "--yes"), "Deleted case 2")
	assert.Contains(t, run("list"), "Showing 1 of 1 cases")
}

func TestListRejectsUnknownField(t *testing.T) {
	db := filepath.Join(t.TempDir(), "issues.db")
	_, err := execute("list", "--field", "nope", "--db", db, "--redis=")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown search field")
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-3", "x"} {
		_, err := parseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestResolvePathRelativeToBase(t *testing.T) {
	assert.Equal(t, filepath.Join("/srv", "data", "issues.db"), resolvePathRelativeToBase("/srv", "./data/issues.db"))
	assert.Equal(t, "/abs/issues.db", resolvePathRelativeToBase("/srv", "/abs/issues.db"))
	assert.Equal(t, ":memory:", resolvePathRelativeToBase("/srv", ":memory:"))
}

func TestSplitPatterns(t *testing.T) {
	assert.Equal(t, []string{"*.jsonl", "*.json"}, splitPatterns(" , "))
	assert.Equal(t, []string{"a.json", "*.jsonl"}, splitPatterns("a.json, *.jsonl"))
}

func TestTerminalSizeFromEnv(t *testing.T) {
	t.Setenv("COLUMNS", "132")
	t.Setenv("LINES", "43")
	w, h := getTerminalSize()
	assert.Equal(t, 132, w)
	assert.Equal(t, 43, h)
	assert.Contains(t, getTerminalInfo(), "Size=132x43")
}

func TestResolveActorName(t *testing.T) {
	assert.Equal(t, "Rana", resolveActorName("  Rana "))

	t.Setenv("USER", "")
	t.Setenv("USERNAME", "")
	assert.Equal(t, "system", resolveActorName(""))

	t.Setenv("USER", "omar")
	assert.Equal(t, "omar", resolveActorName(""))
}

func TestPrintCases(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printCases(&buf, nil, 0))
	assert.Equal(t, "No cases found.\n", buf.String())

	buf.Reset()
	require.NoError(t, printCases(&buf, []store.Case{{ID: 3, CustomerName: "Ana", Status: store.StatusNew}}, -1))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "Found 1 cases:", lines[0])
	assert.Contains(t, lines[len(lines)-1], "Ana")
}
