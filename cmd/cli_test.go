package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default so in-process runs do not
// leak state into each other.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args in an isolated HOME and
// returns stdout.
func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"CHARTLOOM_API_KEY", "DEEPSEEK_API_KEY", "CHARTLOOM_PROVIDER", "CHARTLOOM_HISTORY_BACKEND"} {
		t.Setenv(k, "")
	}
	return home
}

func writeCSV(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "sales.csv")
	require.NoError(t, os.WriteFile(p, []byte("region,amount\nnorth,10\nsouth,20\neast,30\n"), 0o644))
	return p
}

func TestCLI_AskOfflineRecordsHistory(t *testing.T) {
	home := isolate(t)
	csv := writeCSV(t, home)
	specPath := filepath.Join(home, "out", "spec.json")

	out, err := runCmd(t, "", "ask", csv, "share", "by", "region", "--offline", "--output", specPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Chart: pie (source: heuristic)")
	assert.Contains(t, out, "no_runtime")
	assert.Contains(t, out, "History ID:")

	var spec map[string]any
	b, err := os.ReadFile(specPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &spec))
	assert.Equal(t, "share by region", spec["question"])

	out, err = runCmd(t, "", "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "share by region")
}

func TestCLI_AskJSONNoHistory(t *testing.T) {
	home := isolate(t)
	csv := writeCSV(t, home)

	out, err := runCmd(t, "", "ask", csv, "q", "--offline", "--json", "--no-history")
	require.NoError(t, err)
	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "heuristic", res["source"])
	assert.Nil(t, res["historyId"])

	out, err = runCmd(t, "", "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No history yet")
}

func TestCLI_AskUnsupportedFile(t *testing.T) {
	home := isolate(t)
	p := filepath.Join(home, "notes.txt")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	_, err := runCmd(t, "", "ask", p, "q", "--offline")
	assert.Error(t, err)
}

func TestCLI_Columns(t *testing.T) {
	home := isolate(t)
	out, err := runCmd(t, "", "columns", writeCSV(t, home))
	require.NoError(t, err)
	assert.Contains(t, out, "3 rows, 2 columns")
	assert.Regexp(t, `amount\s+number\s+10`, out)
	assert.Regexp(t, `region\s+string\s+north`, out)
}

func TestCLI_ColumnsStats(t *testing.T) {
	home := isolate(t)
	out, err := runCmd(t, "", "columns", writeCSV(t, home), "--stats")
	require.NoError(t, err)
	assert.Contains(t, out, "File: sales.csv")
	assert.Contains(t, out, "- amount: number (non-null 3, missing 0.0%, unique 3); min 10, max 30, mean 20")
}

func TestCLI_NormalizeStdin(t *testing.T) {
	isolate(t)
	out, err := runCmd(t, `{"option":{"series":[{"type":"column"},{"type":"area"}]}}`, "normalize", "-")
	require.NoError(t, err)

	var spec map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &spec))
	series := spec["option"].(map[string]any)["series"].([]any)
	assert.Equal(t, "bar", series[0].(map[string]any)["type"])
	assert.Equal(t, "line", series[1].(map[string]any)["type"])
	assert.Equal(t, []any{}, spec["mapNames"])
}

func TestCLI_NormalizeBadJSON(t *testing.T) {
	isolate(t)
	_, err := runCmd(t, `{"option":`, "normalize")
	assert.Error(t, err)
}

func TestCLI_Maps(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, "geo")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "china.geojson"), []byte(`{"type":"FeatureCollection"}`), 0o644))

	out, err := runCmd(t, `{"geo":{"map":"china"},"series":[{"type":"map","map":"world"}]}`, "maps", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ china")
	assert.Contains(t, out, "✗ world")

	out, err = runCmd(t, `{"option":{"series":[{"type":"bar"}]}}`, "maps")
	require.NoError(t, err)
	assert.Contains(t, out, "No maps referenced")
}

func TestCLI_ConfigSetShow(t *testing.T) {
	isolate(t)
	out, err := runCmd(t, "", "config", "set", "api_key", "sk-abcdefghij")
	require.NoError(t, err)
	assert.Contains(t, out, "sk-****hij")

	_, err = runCmd(t, "", "config", "set", "provider", "watson")
	assert.Error(t, err)
	_, err = runCmd(t, "", "config", "set", "bogus", "1")
	assert.Error(t, err)

	out, err = runCmd(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "api_key: sk-****hij")
	assert.NotContains(t, out, "sk-abcdefghij")
	assert.Contains(t, out, "provider: deepseek")
}

func TestCLI_HistoryShowUnknown(t *testing.T) {
	isolate(t)
	_, err := runCmd(t, "", "history", "show", "not-a-uuid")
	assert.Error(t, err)
	_, err = runCmd(t, "", "history", "show", "6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	assert.ErrorContains(t, err, "no history entry")
}

func TestCLI_ModelsList(t *testing.T) {
	isolate(t)
	out, err := runCmd(t, "", "models", "list", "--provider", "deepseek")
	require.NoError(t, err)
	assert.Contains(t, out, "deepseek-chat")
	assert.NotContains(t, out, "gpt-4o-mini")
}
