package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlwall/internal/testutil"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Empty(t, cfg.Source)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultListen, cfg.Listen)
	assert.Equal(t, wall.DefaultConfig(), cfg.Policy())
	assert.Nil(t, cfg.Tables())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeConfig(t, dir, `
select_row_limit: 50
comment_allowed: true
denied_functions: [sleep]
deny_tables:
  - secrets
  - audit.*
output: json
`)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, wall.RowLimit(50), cfg.SelectRowLimit)
	assert.True(t, cfg.CommentAllowed)
	assert.Equal(t, []string{"sleep"}, cfg.DeniedFunctions)
	assert.Equal(t, "json", cfg.Output)
	// Untouched keys keep their defaults.
	assert.True(t, cfg.SelectAllowed)
	assert.Equal(t, Default().DeniedSchemas, cfg.DeniedSchemas)

	policy := cfg.Policy()
	assert.True(t, policy.DeniedFunctions.Has("SLEEP"))
	assert.False(t, policy.DeniedFunctions.Has("version"))

	tables := cfg.Tables()
	require.NotNil(t, tables)
	assert.False(t, tables.IsTablePermitted("secrets"))
	assert.False(t, tables.IsTablePermitted("audit.events"))
	assert.True(t, tables.IsTablePermitted("orders"))
}

func TestLoad_ExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, t.TempDir(), "select_allowed: false\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.False(t, cfg.SelectAllowed)
	assert.Equal(t, path, cfg.Source)
}

func TestLoad_RelativeFileIsResolved(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeConfig(t, dir, "select_allowed: false\n")

	cfg, err := Load(ConfigFileName, nil)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Source)
	assert.True(t, filepath.IsAbs(cfg.Source))

	// Reloading from Source works from another directory.
	t.Chdir(t.TempDir())
	reloaded, err := Load(cfg.Source, nil)
	require.NoError(t, err)
	assert.False(t, reloaded.SelectAllowed)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_Env(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeConfig(t, dir, "delete_allowed: true\nselect_row_limit: 50\n")
	t.Setenv("SQLWALL_DELETE_ALLOWED", "false")
	t.Setenv("SQLWALL_DENIED_FUNCTIONS", "sleep, benchmark,")
	t.Setenv("SQLWALL_SELECT_ROW_LIMIT", "25")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.False(t, cfg.DeleteAllowed)
	assert.Equal(t, []string{"sleep", "benchmark"}, cfg.DeniedFunctions)
	assert.Equal(t, wall.RowLimit(25), cfg.SelectRowLimit)
}

func TestLoad_Flags(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeConfig(t, dir, "select_row_limit: 50\ncomment_allowed: true\n")
	t.Setenv("SQLWALL_SELECT_ROW_LIMIT", "25")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Uint64("select-row-limit", 0, "")
	flags.Bool("comment-allowed", false, "")
	flags.StringSlice("deny-tables", nil, "")
	require.NoError(t, flags.Parse([]string{"--select-row-limit=10", "--deny-tables=secrets,logs"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, wall.RowLimit(10), cfg.SelectRowLimit)
	assert.Equal(t, []string{"secrets", "logs"}, cfg.DenyTables)
	// Unset flags do not override the file.
	assert.True(t, cfg.CommentAllowed)
}

func TestLoad_UpdateCheckColumns(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
update_check_columns:
  - orders.state
  - orders.Total
  - shop.Invoices.amount
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]wall.Set{
		"orders":        wall.NewSet("state", "total"),
		"shop.invoices": wall.NewSet("amount"),
	}, cfg.Policy().UpdateCheckColumns)

	t.Setenv("SQLWALL_UPDATE_CHECK_COLUMNS", "carts.state")
	cfg, err = Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"carts.state"}, cfg.UpdateCheckColumns)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{name: "unknown output", content: "output: xml\n", errSubstr: "invalid output"},
		{name: "bad table name", content: "deny_tables: [\"a b\"]\n", errSubstr: "invalid table name"},
		{name: "empty listen", content: "listen: \"\"\n", errSubstr: "listen is required"},
		{name: "malformed yaml", content: "select_allowed: [\n", errSubstr: "error reading config file"},
		{name: "update check column without table", content: "update_check_columns: [state]\n", errSubstr: "invalid update check column"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := Load(path, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestTableList(t *testing.T) {
	tests := []struct {
		name     string
		deny     []string
		permit   []string
		table    string
		expected bool
	}{
		{name: "empty lists permit", table: "orders", expected: true},
		{name: "denied bare name", deny: []string{"secrets"}, table: "secrets"},
		{name: "denied ignores case", deny: []string{"Secrets"}, table: "SECRETS"},
		{name: "bare entry matches any schema", deny: []string{"secrets"}, table: "shop.secrets"},
		{name: "qualified entry needs schema", deny: []string{"shop.secrets"}, table: "secrets", expected: true},
		{name: "qualified entry", deny: []string{"shop.secrets"}, table: "shop.secrets"},
		{name: "schema wildcard", deny: []string{"audit.*"}, table: "audit.events"},
		{name: "permit list admits", permit: []string{"orders"}, table: "orders", expected: true},
		{name: "permit list excludes", permit: []string{"orders"}, table: "users"},
		{name: "deny beats permit", deny: []string{"orders"}, permit: []string{"orders"}, table: "orders"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewTableList(tt.deny, tt.permit)
			assert.Equal(t, tt.expected, l.IsTablePermitted(tt.table))
		})
	}
}

func TestHolder(t *testing.T) {
	first := Default()
	h := NewHolder(first)
	assert.Same(t, first, h.Load())

	var seen []*Config
	h.OnChange(func(c *Config) { seen = append(seen, c) })

	second := Default()
	second.SelectRowLimit = wall.RowLimit(5)
	h.Store(second)

	assert.Same(t, second, h.Load())
	require.Len(t, seen, 1)
	assert.Same(t, second, seen[0])
	assert.Nil(t, first.SelectRowLimit)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "select_row_limit: 1\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	h := NewHolder(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, h, func() (*Config, error) { return Load(path, nil) }, testutil.NewTestLogger(t))
	}()

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)

	// A broken file keeps the previous snapshot.
	writeConfig(t, dir, "output: xml\n")
	time.Sleep(3 * reloadDelay)
	assert.Equal(t, wall.RowLimit(1), h.Load().SelectRowLimit)

	writeConfig(t, dir, "select_row_limit: 7\n")
	require.Eventually(t, func() bool {
		limit := h.Load().SelectRowLimit
		return limit != nil && *limit == 7
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
