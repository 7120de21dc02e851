package commands

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlwall/internal/cli/output"
	"github.com/leapstack-labs/sqlwall/internal/cli/testutil"
	"github.com/leapstack-labs/sqlwall/internal/config"
	"github.com/leapstack-labs/sqlwall/pkg/firewall"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewCheckCommand(), "check [SQL...]", []string{"input", "lines", "format", "audit"}},
		{NewREPLCommand(), "repl", []string{"format"}},
		{NewServeCommand(), "serve", []string{"no-audit", "no-watch"}},
		{NewChecksCommand(), "checks [check-id]", []string{"group", "verbose", "format"}},
		{NewInitCommand(), "init [directory]", []string{"force"}},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestAuditCommandTree(t *testing.T) {
	cmd := NewAuditCommand()
	assert.NotNil(t, cmd.PersistentFlags().Lookup("db"))

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"list", "stats", "prune"}, names)
}

func TestNewCommandContext_Defaults(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetOut(new(bytes.Buffer))
	cmdCtx := NewCommandContext(cmd)

	assert.Equal(t, config.Default(), cmdCtx.Cfg)
	assert.NotNil(t, cmdCtx.Logger)
	assert.Equal(t, output.ModeMarkdown, cmdCtx.Renderer.EffectiveMode())
}

func TestNewCommandContext_FromContext(t *testing.T) {
	cfg := config.Default()
	cfg.Output = "json"
	cfg.DenyTables = []string{"secrets"}

	cmd := &cobra.Command{}
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetContext(WithConfig(context.Background(), cfg))
	cmdCtx := NewCommandContext(cmd)

	assert.Same(t, cfg, cmdCtx.Cfg)
	assert.Equal(t, output.ModeJSON, cmdCtx.Renderer.EffectiveMode())

	res := cmdCtx.Firewall().Check("SELECT a FROM secrets")
	assert.True(t, res.Has(wall.CodeTableDeny))

	cmdCtx.WithFormat(cmd, "markdown")
	assert.Equal(t, output.ModeMarkdown, cmdCtx.Renderer.EffectiveMode())
}

// scriptedReader replays lines, then reports io.EOF.
type scriptedReader struct {
	lines   []any // string or error
	prompts []string
}

func (s *scriptedReader) Readline() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	next := s.lines[0]
	s.lines = s.lines[1:]
	if err, ok := next.(error); ok {
		return "", err
	}
	return next.(string), nil
}

func (s *scriptedReader) SetPrompt(p string) { s.prompts = append(s.prompts, p) }

func newTestContext(mode output.OutputMode) (*CommandContext, *testutil.TestRenderer) {
	tr := testutil.NewTestRenderer(mode, false)
	return &CommandContext{Cfg: config.Default(), Renderer: tr.Renderer}, tr
}

func TestREPL(t *testing.T) {
	cmdCtx, tr := newTestContext(output.ModeMarkdown)
	fw := firewall.New(nil)

	rl := &scriptedReader{lines: []any{
		"",
		"SELECT id",
		"FROM t WHERE id = 1 OR 1 = 1;",
		"SELECT half",
		readline.ErrInterrupt,
		"SELECT 1;",
		".stats",
		".bogus",
		".quit",
		"SELECT never;",
	}}

	require.NoError(t, runREPL(cmdCtx, fw, rl))

	out := tr.Output()
	assert.Contains(t, out, "## Text 1: denied")
	assert.Contains(t, out, "**AlwaysTrue**")
	assert.Contains(t, out, "## Text 1: allowed")
	assert.Contains(t, out, "2 checked, 1 denied")
	assert.NotContains(t, out, "never")
	assert.Contains(t, tr.ErrorOutput(), "unknown command: .bogus")

	// The interrupted text was discarded.
	assert.Equal(t, 2, fw.Stats().Checked)
	assert.Equal(t, []string{replContPrompt, replPrompt, replContPrompt, replPrompt, replPrompt}, rl.prompts)
}

func TestREPL_EOF(t *testing.T) {
	cmdCtx, _ := newTestContext(output.ModeJSON)
	rl := &scriptedReader{lines: []any{"SELECT 1;"}}
	require.NoError(t, runREPL(cmdCtx, firewall.New(nil), rl))
}

func TestRenderChecks(t *testing.T) {
	cfg := wall.DefaultConfig()
	cfg.DisabledChecks = wall.NewSet("WS05")
	infos := wall.DefaultRegistry().Describe(cfg)

	tr := testutil.NewTestRendererMarkdown()
	renderChecks(tr.Renderer, infos, true)

	out := tr.Output()
	testutil.AssertValidMarkdown(t, out)
	testutil.AssertNoANSI(t, out)
	assert.Contains(t, out, "# Firewall Checks (17 of 18 enabled)")
	assert.Contains(t, out, "## Condition")
	assert.Contains(t, out, "| WS05 | union.constant_row | disabled |")
}

func TestShowCheck(t *testing.T) {
	info, ok := findInfo("WS05")
	require.True(t, ok)

	tr := testutil.NewTestRendererText()
	require.NoError(t, showCheck(tr.Renderer, info))
	assert.Contains(t, tr.Output(), "WS05 - union.constant_row")
	assert.Contains(t, tr.Output(), string(wall.CodeUnionNotAllowed))
}

func findInfo(id string) (wall.CheckInfo, bool) {
	for _, info := range wall.DefaultRegistry().Describe(nil) {
		if info.ID == id {
			return info, true
		}
	}
	return wall.CheckInfo{}, false
}

func TestCheckCommand_InputFile(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "queries.log", "SELECT 1\nSELECT 2\n")

	cmd := NewCheckCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--input", path, "--lines", "-f", "json"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), `"checked": 2`)

	cmd = NewCheckCommand()
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--input", path, "SELECT 1"})
	require.Error(t, cmd.Execute())
}
