package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlwall/internal/cli/output"
	"github.com/leapstack-labs/sqlwall/pkg/firewall"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

const (
	replPrompt     = "sqlwall> "
	replContPrompt = "    ...> "
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Check SQL interactively",
		Long: `Start an interactive session that checks every SQL text you enter.

A text ends with a semicolon and may span several lines. The policy is loaded
once at start. Type .help for the dot-commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd).WithFormat(cmd, format)

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          replPrompt,
				HistoryFile:     filepath.Join(filepath.Dir(cmdCtx.Cfg.AuditDB), "repl_history"),
				AutoComplete:    newDotCompleter(),
				InterruptPrompt: "^C",
				EOFPrompt:       ".quit",
				Stdout:          cmd.OutOrStdout(),
				Stderr:          cmd.ErrOrStderr(),
			})
			if err != nil {
				return fmt.Errorf("failed to initialize REPL: %w", err)
			}
			defer func() { _ = rl.Close() }()

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "sqlwall REPL")
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
			_, _ = fmt.Fprintln(cmd.OutOrStdout())

			return runREPL(cmdCtx, cmdCtx.Firewall(), rl)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, markdown, json")
	return cmd
}

// lineReader is the part of *readline.Instance the loop needs.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

func runREPL(cmdCtx *CommandContext, fw *firewall.Firewall, rl lineReader) error {
	r := cmdCtx.Renderer

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buf.Len() == 0 && strings.HasPrefix(line, ".") {
			if quit := handleDotCommand(cmdCtx, fw, line); quit {
				return nil
			}
			continue
		}

		buf.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			buf.WriteString("\n")
			rl.SetPrompt(replContPrompt)
			continue
		}
		rl.SetPrompt(replPrompt)

		sql := buf.String()
		buf.Reset()
		renderCheckResults(r, []*firewall.Result{fw.Check(sql)})
		r.Println("")
	}
}

// handleDotCommand runs a dot-command and reports whether the session ends.
func handleDotCommand(cmdCtx *CommandContext, fw *firewall.Firewall, line string) bool {
	r := cmdCtx.Renderer
	parts := strings.Fields(line)

	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(r)

	case ".checks":
		renderChecks(r, wall.DefaultRegistry().Describe(fw.Config()), false)

	case ".stats":
		renderStats(r, fw.Stats())

	case ".clear":
		r.Printf("\033[H\033[2J")

	default:
		r.Error(fmt.Sprintf("unknown command: %s (type .help for commands)", parts[0]))
	}
	return false
}

func printREPLHelp(r *output.Renderer) {
	r.Println(`
Commands:
  .help           Show this help message
  .checks         List the checks and whether the policy enables them
  .stats          Show counters for this session
  .clear          Clear the screen
  .quit / .exit   Exit the REPL

Tips:
  - A text ends with a semicolon (;) and may span lines
  - Use arrow keys to navigate history
`)
}

func newDotCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".checks"),
		readline.PcItem(".stats"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}

func renderStats(r *output.Renderer, s firewall.Stats) {
	if r.EffectiveMode() == output.ModeJSON {
		_ = r.JSON(s)
		return
	}
	r.Printf("%d checked, %d denied\n", s.Checked, s.Denied)
	if len(s.TableStats) == 0 {
		return
	}
	r.Table(tableStatsHeader, tableStatsRows(s.TableStats))
}
