package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlwall/internal/audit"
	"github.com/leapstack-labs/sqlwall/internal/cli/output"
	"github.com/leapstack-labs/sqlwall/pkg/firewall"
)

// ErrDenied is returned by check when at least one text was denied.
var ErrDenied = errors.New("policy violations found")

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Input  string // File to read SQL from; "-" for stdin
	Lines  bool   // Treat every non-empty input line as its own text
	Format string // Output format override
	Audit  bool   // Record results in the audit database
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}
	cmd := &cobra.Command{
		Use:   "check [SQL...]",
		Short: "Check SQL against the firewall policy",
		Long: `Check one or more SQL texts against the firewall policy.

Every argument is checked as one text. Without arguments the text is read
from --input or, when stdin is not a terminal, from stdin. With --lines
every non-empty input line is checked on its own, which suits query logs.

The command fails when any text is denied.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Check a single statement
  sqlwall check "SELECT * FROM users WHERE id = 1 OR 1 = 1"

  # Check a query log, one statement per line
  sqlwall check --input queries.log --lines

  # Pipe SQL in and get JSON back
  echo "DELETE FROM t" | sqlwall check -f json

  # Record the decisions in the audit database
  sqlwall check --audit "SELECT 1"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", `Read SQL from file ("-" for stdin)`)
	cmd.Flags().BoolVar(&opts.Lines, "lines", false, "Check every non-empty input line separately")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().BoolVar(&opts.Audit, "audit", false, "Record results in the audit database")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *CheckOptions) error {
	cmdCtx := NewCommandContext(cmd).WithFormat(cmd, opts.Format)
	ctx := cmd.Context()

	sqls, err := collectSQL(cmd, args, opts)
	if err != nil {
		return err
	}

	fw := cmdCtx.Firewall()
	results, err := fw.CheckBatch(ctx, sqls)
	if err != nil {
		return err
	}

	if opts.Audit {
		store, err := cmdCtx.OpenStore(ctx, "")
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		if err := recordAll(cmd, store, results); err != nil {
			return err
		}
	}

	if denied := renderCheckResults(cmdCtx.Renderer, results); denied > 0 {
		return ErrDenied
	}
	return nil
}

func collectSQL(cmd *cobra.Command, args []string, opts *CheckOptions) ([]string, error) {
	if len(args) > 0 {
		if opts.Input != "" {
			return nil, errors.New("give SQL either as arguments or with --input, not both")
		}
		return args, nil
	}

	var r io.Reader
	switch {
	case opts.Input == "-":
		r = cmd.InOrStdin()
	case opts.Input != "":
		f, err := os.Open(opts.Input)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	default:
		in := cmd.InOrStdin()
		if f, ok := in.(*os.File); ok && isTerminalFile(f) {
			return nil, errors.New("no SQL given: pass it as an argument, with --input, or on stdin")
		}
		r = in
	}

	if opts.Lines {
		var sqls []string
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for sc.Scan() {
			if line := strings.TrimSpace(sc.Text()); line != "" {
				sqls = append(sqls, line)
			}
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		if len(sqls) == 0 {
			return nil, errors.New("no SQL given")
		}
		return sqls, nil
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return []string{string(b)}, nil
}

func recordAll(cmd *cobra.Command, store *audit.Store, results []*firewall.Result) error {
	for _, res := range results {
		if _, err := store.Record(cmd.Context(), res); err != nil {
			return err
		}
	}
	return nil
}

// CheckJSONOutput is the JSON output structure of check.
type CheckJSONOutput struct {
	Results []*firewall.Result `json:"results"`
	Checked int                `json:"checked"`
	Denied  int                `json:"denied"`
}

// renderCheckResults writes results and returns how many were denied.
func renderCheckResults(r *output.Renderer, results []*firewall.Result) int {
	denied := 0
	for _, res := range results {
		if !res.Allowed() {
			denied++
		}
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		_ = r.JSON(CheckJSONOutput{Results: results, Checked: len(results), Denied: denied})
	case output.ModeMarkdown:
		renderCheckMarkdown(r, results, denied)
	default:
		renderCheckText(r, results, denied)
	}
	return denied
}

func renderCheckText(r *output.Renderer, results []*firewall.Result, denied int) {
	styles := r.Styles()
	for _, res := range results {
		status, label := "success", "allowed"
		if !res.Allowed() {
			status, label = "error", "denied"
		}
		r.StatusLine(oneLine(res.SQL, 72), status, label)
		for _, v := range res.Violations {
			r.Printf("      %s  %s\n", styles.Error.Render(string(v.Code)), v.Message)
			if v.Evidence != "" {
				r.Println(styles.Muted.Render("        " + oneLine(v.Evidence, 96)))
			}
		}
		if res.RewrittenSQL != "" {
			r.Printf("      %s %s\n", styles.Info.Render("rewritten:"), res.RewrittenSQL)
		}
	}
	r.Println("")
	summary := fmt.Sprintf("%d checked, %d denied", len(results), denied)
	if denied > 0 {
		r.Println(styles.Error.Render(summary))
	} else {
		r.Println(styles.Success.Render(summary))
	}
}

func renderCheckMarkdown(r *output.Renderer, results []*firewall.Result, denied int) {
	r.Println("# Firewall Check")
	r.Println("")
	for i, res := range results {
		verdict := "allowed"
		if !res.Allowed() {
			verdict = "denied"
		}
		r.Printf("## Text %d: %s\n\n", i+1, verdict)
		r.Println("```sql")
		r.Println(strings.TrimSpace(res.SQL))
		r.Println("```")
		r.Println("")
		for _, v := range res.Violations {
			r.Printf("- **%s** %s", v.Code, v.Message)
			if v.Evidence != "" {
				r.Printf(" (`%s`)", oneLine(v.Evidence, 96))
			}
			r.Println("")
		}
		if res.RewrittenSQL != "" {
			r.Printf("- rewritten: `%s`\n", res.RewrittenSQL)
		}
		if len(res.Violations) > 0 || res.RewrittenSQL != "" {
			r.Println("")
		}
	}
	r.Printf("**%d checked, %d denied**\n", len(results), denied)
}

func oneLine(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
