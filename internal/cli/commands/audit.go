package commands

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlwall/internal/audit"
	"github.com/leapstack-labs/sqlwall/internal/cli/output"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

// AuditOptions holds options shared by the audit subcommands.
type AuditOptions struct {
	DB     string // Audit database path override
	Format string // Output format
}

// NewAuditCommand creates the audit command.
func NewAuditCommand() *cobra.Command {
	opts := &AuditOptions{}
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the audit database",
		Long:  `Inspect the decisions recorded by 'sqlwall serve' and 'sqlwall check --audit'.`,
	}

	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "Audit database path (default: audit_db from config)")
	cmd.PersistentFlags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")

	cmd.AddCommand(newAuditListCommand(opts))
	cmd.AddCommand(newAuditStatsCommand(opts))
	cmd.AddCommand(newAuditPruneCommand(opts))
	return cmd
}

func newAuditListCommand(opts *AuditOptions) *cobra.Command {
	var f audit.Filter
	var code string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent decisions, newest first",
		Example: `  sqlwall audit list --denied
  sqlwall audit list --code AlwaysTrue --limit 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd).WithFormat(cmd, opts.Format)
			store, err := cmdCtx.OpenStore(cmd.Context(), opts.DB)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			f.Code = wall.Code(code)
			entries, err := store.List(cmd.Context(), f)
			if err != nil {
				return err
			}
			renderAuditEntries(cmdCtx.Renderer, entries)
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "Only entries with a violation of this code")
	cmd.Flags().BoolVar(&f.DeniedOnly, "denied", false, "Only denied entries")
	cmd.Flags().IntVarP(&f.Limit, "limit", "n", 100, "Maximum number of entries")
	return cmd
}

func newAuditStatsCommand(opts *AuditOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show per-table usage and violation counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd).WithFormat(cmd, opts.Format)
			store, err := cmdCtx.OpenStore(cmd.Context(), opts.DB)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			usage, err := store.TableUsage(cmd.Context())
			if err != nil {
				return err
			}
			counts, err := store.CodeCounts(cmd.Context())
			if err != nil {
				return err
			}
			renderAuditStats(cmdCtx.Renderer, usage, counts)
			return nil
		},
	}
}

func newAuditPruneCommand(opts *AuditOptions) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:     "prune",
		Short:   "Delete old decisions",
		Example: `  sqlwall audit prune --older-than 720h`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			cmdCtx := NewCommandContext(cmd).WithFormat(cmd, opts.Format)
			store, err := cmdCtx.OpenStore(cmd.Context(), opts.DB)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			n, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			if cmdCtx.Renderer.EffectiveMode() == output.ModeJSON {
				return cmdCtx.Renderer.JSON(map[string]int64{"removed": n})
			}
			cmdCtx.Renderer.Success(fmt.Sprintf("removed %d entries", n))
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Delete entries older than this")
	return cmd
}

func renderAuditEntries(r *output.Renderer, entries []*audit.Entry) {
	if r.EffectiveMode() == output.ModeJSON {
		if entries == nil {
			entries = []*audit.Entry{}
		}
		_ = r.JSON(entries)
		return
	}
	if len(entries) == 0 {
		r.Println("(no entries)")
		return
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		verdict := "allowed"
		if !e.Allowed() {
			verdict = "denied"
		}
		codes := make([]wall.Code, 0, len(e.Violations))
		for _, v := range e.Violations {
			if !slices.Contains(codes, v.Code) {
				codes = append(codes, v.Code)
			}
		}
		rows = append(rows, []string{
			e.CheckedAt.Local().Format(time.DateTime),
			e.ID,
			verdict,
			joinCodes(codes),
			oneLine(e.SQL, 60),
		})
	}
	r.Table([]string{"Checked At", "ID", "Verdict", "Codes", "SQL"}, rows)
}

// AuditStatsJSONOutput is the JSON output structure of audit stats.
type AuditStatsJSONOutput struct {
	Tables map[string]wall.TableStat `json:"tables"`
	Codes  map[wall.Code]int         `json:"codes"`
}

func renderAuditStats(r *output.Renderer, usage map[string]wall.TableStat, counts map[wall.Code]int) {
	if r.EffectiveMode() == output.ModeJSON {
		_ = r.JSON(AuditStatsJSONOutput{Tables: usage, Codes: counts})
		return
	}

	r.Header(2, "Table Usage")
	if len(usage) == 0 {
		r.Println("(no tables)")
	} else {
		r.Table(tableStatsHeader, tableStatsRows(usage))
	}
	r.Println("")

	r.Header(2, "Violations")
	if len(counts) == 0 {
		r.Println("(no violations)")
		return
	}
	rows := make([][]string, 0, len(counts))
	for _, code := range slices.Sorted(maps.Keys(counts)) {
		rows = append(rows, []string{string(code), strconv.Itoa(counts[code])})
	}
	r.Table([]string{"Code", "Count"}, rows)
}
