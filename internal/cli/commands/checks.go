package commands

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/sqlwall/internal/cli/output"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

// ChecksOptions holds options for the checks command.
type ChecksOptions struct {
	Group   string // Filter by group
	Verbose bool   // Show descriptions, hooks and codes
	Format  string // Output format
}

// NewChecksCommand creates the checks command.
func NewChecksCommand() *cobra.Command {
	opts := &ChecksOptions{}
	cmd := &cobra.Command{
		Use:   "checks [check-id]",
		Short: "List the firewall checks",
		Long: `List every registered firewall check, grouped by what it inspects,
and whether the loaded policy enables it.

Disable checks with the disabled_checks key of sqlwall.yaml.`,
		Example: `  # List all checks
  sqlwall checks

  # Show one check
  sqlwall checks WS05

  # Only the condition checks, with details
  sqlwall checks --group condition -V

  # Output as JSON
  sqlwall checks --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd).WithFormat(cmd, opts.Format)
			infos := wall.DefaultRegistry().Describe(cmdCtx.Cfg.Policy())

			if len(args) > 0 {
				for _, info := range infos {
					if strings.EqualFold(info.ID, args[0]) {
						return showCheck(cmdCtx.Renderer, info)
					}
				}
				return fmt.Errorf("check %q not found", args[0])
			}

			if opts.Group != "" {
				infos = slices.DeleteFunc(infos, func(info wall.CheckInfo) bool {
					return !strings.EqualFold(info.Group, opts.Group)
				})
			}
			renderChecks(cmdCtx.Renderer, infos, opts.Verbose)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Group, "group", "g", "", "Filter by group")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "V", false, "Show descriptions, hooks and codes")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")

	return cmd
}

// ChecksJSONOutput is the JSON output structure for the checks listing.
type ChecksJSONOutput struct {
	Checks  []wall.CheckInfo `json:"checks"`
	Enabled int              `json:"enabled"`
	Total   int              `json:"total"`
}

func renderChecks(r *output.Renderer, infos []wall.CheckInfo, verbose bool) {
	enabled := 0
	for _, info := range infos {
		if info.Enabled {
			enabled++
		}
	}

	if r.EffectiveMode() == output.ModeJSON {
		_ = r.JSON(ChecksJSONOutput{Checks: infos, Enabled: enabled, Total: len(infos)})
		return
	}

	// Stable order: group, then ID.
	sorted := slices.Clone(infos)
	slices.SortStableFunc(sorted, func(a, b wall.CheckInfo) int {
		if c := strings.Compare(a.Group, b.Group); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	title := cases.Title(language.English)
	r.Header(1, fmt.Sprintf("Firewall Checks (%d of %d enabled)", enabled, len(infos)))

	header := []string{"ID", "Name", "Status"}
	if verbose {
		header = append(header, "Hooks", "Codes", "Description")
	}

	for i := 0; i < len(sorted); {
		group := sorted[i].Group
		j := i
		var rows [][]string
		for ; j < len(sorted) && sorted[j].Group == group; j++ {
			info := sorted[j]
			row := []string{info.ID, info.Name, enabledLabel(info.Enabled)}
			if verbose {
				row = append(row, strings.Join(info.Hooks, ", "), joinCodes(info.Codes), info.Description)
			}
			rows = append(rows, row)
		}
		r.Header(2, title.String(group))
		r.Table(header, rows)
		if r.EffectiveMode() != output.ModeMarkdown {
			r.Println("")
		}
		i = j
	}
}

func showCheck(r *output.Renderer, info wall.CheckInfo) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(info)
	case output.ModeMarkdown:
		r.Printf("# %s - %s\n\n", info.ID, info.Name)
		r.Printf("**Group:** %s | **Status:** `%s`\n\n", info.Group, enabledLabel(info.Enabled))
		r.Println(info.Description)
		r.Println("")
		r.Printf("- Hooks: `%s`\n", strings.Join(info.Hooks, "`, `"))
		r.Printf("- Codes: `%s`\n", joinCodes(info.Codes))
		return nil
	default:
		styles := r.Styles()
		r.Header(1, fmt.Sprintf("%s - %s", info.ID, info.Name))
		r.Printf("  %s: %s\n", styles.Bold.Render("Group"), info.Group)
		r.Printf("  %s: %s\n", styles.Bold.Render("Status"), enabledLabel(info.Enabled))
		r.Printf("  %s: %s\n", styles.Bold.Render("Hooks"), strings.Join(info.Hooks, ", "))
		r.Printf("  %s: %s\n", styles.Bold.Render("Codes"), joinCodes(info.Codes))
		r.Println("")
		r.Println("  " + info.Description)
		return nil
	}
}

func enabledLabel(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func joinCodes(codes []wall.Code) string {
	s := make([]string, len(codes))
	for i, c := range codes {
		s[i] = string(c)
	}
	return strings.Join(s, ", ")
}

var tableStatsHeader = []string{"Table", "Select", "Insert", "Update", "Delete", "Show"}

func tableStatsRows(stats map[string]wall.TableStat) [][]string {
	rows := make([][]string, 0, len(stats))
	for _, name := range slices.Sorted(maps.Keys(stats)) {
		st := stats[name]
		rows = append(rows, []string{
			name,
			strconv.Itoa(st.Select),
			strconv.Itoa(st.Insert),
			strconv.Itoa(st.Update),
			strconv.Itoa(st.Delete),
			strconv.Itoa(st.Show),
		})
	}
	return rows
}
