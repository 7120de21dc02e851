// Package config loads the firewall policy and the settings of the sqlwall
// binary.
//
// Values are layered with koanf, lowest precedence first: built-in defaults,
// the YAML config file, SQLWALL_* environment variables and explicitly set
// command-line flags. List values given as plain strings (environment and
// flags) are split on commas.
package config

import (
	"strings"

	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

// Config holds the policy and the process settings. Keys are flat so that
// every key has an obvious environment variable.
type Config struct {
	SelectAllowed            bool     `koanf:"select_allowed" yaml:"select_allowed"`
	SelectRowLimit           *uint64  `koanf:"select_row_limit" yaml:"select_row_limit"`
	LimitZeroAllowed         bool     `koanf:"limit_zero_allowed" yaml:"limit_zero_allowed"`
	VariableCheck            bool     `koanf:"variable_check" yaml:"variable_check"`
	PermittedVariables       []string `koanf:"permitted_variables" yaml:"permitted_variables"`
	DeniedVariables          []string `koanf:"denied_variables" yaml:"denied_variables"`
	TableCheck               bool     `koanf:"table_check" yaml:"table_check"`
	SelectIntoOutfileAllowed bool     `koanf:"select_into_outfile_allowed" yaml:"select_into_outfile_allowed"`
	SelectIntoAllowed        bool     `koanf:"select_into_allowed" yaml:"select_into_allowed"`

	InsertAllowed      bool `koanf:"insert_allowed" yaml:"insert_allowed"`
	UpdateAllowed      bool `koanf:"update_allowed" yaml:"update_allowed"`
	DeleteAllowed      bool `koanf:"delete_allowed" yaml:"delete_allowed"`
	CreateTableAllowed bool `koanf:"create_table_allowed" yaml:"create_table_allowed"`
	AlterTableAllowed  bool `koanf:"alter_table_allowed" yaml:"alter_table_allowed"`
	DropTableAllowed   bool `koanf:"drop_table_allowed" yaml:"drop_table_allowed"`

	MultiStatementAllowed bool `koanf:"multi_statement_allowed" yaml:"multi_statement_allowed"`
	CommentAllowed        bool `koanf:"comment_allowed" yaml:"comment_allowed"`
	HintAllowed           bool `koanf:"hint_allowed" yaml:"hint_allowed"`

	FunctionCheck   bool     `koanf:"function_check" yaml:"function_check"`
	DeniedFunctions []string `koanf:"denied_functions" yaml:"denied_functions"`

	SchemaCheck   bool     `koanf:"schema_check" yaml:"schema_check"`
	DeniedSchemas []string `koanf:"denied_schemas" yaml:"denied_schemas"`
	SystemSchemas []string `koanf:"system_schemas" yaml:"system_schemas"`
	SystemTables  []string `koanf:"system_tables" yaml:"system_tables"`

	ReadOnlyTables []string `koanf:"read_only_tables" yaml:"read_only_tables"`
	// UpdateCheckColumns lists table.column (or schema.table.column) entries
	// whose UPDATE assignments are collected for validation.
	UpdateCheckColumns []string `koanf:"update_check_columns" yaml:"update_check_columns"`

	ConditionAlwaysTrueCheck bool `koanf:"condition_always_true_check" yaml:"condition_always_true_check"`
	DeleteWhereNoneCheck     bool `koanf:"delete_where_none_check" yaml:"delete_where_none_check"`
	UpdateWhereNoneCheck     bool `koanf:"update_where_none_check" yaml:"update_where_none_check"`
	SelectUnionCheck         bool `koanf:"select_union_check" yaml:"select_union_check"`
	ConditionXorAllowed      bool `koanf:"condition_xor_allowed" yaml:"condition_xor_allowed"`
	ConditionBitwiseAllowed  bool `koanf:"condition_bitwise_allowed" yaml:"condition_bitwise_allowed"`
	SelectAllColumnAllowed   bool `koanf:"select_all_column_allowed" yaml:"select_all_column_allowed"`
	LiteralInjectionCheck    bool `koanf:"literal_injection_check" yaml:"literal_injection_check"`

	DisabledChecks []string `koanf:"disabled_checks" yaml:"disabled_checks"`

	// DenyTables and PermitTables feed the table permitter.
	DenyTables   []string `koanf:"deny_tables" yaml:"deny_tables"`
	PermitTables []string `koanf:"permit_tables" yaml:"permit_tables"`

	Listen  string `koanf:"listen" yaml:"listen"`
	AuditDB string `koanf:"audit_db" yaml:"audit_db"`
	Output  string `koanf:"output" yaml:"output"`
	Verbose bool   `koanf:"verbose" yaml:"-"`

	// Source is the config file the values were read from, if any.
	Source string `koanf:"-" yaml:"-"`
}

// Policy converts the loaded values into an engine policy.
func (c *Config) Policy() *wall.Config {
	return &wall.Config{
		SelectAllowed:            c.SelectAllowed,
		SelectRowLimit:           cloneLimit(c.SelectRowLimit),
		LimitZeroAllowed:         c.LimitZeroAllowed,
		VariableCheck:            c.VariableCheck,
		PermittedVariables:       wall.NewSet(c.PermittedVariables...),
		DeniedVariables:          wall.NewSet(c.DeniedVariables...),
		TableCheck:               c.TableCheck,
		SelectIntoOutfileAllowed: c.SelectIntoOutfileAllowed,
		SelectIntoAllowed:        c.SelectIntoAllowed,

		InsertAllowed:      c.InsertAllowed,
		UpdateAllowed:      c.UpdateAllowed,
		DeleteAllowed:      c.DeleteAllowed,
		CreateTableAllowed: c.CreateTableAllowed,
		AlterTableAllowed:  c.AlterTableAllowed,
		DropTableAllowed:   c.DropTableAllowed,

		MultiStatementAllowed: c.MultiStatementAllowed,
		CommentAllowed:        c.CommentAllowed,
		HintAllowed:           c.HintAllowed,

		FunctionCheck:   c.FunctionCheck,
		DeniedFunctions: wall.NewSet(c.DeniedFunctions...),

		SchemaCheck:   c.SchemaCheck,
		DeniedSchemas: wall.NewSet(c.DeniedSchemas...),
		SystemSchemas: wall.NewSet(c.SystemSchemas...),
		SystemTables:  wall.NewSet(c.SystemTables...),

		ReadOnlyTables:     wall.NewSet(c.ReadOnlyTables...),
		UpdateCheckColumns: updateCheckColumns(c.UpdateCheckColumns),

		ConditionAlwaysTrueCheck: c.ConditionAlwaysTrueCheck,
		DeleteWhereNoneCheck:     c.DeleteWhereNoneCheck,
		UpdateWhereNoneCheck:     c.UpdateWhereNoneCheck,
		SelectUnionCheck:         c.SelectUnionCheck,
		ConditionXorAllowed:      c.ConditionXorAllowed,
		ConditionBitwiseAllowed:  c.ConditionBitwiseAllowed,
		SelectAllColumnAllowed:   c.SelectAllColumnAllowed,
		LiteralInjectionCheck:    c.LiteralInjectionCheck,

		DisabledChecks: wall.NewSet(c.DisabledChecks...),
	}
}

// Tables returns the table permitter described by deny_tables and
// permit_tables, or nil when both lists are empty.
func (c *Config) Tables() wall.TablePermitter {
	if len(c.DenyTables) == 0 && len(c.PermitTables) == 0 {
		return nil
	}
	return NewTableList(c.DenyTables, c.PermitTables)
}

// EngineOptions returns the engine options implied by the config.
func (c *Config) EngineOptions() []wall.Option {
	if t := c.Tables(); t != nil {
		return []wall.Option{wall.WithTablePermitter(t)}
	}
	return nil
}

func cloneLimit(n *uint64) *uint64 {
	if n == nil {
		return nil
	}
	return wall.RowLimit(*n)
}

// updateCheckColumns groups table.column entries by lower-case table name.
// Entries without a table are skipped; Validate rejects them.
func updateCheckColumns(entries []string) map[string]wall.Set {
	out := make(map[string]wall.Set)
	for _, entry := range entries {
		table, column, ok := splitColumn(entry)
		if !ok {
			continue
		}
		if out[table] == nil {
			out[table] = wall.NewSet()
		}
		out[table][column] = struct{}{}
	}
	return out
}

// splitColumn splits an entry at its last dot.
func splitColumn(entry string) (table, column string, ok bool) {
	i := strings.LastIndex(entry, ".")
	if i <= 0 || i == len(entry)-1 {
		return "", "", false
	}
	return strings.ToLower(strings.TrimSpace(entry[:i])), strings.ToLower(strings.TrimSpace(entry[i+1:])), true
}
