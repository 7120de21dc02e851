package wall

import (
	"maps"
	"slices"
	"strings"
)

// Set is a case-insensitive set of names.
type Set map[string]struct{}

// NewSet builds a Set from names, lower-casing each entry.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			s[strings.ToLower(n)] = struct{}{}
		}
	}
	return s
}

// Has reports whether name is in the set, ignoring case.
func (s Set) Has(name string) bool {
	_, ok := s[strings.ToLower(name)]
	return ok
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// Config is the policy consulted by the visitor and by every check. A Config
// must not be modified once it has been handed to an Engine; use Clone to
// derive a variant.
type Config struct {
	// SelectAllowed permits root SELECT statements.
	SelectAllowed bool
	// SelectRowLimit caps the rows returned by a root SELECT. Nil disables
	// the rewrite; zero is a valid limit.
	SelectRowLimit *uint64
	// LimitZeroAllowed permits LIMIT 0.
	LimitZeroAllowed bool
	// VariableCheck enables the system-variable access rule.
	VariableCheck      bool
	PermittedVariables Set
	DeniedVariables    Set
	// TableCheck gates the external table deny lookup.
	TableCheck bool
	// SelectIntoOutfileAllowed permits SELECT ... INTO OUTFILE anywhere.
	SelectIntoOutfileAllowed bool
	// SelectIntoAllowed permits any INTO target on a root query block.
	SelectIntoAllowed bool

	InsertAllowed      bool
	UpdateAllowed      bool
	DeleteAllowed      bool
	CreateTableAllowed bool
	AlterTableAllowed  bool
	DropTableAllowed   bool

	// MultiStatementAllowed permits more than one statement per input text.
	MultiStatementAllowed bool
	// CommentAllowed permits comments anywhere in the statement text.
	CommentAllowed bool
	// HintAllowed permits MySQL executable comments (/*! ... */).
	HintAllowed bool

	FunctionCheck   bool
	DeniedFunctions Set

	SchemaCheck   bool
	DeniedSchemas Set
	SystemSchemas Set
	SystemTables  Set

	ReadOnlyTables Set
	// UpdateCheckColumns maps a lower-case table name to the columns whose
	// UPDATE assignments are collected as UpdateCheckItems.
	UpdateCheckColumns map[string]Set

	ConditionAlwaysTrueCheck bool
	DeleteWhereNoneCheck     bool
	UpdateWhereNoneCheck     bool
	SelectUnionCheck         bool
	ConditionXorAllowed      bool
	ConditionBitwiseAllowed  bool
	SelectAllColumnAllowed   bool
	LiteralInjectionCheck    bool

	// DisabledChecks lists check IDs that are not run.
	DisabledChecks Set
}

// Default deny and permit lists.
var (
	DefaultDeniedVariables = []string{
		"version", "version_compile_os", "version_compile_machine", "basedir", "datadir",
		"tmpdir", "hostname", "plugin_dir", "secure_file_priv", "log_error",
		"general_log_file", "slow_query_log_file", "character_sets_dir",
	}
	DefaultPermittedVariables = []string{
		"identity", "version_comment", "autocommit", "tx_isolation", "transaction_isolation",
		"tx_read_only", "transaction_read_only", "max_allowed_packet", "sql_mode",
		"time_zone", "system_time_zone", "lower_case_table_names", "net_write_timeout",
		"character_set_client", "character_set_connection", "character_set_results",
		"character_set_server", "collation_server", "collation_connection",
		"interactive_timeout", "wait_timeout", "query_cache_size", "query_cache_type",
		"license", "init_connect", "performance_schema", "last_insert_id",
	}
	DefaultDeniedFunctions = []string{
		"version", "load_file", "database", "schema", "user", "system_user", "session_user",
		"current_user", "benchmark", "sleep", "connection_id", "get_lock", "release_lock",
		"master_pos_wait", "extractvalue", "updatexml", "sys_exec", "sys_eval",
	}
	DefaultDeniedSchemas = []string{"information_schema", "mysql", "performance_schema", "sys"}
	DefaultSystemTables  = []string{"user", "db", "tables_priv", "columns_priv", "procs_priv", "proc", "func"}
)

// DefaultConfig returns the default MySQL policy: every statement kind is
// allowed and the injection-oriented checks are enabled.
func DefaultConfig() *Config {
	return &Config{
		SelectAllowed:      true,
		LimitZeroAllowed:   false,
		VariableCheck:      true,
		PermittedVariables: NewSet(DefaultPermittedVariables...),
		DeniedVariables:    NewSet(DefaultDeniedVariables...),
		TableCheck:         true,
		SelectIntoAllowed:  true,

		InsertAllowed:      true,
		UpdateAllowed:      true,
		DeleteAllowed:      true,
		CreateTableAllowed: true,
		AlterTableAllowed:  true,
		DropTableAllowed:   true,

		HintAllowed: true,

		FunctionCheck:   true,
		DeniedFunctions: NewSet(DefaultDeniedFunctions...),

		SchemaCheck:   true,
		DeniedSchemas: NewSet(DefaultDeniedSchemas...),
		SystemSchemas: NewSet(DefaultDeniedSchemas...),
		SystemTables:  NewSet(DefaultSystemTables...),

		ReadOnlyTables:     NewSet(),
		UpdateCheckColumns: map[string]Set{},

		ConditionAlwaysTrueCheck: true,
		SelectUnionCheck:         true,
		ConditionBitwiseAllowed:  true,
		SelectAllColumnAllowed:   true,

		DisabledChecks: NewSet(),
	}
}

// RowLimit returns n as a SelectRowLimit value.
func RowLimit(n uint64) *uint64 { return &n }

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	if c.SelectRowLimit != nil {
		out.SelectRowLimit = RowLimit(*c.SelectRowLimit)
	}
	out.PermittedVariables = maps.Clone(c.PermittedVariables)
	out.DeniedVariables = maps.Clone(c.DeniedVariables)
	out.DeniedFunctions = maps.Clone(c.DeniedFunctions)
	out.DeniedSchemas = maps.Clone(c.DeniedSchemas)
	out.SystemSchemas = maps.Clone(c.SystemSchemas)
	out.SystemTables = maps.Clone(c.SystemTables)
	out.ReadOnlyTables = maps.Clone(c.ReadOnlyTables)
	if c.UpdateCheckColumns != nil {
		out.UpdateCheckColumns = make(map[string]Set, len(c.UpdateCheckColumns))
		for table, cols := range c.UpdateCheckColumns {
			out.UpdateCheckColumns[table] = maps.Clone(cols)
		}
	}
	out.DisabledChecks = maps.Clone(c.DisabledChecks)
	return &out
}

// TablePermitter is the external deny-list provider. Name matching rules
// (case, schema qualification) belong to the implementation.
type TablePermitter interface {
	IsTablePermitted(name string) bool
}

// TablePermitterFunc adapts a function to TablePermitter.
type TablePermitterFunc func(name string) bool

// IsTablePermitted implements TablePermitter.
func (f TablePermitterFunc) IsTablePermitted(name string) bool { return f(name) }
