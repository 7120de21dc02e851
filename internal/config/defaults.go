package config

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

// Default process settings.
const (
	DefaultListen  = "127.0.0.1:8080"
	DefaultAuditDB = ".sqlwall/audit.db"
	DefaultOutput  = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// Default returns the built-in configuration: the default MySQL policy and
// the default process settings.
func Default() *Config {
	p := wall.DefaultConfig()
	return &Config{
		SelectAllowed:            p.SelectAllowed,
		SelectRowLimit:           p.SelectRowLimit,
		LimitZeroAllowed:         p.LimitZeroAllowed,
		VariableCheck:            p.VariableCheck,
		PermittedVariables:       p.PermittedVariables.Sorted(),
		DeniedVariables:          p.DeniedVariables.Sorted(),
		TableCheck:               p.TableCheck,
		SelectIntoOutfileAllowed: p.SelectIntoOutfileAllowed,
		SelectIntoAllowed:        p.SelectIntoAllowed,

		InsertAllowed:      p.InsertAllowed,
		UpdateAllowed:      p.UpdateAllowed,
		DeleteAllowed:      p.DeleteAllowed,
		CreateTableAllowed: p.CreateTableAllowed,
		AlterTableAllowed:  p.AlterTableAllowed,
		DropTableAllowed:   p.DropTableAllowed,

		MultiStatementAllowed: p.MultiStatementAllowed,
		CommentAllowed:        p.CommentAllowed,
		HintAllowed:           p.HintAllowed,

		FunctionCheck:   p.FunctionCheck,
		DeniedFunctions: p.DeniedFunctions.Sorted(),

		SchemaCheck:   p.SchemaCheck,
		DeniedSchemas: p.DeniedSchemas.Sorted(),
		SystemSchemas: p.SystemSchemas.Sorted(),
		SystemTables:  p.SystemTables.Sorted(),

		ReadOnlyTables:     p.ReadOnlyTables.Sorted(),
		UpdateCheckColumns: []string{},

		ConditionAlwaysTrueCheck: p.ConditionAlwaysTrueCheck,
		DeleteWhereNoneCheck:     p.DeleteWhereNoneCheck,
		UpdateWhereNoneCheck:     p.UpdateWhereNoneCheck,
		SelectUnionCheck:         p.SelectUnionCheck,
		ConditionXorAllowed:      p.ConditionXorAllowed,
		ConditionBitwiseAllowed:  p.ConditionBitwiseAllowed,
		SelectAllColumnAllowed:   p.SelectAllColumnAllowed,
		LiteralInjectionCheck:    p.LiteralInjectionCheck,

		DisabledChecks: p.DisabledChecks.Sorted(),
		DenyTables:     []string{},
		PermitTables:   []string{},

		Listen:  DefaultListen,
		AuditDB: DefaultAuditDB,
		Output:  DefaultOutput,
	}
}

// defaultMap flattens Default into the key/value form the confmap provider
// loads.
func defaultMap() (map[string]any, error) {
	out := make(map[string]any)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "koanf",
		Result:  &out,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(Default()); err != nil {
		return nil, fmt.Errorf("flatten defaults: %w", err)
	}
	return out, nil
}
