package checks

import (
	"slices"

	"github.com/leapstack-labs/sqlwall/pkg/ast"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

func init() {
	wall.Register(TableSource)
}

// TableSource resolves a named table source: it counts the reference,
// records system provenance on the top statement and applies the table and
// schema deny lists. A denied source stops the walk.
var TableSource = wall.CheckDef{
	ID:          "WS12",
	Name:        "table.source",
	Group:       groupTable,
	Hooks:       []wall.Hook{wall.HookTableSource},
	Description: "Table or schema is denied.",
	Codes:       []wall.Code{wall.CodeTableDeny, wall.CodeSchemaDeny},
	Check:       checkTableSource,
}

func checkTableSource(v *wall.Visitor, n ast.Node) wall.Outcome {
	ts, ok := n.(*ast.ExprTableSource)
	if !ok || !ts.IsName() {
		return wall.Continue
	}
	cfg := v.Config()
	name := ts.Name()
	schema := ast.NormalizeName(name.Schema)

	if top := v.Context().Top(); top != nil {
		if schema != "" && cfg.SystemSchemas.Has(schema) {
			top.FromSysSchema = true
		}
		if cfg.SystemTables.Has(ast.NormalizeName(name.Name)) && (schema == "" || cfg.SystemSchemas.Has(schema)) {
			top.FromSysTable = true
		}
	}
	countUsage(v.Context().TableStat(name.String()), ts)

	out := wall.Continue
	if cfg.SchemaCheck && schema != "" && cfg.DeniedSchemas.Has(schema) {
		v.AddViolation(wall.CodeSchemaDeny, "schema not allowed: "+name.Schema, ts)
		out = wall.StopDenied
	}
	if v.IsTableDenied(name.String()) {
		v.AddViolation(wall.CodeTableDeny, "table not allowed: "+name.String(), ts)
		out = wall.StopDenied
	}
	return out
}

// countUsage increments the counter matching the role of ts in its
// statement. Sources that are only read count as selects.
func countUsage(stat *wall.TableStat, ts *ast.ExprTableSource) {
	var child ast.Node = ts
	parent := ts.Parent()
	for {
		if _, isJoin := parent.(*ast.JoinTableSource); !isJoin {
			break
		}
		child, parent = parent, parent.Parent()
	}

	switch p := parent.(type) {
	case *ast.InsertStatement:
		if p.Table == ts {
			stat.Insert++
			return
		}
	case *ast.UpdateStatement:
		if ast.Same(p.Table, child) {
			stat.Update++
			return
		}
	case *ast.MySQLDeleteStatement:
		if slices.Contains(p.Targets, ts) || (len(p.Targets) == 0 && ast.Same(p.Table, child)) {
			stat.Delete++
			return
		}
	case *ast.DeleteStatement:
		if ast.Same(p.Table, child) {
			stat.Delete++
			return
		}
	}
	stat.Select++
}
