package checks

import (
	"github.com/leapstack-labs/sqlwall/pkg/ast"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

func init() {
	wall.Register(Property)
}

// Property flags column references qualified by a denied schema, as in
// information_schema.tables.table_name.
var Property = wall.CheckDef{
	ID:          "WS17",
	Name:        "expression.schema",
	Group:       groupExpression,
	Hooks:       []wall.Hook{wall.HookPropertyAccess},
	Description: "Column reference through a denied schema.",
	Codes:       []wall.Code{wall.CodeSchemaDeny},
	Check:       checkProperty,
}

func checkProperty(v *wall.Visitor, n ast.Node) wall.Outcome {
	prop, ok := n.(*ast.PropertyExpr)
	cfg := v.Config()
	if !ok || !cfg.SchemaCheck {
		return wall.Continue
	}
	// Only the outermost link of a chain reports.
	if _, inner := prop.Parent().(*ast.PropertyExpr); inner {
		return wall.Continue
	}
	owner, ok := prop.Owner.(*ast.PropertyExpr)
	if !ok {
		return wall.Continue
	}
	schema, ok := owner.Owner.(*ast.Identifier)
	if ok && cfg.DeniedSchemas.Has(ast.NormalizeName(schema.Name)) {
		v.AddViolation(wall.CodeSchemaDeny, "schema not allowed: "+schema.Name, prop)
		return wall.StopDenied
	}
	return wall.Continue
}
