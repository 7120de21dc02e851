package checks

import (
	"github.com/leapstack-labs/sqlwall/pkg/ast"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

func init() {
	wall.Register(Insert)
}

// Insert flags INSERT and REPLACE into read-only tables. Denied targets are
// reported by the table-source check when the visitor reaches the target.
var Insert = wall.CheckDef{
	ID:          "WS06",
	Name:        "table.insert",
	Group:       groupTable,
	Hooks:       []wall.Hook{wall.HookInsert},
	Description: "INSERT into a read-only table.",
	Codes:       []wall.Code{wall.CodeReadOnlyTable},
	Check:       checkInsert,
}

func checkInsert(v *wall.Visitor, n ast.Node) wall.Outcome {
	insert, ok := n.(*ast.InsertStatement)
	if !ok || insert.Table == nil {
		return wall.Continue
	}
	reportReadOnly(v, []*ast.ExprTableSource{insert.Table})
	return wall.Continue
}
