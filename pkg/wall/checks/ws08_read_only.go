package checks

import (
	"github.com/leapstack-labs/sqlwall/pkg/ast"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

func init() {
	wall.Register(ReadOnlyDelete)
}

// ReadOnlyDelete flags DELETE from read-only tables. In the multi-table form
// only the delete targets count; the FROM tables are merely read.
var ReadOnlyDelete = wall.CheckDef{
	ID:          "WS08",
	Name:        "table.read_only",
	Group:       groupTable,
	Hooks:       []wall.Hook{wall.HookReadOnly},
	Description: "DELETE from a read-only table.",
	Codes:       []wall.Code{wall.CodeReadOnlyTable},
	Check:       checkReadOnlyDelete,
}

func checkReadOnlyDelete(v *wall.Visitor, n ast.Node) wall.Outcome {
	del, ok := n.(*ast.MySQLDeleteStatement)
	if !ok {
		return wall.Continue
	}
	if len(del.Targets) > 0 {
		reportReadOnly(v, del.Targets)
	} else {
		reportReadOnly(v, ast.NamedTables(del.Table))
	}
	return wall.Continue
}
