package checks

import (
	"github.com/leapstack-labs/sqlwall/pkg/ast"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

func init() {
	wall.Register(Delete)
}

// Delete flags deletes whose WHERE is missing or always true.
var Delete = wall.CheckDef{
	ID:          "WS09",
	Name:        "condition.delete",
	Group:       groupCondition,
	Hooks:       []wall.Hook{wall.HookDelete},
	Description: "DELETE without an effective WHERE.",
	Codes:       []wall.Code{wall.CodeNoneCondition, wall.CodeAlwaysTrue},
	Check:       checkDelete,
}

func checkDelete(v *wall.Visitor, n ast.Node) wall.Outcome {
	del, ok := n.(*ast.DeleteStatement)
	if !ok {
		return wall.Continue
	}
	reportCondition(v, del, del.Where, v.Config().DeleteWhereNoneCheck)
	return wall.Continue
}
