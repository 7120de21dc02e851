package checks

import (
	"github.com/leapstack-labs/sqlwall/pkg/ast"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

func init() {
	wall.Register(SelectItem)
}

// SelectItem flags SELECT * when all-column selects are disabled.
var SelectItem = wall.CheckDef{
	ID:          "WS15",
	Name:        "select.all_column",
	Group:       groupExpression,
	Hooks:       []wall.Hook{wall.HookSelectItem},
	Description: "SELECT * is not allowed.",
	Codes:       []wall.Code{wall.CodeSelectAllColumn},
	Check:       checkSelectItem,
}

func checkSelectItem(v *wall.Visitor, n ast.Node) wall.Outcome {
	item, ok := n.(*ast.SelectItem)
	if !ok || v.Config().SelectAllColumnAllowed {
		return wall.Continue
	}
	if _, star := item.Expr.(*ast.AllColumnExpr); star {
		v.AddViolation(wall.CodeSelectAllColumn, "select * not allowed", item)
	}
	return wall.Continue
}
