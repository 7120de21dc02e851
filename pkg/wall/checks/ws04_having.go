package checks

import (
	"github.com/leapstack-labs/sqlwall/pkg/ast"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

func init() {
	wall.Register(Having)
}

// Having flags a HAVING condition that always holds.
var Having = wall.CheckDef{
	ID:          "WS04",
	Name:        "condition.having",
	Group:       groupCondition,
	Hooks:       []wall.Hook{wall.HookHaving},
	Description: "HAVING condition is always true.",
	Codes:       []wall.Code{wall.CodeAlwaysTrue},
	Check:       checkHaving,
}

func checkHaving(v *wall.Visitor, n ast.Node) wall.Outcome {
	groupBy, ok := n.(*ast.GroupBy)
	if !ok || !v.Config().ConditionAlwaysTrueCheck {
		return wall.Continue
	}
	if IsAlwaysTrue(groupBy.Having) && !isSimpleConstCompare(groupBy.Having) {
		v.AddViolation(wall.CodeAlwaysTrue, "condition is always true", groupBy.Having)
	}
	return wall.Continue
}
