package checks

import (
	"github.com/leapstack-labs/sqlwall/pkg/ast"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

func init() {
	wall.Register(InList)
}

// InList flags a constant membership test such as 1 IN (1, 2) buried in a
// larger condition. A condition that is always true as a whole is reported by
// the clause checks instead.
var InList = wall.CheckDef{
	ID:          "WS14",
	Name:        "condition.in_list",
	Group:       groupCondition,
	Hooks:       []wall.Hook{wall.HookInList},
	Description: "Constant IN-list that is always true.",
	Codes:       []wall.Code{wall.CodeAlwaysTrue},
	Check:       checkInList,
}

func checkInList(v *wall.Visitor, n ast.Node) wall.Outcome {
	in, ok := n.(*ast.InListExpr)
	if !ok || !v.Config().ConditionAlwaysTrueCheck || !inCondition(in) {
		return wall.Continue
	}
	if IsAlwaysTrue(in) && !IsAlwaysTrue(conditionRoot(in)) {
		v.AddViolation(wall.CodeAlwaysTrue, "membership test is always true", in)
	}
	return wall.Continue
}
