package checks

import (
	"github.com/leapstack-labs/sqlwall/pkg/ast"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

func init() {
	wall.Register(Operator)
}

// Operator flags XOR and bitwise operators inside conditions, which blind
// injection uses to extract data one bit at a time.
var Operator = wall.CheckDef{
	ID:          "WS13",
	Name:        "condition.operator",
	Group:       groupCondition,
	Hooks:       []wall.Hook{wall.HookBinaryOp},
	Description: "XOR or bitwise operator in a condition.",
	Codes:       []wall.Code{wall.CodeXorNotAllowed, wall.CodeBitwiseNotAllowed},
	Check:       checkOperator,
}

func checkOperator(v *wall.Visitor, n ast.Node) wall.Outcome {
	expr, ok := n.(*ast.BinaryOpExpr)
	if !ok {
		return wall.Continue
	}
	cfg := v.Config()
	switch {
	case expr.Op == ast.OpXor && !cfg.ConditionXorAllowed:
		if inCondition(expr) {
			v.AddViolation(wall.CodeXorNotAllowed, "xor not allowed in condition", expr)
		}
	case expr.Op.IsBitwise() && !cfg.ConditionBitwiseAllowed:
		if inCondition(expr) {
			v.AddViolation(wall.CodeBitwiseNotAllowed, "bitwise operator not allowed in condition", expr)
		}
	}
	return wall.Continue
}
