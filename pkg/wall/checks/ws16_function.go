package checks

import (
	"github.com/leapstack-labs/sqlwall/pkg/ast"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

func init() {
	wall.Register(Function)
}

// Function flags calls to denied functions. A bare top-level call such as
// SELECT version() is tolerated; the same call inside a table query or a
// subquery is not.
var Function = wall.CheckDef{
	ID:          "WS16",
	Name:        "expression.function",
	Group:       groupExpression,
	Hooks:       []wall.Hook{wall.HookMethodInvoke},
	Description: "Call to a denied function.",
	Codes:       []wall.Code{wall.CodeFunctionDeny},
	Check:       checkFunction,
}

func checkFunction(v *wall.Visitor, n ast.Node) wall.Outcome {
	call, ok := n.(*ast.MethodInvokeExpr)
	cfg := v.Config()
	if !ok || !cfg.FunctionCheck || call.Owner != nil {
		return wall.Continue
	}
	if cfg.DeniedFunctions.Has(call.Name) && !wall.IsTopNoneFromSelect(call) {
		v.AddViolation(wall.CodeFunctionDeny, "function not allowed: "+call.Name, call)
	}
	return wall.Continue
}
