package checks

import (
	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/leapstack-labs/sqlwall/pkg/ast"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

func init() {
	wall.Register(LiteralInjection)
}

// LiteralInjection runs libinjection over string literals compared inside
// conditions. A hit means the literal carries a payload that would break out
// of quoting if the value were ever concatenated into SQL again.
var LiteralInjection = wall.CheckDef{
	ID:          "WS18",
	Name:        "expression.literal_injection",
	Group:       groupExpression,
	Hooks:       []wall.Hook{wall.HookLiteral},
	Description: "String literal matches a SQL injection fingerprint.",
	Codes:       []wall.Code{wall.CodeLiteralInjection},
	Check:       checkLiteralInjection,
}

func checkLiteralInjection(v *wall.Visitor, n ast.Node) wall.Outcome {
	lit, ok := n.(*ast.StringLiteral)
	if !ok || !v.Config().LiteralInjectionCheck || !inCondition(lit) {
		return wall.Continue
	}
	if isSQLi, fingerprint := libinjection.IsSQLi(lit.Value); isSQLi {
		v.AddViolation(wall.CodeLiteralInjection, "literal matches injection fingerprint "+string(fingerprint), lit)
	}
	return wall.Continue
}
