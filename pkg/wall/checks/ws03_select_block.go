package checks

import (
	"github.com/leapstack-labs/sqlwall/pkg/ast"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

func init() {
	wall.Register(SelectBlock)
}

// SelectBlock flags query blocks whose WHERE always holds and blocks that
// write their result somewhere.
var SelectBlock = wall.CheckDef{
	ID:          "WS03",
	Name:        "condition.select",
	Group:       groupCondition,
	Hooks:       []wall.Hook{wall.HookSelectBlock},
	Description: "SELECT with an always-true WHERE, or SELECT ... INTO.",
	Codes:       []wall.Code{wall.CodeAlwaysTrue, wall.CodeSelectIntoNotAllowed, wall.CodeIntoOutfile},
	Check:       checkSelectBlock,
}

func checkSelectBlock(v *wall.Visitor, n ast.Node) wall.Outcome {
	block, ok := n.(*ast.SelectBlock)
	if !ok {
		return wall.Continue
	}
	cfg := v.Config()

	// WHERE 1 = 1 is what query builders start from.
	if cfg.ConditionAlwaysTrueCheck && IsAlwaysTrue(block.Where) && !isSimpleConstCompare(block.Where) {
		v.AddViolation(wall.CodeAlwaysTrue, "condition is always true", block.Where)
	}

	if block.Into != nil {
		switch {
		case !cfg.SelectIntoAllowed:
			v.AddViolation(wall.CodeSelectIntoNotAllowed, "select into not allowed", block.Into)
		case !cfg.SelectIntoOutfileAllowed && wall.IsTopSelectOutFile(block.Into):
			v.AddViolation(wall.CodeIntoOutfile, "into outfile not allowed", block.Into)
		}
	}
	return wall.Continue
}
