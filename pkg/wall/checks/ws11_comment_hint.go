package checks

import (
	"github.com/leapstack-labs/sqlwall/pkg/ast"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

func init() {
	wall.Register(CommentHint)
}

// CommentHint applies the comment and hint toggles. Trailing comments are
// left to WS02.
var CommentHint = wall.CheckDef{
	ID:          "WS11",
	Name:        "comment.hint",
	Group:       groupComment,
	Hooks:       []wall.Hook{wall.HookCommentHint},
	Description: "Comment or hint not allowed by policy.",
	Codes:       []wall.Code{wall.CodeCommentNotAllowed, wall.CodeEvilHint},
	Check:       checkCommentHint,
}

func checkCommentHint(v *wall.Visitor, n ast.Node) wall.Outcome {
	hint, ok := n.(*ast.CommentHint)
	if !ok || hint.Trailing {
		return wall.Continue
	}
	cfg := v.Config()
	switch hint.Type {
	case ast.HintExecutable, ast.HintOptimizer:
		if !cfg.HintAllowed {
			v.AddViolation(wall.CodeEvilHint, "hint not allowed", hint)
			return wall.StopDenied
		}
	case ast.HintComment:
		if !cfg.CommentAllowed {
			v.AddViolation(wall.CodeCommentNotAllowed, "comment not allowed", hint)
			return wall.StopDenied
		}
	}
	return wall.Continue
}
