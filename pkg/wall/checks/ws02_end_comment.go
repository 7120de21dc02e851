package checks

import (
	"github.com/leapstack-labs/sqlwall/pkg/ast"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

func init() {
	wall.Register(EndComment)
}

// EndComment flags a statement whose text ends in a comment, the shape left
// behind when an injected payload comments out the rest of the query.
var EndComment = wall.CheckDef{
	ID:          "WS02",
	Name:        "comment.trailing",
	Group:       groupComment,
	Hooks:       []wall.Hook{wall.HookPreVisit},
	Description: "Statement ends with a comment.",
	Codes:       []wall.Code{wall.CodeCommentNotAllowed},
	Check:       checkEndComment,
}

func checkEndComment(v *wall.Visitor, n ast.Node) wall.Outcome {
	stmt, ok := n.(ast.Statement)
	if !ok || stmt.Parent() != nil || v.Config().CommentAllowed {
		return wall.Continue
	}
	for _, hint := range stmt.Comments() {
		if hint.Trailing && hint.Type != ast.HintVendor {
			v.AddViolation(wall.CodeCommentNotAllowed, "statement ends with a comment", hint)
			return wall.StopDenied
		}
	}
	return wall.Continue
}
