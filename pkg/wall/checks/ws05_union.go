package checks

import (
	"github.com/leapstack-labs/sqlwall/pkg/ast"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

func init() {
	wall.Register(Union)
}

// Union flags a UNION that glues a FROM-less block onto a table query, as in
// SELECT a FROM t UNION SELECT version(). Unions of table queries, and unions
// made only of constant rows, pass.
var Union = wall.CheckDef{
	ID:          "WS05",
	Name:        "union.constant_row",
	Group:       groupStatement,
	Hooks:       []wall.Hook{wall.HookUnion},
	Description: "UNION of a constant-row block with a table query.",
	Codes:       []wall.Code{wall.CodeUnionNotAllowed},
	Check:       checkUnion,
}

func checkUnion(v *wall.Visitor, n ast.Node) wall.Outcome {
	union, ok := n.(*ast.UnionQuery)
	if !ok || !v.Config().SelectUnionCheck {
		return wall.Continue
	}
	// Nested unions are judged once, from the outermost one.
	if _, nested := union.Parent().(*ast.UnionQuery); nested {
		return wall.Continue
	}

	var withFrom, withoutFrom int
	for _, block := range unionBlocks(union) {
		if block.From == nil {
			withoutFrom++
		} else {
			withFrom++
		}
	}
	if withFrom > 0 && withoutFrom > 0 {
		v.AddViolation(wall.CodeUnionNotAllowed, "union with a constant-row select not allowed", union)
	}
	return wall.Continue
}

// unionBlocks returns the query blocks of a union tree, left to right.
func unionBlocks(q ast.Query) []*ast.SelectBlock {
	switch q := q.(type) {
	case *ast.SelectBlock:
		return []*ast.SelectBlock{q}
	case *ast.UnionQuery:
		return append(unionBlocks(q.Left), unionBlocks(q.Right)...)
	}
	return nil
}
