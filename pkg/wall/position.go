package wall

import "github.com/leapstack-labs/sqlwall/pkg/ast"

// IsSelectItemOrAssignment reports whether n sits directly in a select list
// or in an assignment.
func IsSelectItemOrAssignment(n ast.Node) bool {
	switch n.Parent().(type) {
	case *ast.SelectItem, *ast.Assignment:
		return true
	}
	return false
}

// IsTopNoneFromSelect reports whether n belongs to the select list of a
// FROM-less query block that is itself the query of the root SELECT
// statement, as in SELECT @@version or SELECT sleep(1).
func IsTopNoneFromSelect(n ast.Node) bool {
	x := n.Parent()
	for x != nil {
		if _, isQuery := x.(ast.Query); isQuery {
			return false
		}
		if _, isExpr := x.(ast.Expr); !isExpr {
			break
		}
		x = x.Parent()
	}
	item, ok := x.(*ast.SelectItem)
	if !ok {
		return false
	}
	block, ok := item.Parent().(*ast.SelectBlock)
	if !ok || block.From != nil {
		return false
	}
	stmt, ok := block.Parent().(*ast.SelectStatement)
	return ok && stmt.Parent() == nil
}

// IsWhereOrHaving reports whether n lies inside a WHERE or HAVING condition.
func IsWhereOrHaving(n ast.Node) bool {
	for x := n; x != nil; x = x.Parent() {
		p := x.Parent()
		if p == nil {
			return false
		}
		switch p := p.(type) {
		case *ast.SelectBlock:
			if ast.Same(p.Where, x) {
				return true
			}
		case *ast.GroupBy:
			if ast.Same(p.Having, x) {
				return true
			}
		case *ast.UpdateStatement:
			if ast.Same(p.Where, x) {
				return true
			}
		case *ast.DeleteStatement:
			if ast.Same(p.Where, x) {
				return true
			}
		case *ast.MySQLDeleteStatement:
			if ast.Same(p.Where, x) {
				return true
			}
		}
	}
	return false
}

// InSensitivePosition reports whether n lies inside a GROUP BY, ORDER BY or
// LIMIT clause. Probing expressions there leak data through sort order and
// row counts.
func InSensitivePosition(n ast.Node) bool {
	for x := n.Parent(); x != nil; x = x.Parent() {
		switch x.(type) {
		case *ast.GroupBy, *ast.OrderBy, *ast.Limit:
			return true
		}
	}
	return false
}

// IsTopSelectOutFile reports whether n is the INTO OUTFILE target of the
// root SELECT statement's query block.
func IsTopSelectOutFile(n *ast.OutFileExpr) bool {
	block, ok := n.Parent().(*ast.SelectBlock)
	if !ok || block.Into != n {
		return false
	}
	stmt, ok := block.Parent().(*ast.SelectStatement)
	return ok && stmt.Parent() == nil
}

func isZeroLiteral(e ast.Expr) bool {
	num, ok := e.(*ast.NumberLiteral)
	return ok && num.Text == "0"
}
