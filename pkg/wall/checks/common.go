package checks

import (
	"github.com/leapstack-labs/sqlwall/pkg/ast"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

// Check groups.
const (
	groupStatement  = "statement"
	groupCondition  = "condition"
	groupTable      = "table"
	groupExpression = "expression"
	groupComment    = "comment"
)

// inCondition reports whether n lies inside a WHERE, HAVING or JOIN ... ON
// condition.
func inCondition(n ast.Node) bool {
	if wall.IsWhereOrHaving(n) {
		return true
	}
	for x := n; x.Parent() != nil; x = x.Parent() {
		if join, ok := x.Parent().(*ast.JoinTableSource); ok && ast.Same(join.On, x) {
			return true
		}
	}
	return false
}

// conditionRoot returns the outermost expression containing n below its
// clause or query.
func conditionRoot(n ast.Expr) ast.Expr {
	root := n
	for {
		p, ok := root.Parent().(ast.Expr)
		if !ok {
			return root
		}
		if _, isQuery := p.(ast.Query); isQuery {
			return root
		}
		root = p
	}
}

// reportReadOnly flags every source naming a read-only table.
func reportReadOnly(v *wall.Visitor, sources []*ast.ExprTableSource) {
	readOnly := v.Config().ReadOnlyTables
	if len(readOnly) == 0 {
		return
	}
	for _, ts := range sources {
		name := ts.Name()
		if readOnly.Has(ast.NormalizeName(name.Name)) || readOnly.Has(ast.NormalizeName(name.String())) {
			v.AddViolation(wall.CodeReadOnlyTable, "table is read only: "+name.String(), ts)
		}
	}
}

// reportCondition applies the missing-WHERE and always-true rules of data
// modifying statements.
func reportCondition(v *wall.Visitor, stmt ast.Node, where ast.Expr, noneCheck bool) {
	cfg := v.Config()
	switch {
	case where == nil && noneCheck:
		v.AddViolation(wall.CodeNoneCondition, "statement has no WHERE condition", stmt)
	case where != nil && cfg.ConditionAlwaysTrueCheck && IsAlwaysTrue(where):
		v.AddViolation(wall.CodeAlwaysTrue, "condition is always true", where)
	}
}
