package checks

import (
	"github.com/leapstack-labs/sqlwall/pkg/ast"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

func init() {
	wall.Register(Update)
}

// Update flags UPDATE of read-only tables and updates whose WHERE is missing
// or always true. It also collects assignments to watched columns.
var Update = wall.CheckDef{
	ID:          "WS07",
	Name:        "condition.update",
	Group:       groupCondition,
	Hooks:       []wall.Hook{wall.HookUpdate},
	Description: "UPDATE of a read-only table, or without an effective WHERE.",
	Codes:       []wall.Code{wall.CodeReadOnlyTable, wall.CodeNoneCondition, wall.CodeAlwaysTrue, wall.CodeUpdateCheckFail},
	Check:       checkUpdate,
}

func checkUpdate(v *wall.Visitor, n ast.Node) wall.Outcome {
	update, ok := n.(*ast.UpdateStatement)
	if !ok {
		return wall.Continue
	}
	reportReadOnly(v, ast.NamedTables(update.Table))
	reportCondition(v, update, update.Where, v.Config().UpdateWhereNoneCheck)
	collectUpdateItems(v, update)
	return wall.Continue
}

// collectUpdateItems records every assignment to a column watched by
// UpdateCheckColumns, with the equality filters of the WHERE condition.
func collectUpdateItems(v *wall.Visitor, update *ast.UpdateStatement) {
	watched := v.Config().UpdateCheckColumns
	if len(watched) == 0 {
		return
	}
	tables := ast.NamedTables(update.Table)

	var filters []wall.UpdateFilter
	filtered := false
	for _, set := range update.Set {
		owner, column, ok := columnRef(set.Target)
		if !ok {
			continue
		}
		ts := resolveTable(tables, owner)
		if ts == nil {
			continue
		}
		name := ts.Name()
		cols, ok := watched[ast.NormalizeName(name.String())]
		if !ok {
			cols, ok = watched[ast.NormalizeName(name.Name)]
		}
		if !ok || !cols.Has(ast.NormalizeName(column)) {
			continue
		}
		if !filtered {
			filters = equalityFilters(v, update.Where)
			filtered = true
		}
		v.AddUpdateCheckItem(wall.UpdateCheckItem{
			Table:   name.String(),
			Column:  ast.NormalizeName(column),
			Value:   v.Render(set.Value),
			Filters: filters,
		}, set)
	}
}

// columnRef splits a column reference into its qualifier and name.
func columnRef(e ast.Expr) (owner, column string, ok bool) {
	switch e := e.(type) {
	case *ast.Identifier:
		return "", e.Name, true
	case *ast.PropertyExpr:
		if id, isIdent := e.Owner.(*ast.Identifier); isIdent {
			return id.Name, e.Name, true
		}
	}
	return "", "", false
}

// resolveTable finds the source a column qualified by owner belongs to. An
// unqualified column resolves only when there is a single source.
func resolveTable(tables []*ast.ExprTableSource, owner string) *ast.ExprTableSource {
	if owner == "" {
		if len(tables) == 1 {
			return tables[0]
		}
		return nil
	}
	owner = ast.NormalizeName(owner)
	for _, ts := range tables {
		if ast.NormalizeName(ts.Alias) == owner || ast.NormalizeName(ts.Name().Name) == owner {
			return ts
		}
	}
	return nil
}

// equalityFilters collects column = literal and column IN (literals)
// restrictions joined by AND at the top of where.
func equalityFilters(v *wall.Visitor, where ast.Expr) []wall.UpdateFilter {
	var out []wall.UpdateFilter
	add := func(column string, values ...string) {
		column = ast.NormalizeName(column)
		for i := range out {
			if out[i].Column == column {
				out[i].Values = append(out[i].Values, values...)
				return
			}
		}
		out = append(out, wall.UpdateFilter{Column: column, Values: values})
	}

	var walk func(e ast.Expr)
	walk = func(e ast.Expr) {
		switch e := e.(type) {
		case *ast.ParenExpr:
			walk(e.Expr)
		case *ast.BinaryOpExpr:
			switch {
			case e.Op == ast.OpAnd:
				walk(e.Left)
				walk(e.Right)
			case e.Op != ast.OpEqual:
			case isLiteral(e.Right):
				if _, column, ok := columnRef(e.Left); ok {
					add(column, v.Render(e.Right))
				}
			case isLiteral(e.Left):
				if _, column, ok := columnRef(e.Right); ok {
					add(column, v.Render(e.Left))
				}
			}
		case *ast.InListExpr:
			_, column, ok := columnRef(e.Expr)
			if e.Not || !ok {
				return
			}
			values := make([]string, 0, len(e.List))
			for _, item := range e.List {
				if !isLiteral(item) {
					return
				}
				values = append(values, v.Render(item))
			}
			add(column, values...)
		}
	}
	walk(where)
	return out
}
