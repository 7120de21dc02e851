package mysql

import (
	"fmt"
	"strings"

	"github.com/xwb1989/sqlparser"

	"github.com/leapstack-labs/sqlwall/pkg/ast"
)

// converter maps sqlparser nodes onto the statement tree. The first
// unsupported construct is kept in err; conversion carries on with
// placeholders so the caller sees a single error.
type converter struct {
	err error
	// blockHints counts comment texts already attached to query blocks so
	// they are not attached to the statement a second time.
	blockHints map[string]int
}

func (c *converter) fail(format string, args ...any) {
	if c.err == nil {
		c.err = fmt.Errorf("%w: "+format, append([]any{ErrUnsupported}, args...)...)
	}
}

// ---------- Statements ----------

func (c *converter) convert(stmt sqlparser.Statement, body, masked string) ast.Statement {
	switch s := stmt.(type) {
	case *sqlparser.Select:
		return &ast.SelectStatement{Query: c.selectBlock(s)}
	case *sqlparser.Union:
		return &ast.SelectStatement{Query: c.union(s)}
	case *sqlparser.ParenSelect:
		return &ast.SelectStatement{Query: c.query(s.Select)}
	case *sqlparser.Insert:
		return c.insert(s)
	case *sqlparser.Update:
		return &ast.UpdateStatement{
			Table:   c.tableExprs(s.TableExprs),
			Set:     c.updateExprs(s.Exprs),
			Where:   c.where(s.Where),
			OrderBy: c.orderBy(s.OrderBy),
			Limit:   c.limit(s.Limit),
		}
	case *sqlparser.Delete:
		return c.delete(s)
	case *sqlparser.Set:
		set := &ast.SetStatement{Scope: strings.ToUpper(s.Scope)}
		for _, e := range s.Exprs {
			set.Items = append(set.Items, &ast.Assignment{
				Target: variableOrIdent(e.Name.String()),
				Value:  c.expr(e.Expr),
			})
		}
		return set
	case *sqlparser.DDL:
		return c.ddl(s, masked)
	case *sqlparser.Show:
		if strings.EqualFold(s.Type, "create table") {
			return &ast.ShowCreateTableStatement{Table: showCreateTable(body, masked)}
		}
		c.fail("SHOW %s", strings.ToUpper(s.Type))
	default:
		c.fail("%s statement", statementName(stmt))
	}
	return nil
}

func statementName(stmt sqlparser.Statement) string {
	switch stmt.(type) {
	case *sqlparser.DBDDL:
		return "database DDL"
	case *sqlparser.Use:
		return "USE"
	case *sqlparser.Begin, *sqlparser.Commit, *sqlparser.Rollback:
		return "transaction"
	case *sqlparser.OtherRead:
		return "DESCRIBE/EXPLAIN"
	case *sqlparser.OtherAdmin:
		return "administrative"
	}
	return fmt.Sprintf("%T", stmt)
}

func (c *converter) insert(s *sqlparser.Insert) *ast.InsertStatement {
	ins := &ast.InsertStatement{
		Replace:     s.Action == sqlparser.ReplaceStr,
		Table:       ast.NewTableSource(tableName(s.Table), ""),
		OnDuplicate: c.updateExprs(sqlparser.UpdateExprs(s.OnDup)),
	}
	for _, col := range s.Columns {
		ins.Columns = append(ins.Columns, &ast.Identifier{Name: col.String()})
	}
	switch rows := s.Rows.(type) {
	case sqlparser.Values:
		for _, tuple := range rows {
			ins.Values = append(ins.Values, &ast.ValuesRow{Values: c.exprs(sqlparser.Exprs(tuple))})
		}
	case sqlparser.SelectStatement:
		ins.Query = c.query(rows)
	default:
		c.fail("insert rows %T", rows)
	}
	return ins
}

// delete always yields the MySQL variant; Targets is only set for the
// multi-table form.
func (c *converter) delete(s *sqlparser.Delete) *ast.MySQLDeleteStatement {
	del := &ast.MySQLDeleteStatement{
		DeleteStatement: ast.DeleteStatement{
			Table: c.tableExprs(s.TableExprs),
			Where: c.where(s.Where),
		},
		OrderBy: c.orderBy(s.OrderBy),
		Limit:   c.limit(s.Limit),
	}
	for _, t := range s.Targets {
		del.Targets = append(del.Targets, ast.NewTableSource(tableName(t), ""))
	}
	return del
}

func (c *converter) ddl(s *sqlparser.DDL, masked string) ast.Statement {
	switch s.Action {
	case sqlparser.CreateStr:
		if !createTablePrefix.MatchString(masked) {
			c.fail("CREATE statement")
			return nil
		}
		return c.createTable(s)
	case sqlparser.AlterStr:
		return &ast.AlterTableStatement{Table: tableName(s.Table)}
	case sqlparser.RenameStr:
		return &ast.AlterTableStatement{Table: tableName(s.Table), RenameTo: tableName(s.NewName)}
	case sqlparser.DropStr:
		return &ast.DropTableStatement{Tables: []ast.TableName{tableName(s.Table)}, IfExists: s.IfExists}
	}
	c.fail("%s TABLE", strings.ToUpper(s.Action))
	return nil
}

// createTable yields the MySQL variant when the definition uses column
// defaults or table options, which the base grammar does not have. The
// parser keeps the created name in NewName.
func (c *converter) createTable(s *sqlparser.DDL) ast.Statement {
	base := ast.CreateTableStatement{Table: tableName(s.NewName)}
	if s.TableSpec == nil {
		return &base
	}
	extended := s.TableSpec.Options != ""
	for _, col := range s.TableSpec.Columns {
		def := &ast.ColumnDefinition{
			Name:    col.Name.String(),
			Type:    col.Type.Type,
			NotNull: bool(col.Type.NotNull),
		}
		if col.Type.Default != nil {
			def.Default = c.expr(col.Type.Default)
			extended = true
		}
		base.Columns = append(base.Columns, def)
	}
	if extended {
		return &ast.MySQLCreateTableStatement{
			CreateTableStatement: base,
			Options:              strings.TrimSpace(s.TableSpec.Options),
		}
	}
	return &base
}

// ---------- Queries ----------

func (c *converter) query(stmt sqlparser.SelectStatement) ast.Query {
	switch q := stmt.(type) {
	case *sqlparser.Select:
		return c.selectBlock(q)
	case *sqlparser.Union:
		return c.union(q)
	case *sqlparser.ParenSelect:
		return c.query(q.Select)
	}
	c.fail("query %T", stmt)
	return &ast.SelectBlock{}
}

func (c *converter) selectBlock(s *sqlparser.Select) *ast.SelectBlock {
	b := &ast.SelectBlock{
		Hints:    c.selectHints(s.Comments),
		Distinct: s.Distinct != "",
		Items:    c.selectItems(s.SelectExprs),
		From:     c.from(s.From),
		Where:    c.where(s.Where),
		OrderBy:  c.orderBy(s.OrderBy),
		Limit:    c.limit(s.Limit),
	}
	if len(s.GroupBy) > 0 || s.Having != nil {
		b.GroupBy = &ast.GroupBy{
			Items:  c.exprs(sqlparser.Exprs(s.GroupBy)),
			Having: c.where(s.Having),
		}
	}
	return b
}

func (c *converter) union(u *sqlparser.Union) *ast.UnionQuery {
	return &ast.UnionQuery{
		Op:      strings.ToUpper(u.Type),
		Left:    c.query(u.Left),
		Right:   c.query(u.Right),
		OrderBy: c.orderBy(u.OrderBy),
		Limit:   c.limit(u.Limit),
	}
}

func (c *converter) selectHints(comments sqlparser.Comments) []*ast.CommentHint {
	var hints []*ast.CommentHint
	for _, raw := range comments {
		text := strings.TrimSpace(string(raw))
		if c.blockHints == nil {
			c.blockHints = make(map[string]int)
		}
		c.blockHints[text]++
		hints = append(hints, &ast.CommentHint{Text: text, Type: classifyHint(text)})
	}
	return hints
}

func (c *converter) selectItems(list sqlparser.SelectExprs) []*ast.SelectItem {
	items := make([]*ast.SelectItem, 0, len(list))
	for _, se := range list {
		switch e := se.(type) {
		case *sqlparser.StarExpr:
			items = append(items, &ast.SelectItem{Expr: &ast.AllColumnExpr{Owner: tableName(e.TableName).String()}})
		case *sqlparser.AliasedExpr:
			items = append(items, &ast.SelectItem{Expr: c.expr(e.Expr), Alias: e.As.String()})
		default:
			c.fail("select expression %T", se)
		}
	}
	return items
}

// ---------- Table sources ----------

// from drops the implicit DUAL the grammar inserts for FROM-less selects.
func (c *converter) from(list sqlparser.TableExprs) ast.TableSource {
	if len(list) == 1 {
		if t, ok := list[0].(*sqlparser.AliasedTableExpr); ok {
			if name, ok := t.Expr.(sqlparser.TableName); ok && name.Qualifier.IsEmpty() && strings.EqualFold(name.Name.String(), "dual") {
				return nil
			}
		}
	}
	return c.tableExprs(list)
}

// tableExprs folds a comma-separated FROM list into left-deep joins.
func (c *converter) tableExprs(list sqlparser.TableExprs) ast.TableSource {
	var out ast.TableSource
	for _, te := range list {
		src := c.tableExpr(te)
		if out == nil {
			out = src
			continue
		}
		out = &ast.JoinTableSource{Left: out, Join: ",", Right: src}
	}
	return out
}

func (c *converter) tableExpr(te sqlparser.TableExpr) ast.TableSource {
	switch t := te.(type) {
	case *sqlparser.AliasedTableExpr:
		switch e := t.Expr.(type) {
		case sqlparser.TableName:
			return ast.NewTableSource(tableName(e), t.As.String())
		case *sqlparser.Subquery:
			return &ast.SubqueryTableSource{Query: c.query(e.Select), Alias: t.As.String()}
		}
		c.fail("table expression %T", t.Expr)
	case *sqlparser.ParenTableExpr:
		return c.tableExprs(t.Exprs)
	case *sqlparser.JoinTableExpr:
		join := &ast.JoinTableSource{
			Left:  c.tableExpr(t.LeftExpr),
			Join:  strings.ToUpper(t.Join),
			Right: c.tableExpr(t.RightExpr),
			On:    c.expr(t.Condition.On),
		}
		for _, col := range t.Condition.Using {
			join.Using = append(join.Using, col.String())
		}
		return join
	default:
		c.fail("table expression %T", te)
	}
	return ast.NewTableSource(ast.TableName{}, "")
}

func tableName(t sqlparser.TableName) ast.TableName {
	return ast.TableName{Schema: t.Qualifier.String(), Name: t.Name.String()}
}

// ---------- Clauses ----------

func (c *converter) where(w *sqlparser.Where) ast.Expr {
	if w == nil {
		return nil
	}
	return c.expr(w.Expr)
}

func (c *converter) orderBy(list sqlparser.OrderBy) *ast.OrderBy {
	if len(list) == 0 {
		return nil
	}
	ob := &ast.OrderBy{}
	for _, o := range list {
		ob.Items = append(ob.Items, &ast.OrderItem{
			Expr: c.expr(o.Expr),
			Desc: o.Direction == sqlparser.DescScr,
		})
	}
	return ob
}

func (c *converter) limit(l *sqlparser.Limit) *ast.Limit {
	if l == nil {
		return nil
	}
	return &ast.Limit{Offset: c.expr(l.Offset), RowCount: c.expr(l.Rowcount)}
}

func (c *converter) updateExprs(list sqlparser.UpdateExprs) []*ast.Assignment {
	var out []*ast.Assignment
	for _, u := range list {
		out = append(out, &ast.Assignment{Target: c.colName(u.Name), Value: c.expr(u.Expr)})
	}
	return out
}
