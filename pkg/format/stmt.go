package format

import (
	"fmt"

	"github.com/leapstack-labs/sqlwall/pkg/ast"
)

func (p *Printer) formatStatement(stmt ast.Statement) {
	p.leadingComments(stmt.Comments())

	switch s := stmt.(type) {
	case *ast.SelectStatement:
		p.formatQuery(s.Query)
	case *ast.InsertStatement:
		p.formatInsert(s)
	case *ast.UpdateStatement:
		p.formatUpdate(s)
	case *ast.MySQLDeleteStatement:
		p.kw("DELETE")
		if len(s.Targets) > 0 {
			p.space()
			p.formatList(len(s.Targets), func(i int) { p.formatTableSource(s.Targets[i]) })
		}
		p.formatDeleteBody(&s.DeleteStatement)
		p.formatOrderLimit(s.OrderBy, s.Limit)
	case *ast.DeleteStatement:
		p.kw("DELETE")
		p.formatDeleteBody(s)
	case *ast.MySQLCreateTableStatement:
		p.formatCreateTable(&s.CreateTableStatement)
		if s.Options != "" {
			p.space()
			p.write(s.Options)
		}
	case *ast.CreateTableStatement:
		p.formatCreateTable(s)
	case *ast.AlterTableStatement:
		p.kw("ALTER", "TABLE")
		p.space()
		p.tableName(s.Table)
		if len(s.AddColumns) > 0 {
			p.space()
			p.formatList(len(s.AddColumns), func(i int) {
				p.kw("ADD", "COLUMN")
				p.space()
				p.formatColumn(s.AddColumns[i])
			})
		}
		if !s.RenameTo.IsEmpty() {
			p.space()
			p.kw("RENAME", "TO")
			p.space()
			p.tableName(s.RenameTo)
		}
	case *ast.DropTableStatement:
		p.kw("DROP", "TABLE")
		if s.IfExists {
			p.space()
			p.kw("IF", "EXISTS")
		}
		p.space()
		p.formatList(len(s.Tables), func(i int) { p.tableName(s.Tables[i]) })
	case *ast.SetStatement:
		p.kw("SET")
		if s.Scope != "" {
			p.space()
			p.kw(s.Scope)
		}
		p.space()
		p.formatList(len(s.Items), func(i int) { p.formatClause(s.Items[i]) })
	case *ast.CallStatement:
		p.kw("CALL")
		p.space()
		p.tableName(s.Procedure)
		p.write("(")
		p.exprList(s.Args)
		p.write(")")
	case *ast.ShowCreateTableStatement:
		p.kw("SHOW", "CREATE", "TABLE")
		p.space()
		p.tableName(s.Table)
	case *ast.CreateTriggerStatement:
		p.kw("CREATE", "TRIGGER")
		p.space()
		p.tableName(s.Name)
		p.space()
		p.kw(s.Timing, s.Event, "ON")
		p.space()
		p.tableName(s.Table)
		p.space()
		p.kw("FOR", "EACH", "ROW")
		p.space()
		p.write(s.Body)
	default:
		p.write(fmt.Sprintf("/* %s */", stmt.Kind()))
	}

	p.trailingComments(stmt.Comments())
}

func (p *Printer) formatInsert(s *ast.InsertStatement) {
	if s.Replace {
		p.kw("REPLACE", "INTO")
	} else {
		p.kw("INSERT", "INTO")
	}
	p.space()
	if s.Table != nil {
		p.formatTableSource(s.Table)
	}
	if len(s.Columns) > 0 {
		p.write(" (")
		p.formatList(len(s.Columns), func(i int) { p.formatExpr(s.Columns[i]) })
		p.write(")")
	}
	switch {
	case len(s.Values) > 0:
		p.clause("VALUES")
		p.formatList(len(s.Values), func(i int) { p.formatClause(s.Values[i]) })
	case s.Query != nil:
		p.space()
		p.formatQuery(s.Query)
	}
	if len(s.OnDuplicate) > 0 {
		p.clause("ON", "DUPLICATE", "KEY", "UPDATE")
		p.formatList(len(s.OnDuplicate), func(i int) { p.formatClause(s.OnDuplicate[i]) })
	}
}

func (p *Printer) formatUpdate(s *ast.UpdateStatement) {
	p.kw("UPDATE")
	p.space()
	if s.Table != nil {
		p.formatTableSource(s.Table)
	}
	p.clause("SET")
	p.formatList(len(s.Set), func(i int) { p.formatClause(s.Set[i]) })
	if s.Where != nil {
		p.clause("WHERE")
		p.formatExpr(s.Where)
	}
	p.formatOrderLimit(s.OrderBy, s.Limit)
}

func (p *Printer) formatDeleteBody(s *ast.DeleteStatement) {
	if s.Table != nil {
		p.clause("FROM")
		p.formatTableSource(s.Table)
	}
	if s.Where != nil {
		p.clause("WHERE")
		p.formatExpr(s.Where)
	}
}

func (p *Printer) formatCreateTable(s *ast.CreateTableStatement) {
	p.kw("CREATE", "TABLE")
	if s.IfNotExists {
		p.space()
		p.kw("IF", "NOT", "EXISTS")
	}
	p.space()
	p.tableName(s.Table)
	p.write(" (")
	p.formatList(len(s.Columns), func(i int) { p.formatColumn(s.Columns[i]) })
	p.write(")")
}

func (p *Printer) formatColumn(c *ast.ColumnDefinition) {
	p.write(c.Name)
	if c.Type != "" {
		p.space()
		p.kw(c.Type)
	}
	if c.NotNull {
		p.space()
		p.kw("NOT", "NULL")
	}
	if c.Default != nil {
		p.clause("DEFAULT")
		p.formatExpr(c.Default)
	}
}

func (p *Printer) formatOrderLimit(o *ast.OrderBy, l *ast.Limit) {
	if o != nil && len(o.Items) > 0 {
		p.space()
		p.formatClause(o)
	}
	if l != nil {
		p.space()
		p.formatClause(l)
	}
}
