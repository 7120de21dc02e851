package format

import (
	"fmt"

	"github.com/leapstack-labs/sqlwall/pkg/ast"
)

func (p *Printer) formatQuery(q ast.Query) {
	switch q := q.(type) {
	case *ast.SelectBlock:
		p.formatSelectBlock(q)
	case *ast.UnionQuery:
		p.formatUnionBranch(q.Left, false)
		p.space()
		p.kw(q.Op)
		p.space()
		p.formatUnionBranch(q.Right, true)
		p.formatOrderLimit(q.OrderBy, q.Limit)
	}
}

// formatUnionBranch parenthesises branches whose own ORDER BY or LIMIT would
// otherwise bind to the whole union, and unions nested on the right.
func (p *Printer) formatUnionBranch(q ast.Query, right bool) {
	wrap := right
	if block, ok := q.(*ast.SelectBlock); ok {
		wrap = block.Limit != nil || block.OrderBy != nil
	}
	if wrap {
		p.write("(")
		p.formatQuery(q)
		p.write(")")
		return
	}
	p.formatQuery(q)
}

func (p *Printer) formatSelectBlock(b *ast.SelectBlock) {
	p.kw("SELECT")
	p.space()
	p.leadingComments(b.Hints)
	if b.Distinct {
		p.kw("DISTINCT")
		p.space()
	}
	p.formatList(len(b.Items), func(i int) { p.formatClause(b.Items[i]) })
	if b.From != nil {
		p.clause("FROM")
		p.formatTableSource(b.From)
	}
	if b.Where != nil {
		p.clause("WHERE")
		p.formatExpr(b.Where)
	}
	if b.GroupBy != nil {
		p.space()
		p.formatClause(b.GroupBy)
	}
	p.formatOrderLimit(b.OrderBy, b.Limit)
	if b.Into != nil {
		p.space()
		p.formatExpr(b.Into)
	}
}

// formatExpr writes nothing for a missing expression.
func (p *Printer) formatExpr(e ast.Expr) {
	if e == nil {
		return
	}
	switch e := e.(type) {
	case ast.Query:
		p.formatQuery(e)
	case *ast.BinaryOpExpr:
		p.formatExpr(e.Left)
		p.space()
		p.kw(string(e.Op))
		p.space()
		p.formatExpr(e.Right)
	case *ast.InListExpr:
		p.formatExpr(e.Expr)
		p.space()
		if e.Not {
			p.kw("NOT")
			p.space()
		}
		p.kw("IN")
		p.write(" (")
		p.exprList(e.List)
		p.write(")")
	case *ast.PropertyExpr:
		p.formatExpr(e.Owner)
		p.write(".")
		p.write(e.Name)
	case *ast.VariableRefExpr:
		p.write(e.Name)
	case *ast.MethodInvokeExpr:
		if e.Owner != nil {
			p.formatExpr(e.Owner)
			p.write(".")
		}
		p.write(e.Name)
		p.write("(")
		if e.Distinct {
			p.kw("DISTINCT")
			p.space()
		}
		p.exprList(e.Args)
		p.write(")")
	case *ast.Identifier:
		p.ident(e.Name, e.Quoted)
	case *ast.NumberLiteral:
		p.write(e.Text)
	case *ast.StringLiteral:
		p.write(quoteString(e.Value))
	case *ast.NullLiteral:
		p.kw("NULL")
	case *ast.BoolLiteral:
		if e.Value {
			p.kw("TRUE")
		} else {
			p.kw("FALSE")
		}
	case *ast.AllColumnExpr:
		if e.Owner != "" {
			p.write(e.Owner)
			p.write(".")
		}
		p.write("*")
	case *ast.ParenExpr:
		p.write("(")
		p.formatExpr(e.Expr)
		p.write(")")
	case *ast.NotExpr:
		p.kw("NOT")
		p.space()
		p.formatExpr(e.Expr)
	case *ast.UnaryExpr:
		p.kw(e.Op)
		if len(e.Op) > 1 {
			p.space()
		}
		p.formatExpr(e.Expr)
	case *ast.BetweenExpr:
		p.formatExpr(e.Expr)
		p.space()
		if e.Not {
			p.kw("NOT")
			p.space()
		}
		p.kw("BETWEEN")
		p.space()
		p.formatExpr(e.Low)
		p.clause("AND")
		p.formatExpr(e.High)
	case *ast.IsExpr:
		p.formatExpr(e.Expr)
		p.clause("IS")
		if e.Not {
			p.kw("NOT")
			p.space()
		}
		p.kw(e.Value)
	case *ast.CaseExpr:
		p.kw("CASE")
		if e.Operand != nil {
			p.space()
			p.formatExpr(e.Operand)
		}
		for _, w := range e.Whens {
			p.space()
			p.formatClause(w)
		}
		if e.Else != nil {
			p.clause("ELSE")
			p.formatExpr(e.Else)
		}
		p.space()
		p.kw("END")
	case *ast.SubqueryExpr:
		p.write("(")
		p.formatQuery(e.Query)
		p.write(")")
	case *ast.ExistsExpr:
		p.kw("EXISTS")
		p.space()
		if e.Subquery != nil {
			p.formatExpr(e.Subquery)
		}
	case *ast.OutFileExpr:
		p.kw("INTO", "OUTFILE")
		p.space()
		p.formatExpr(e.File)
	default:
		p.write(fmt.Sprintf("/* %s */", e.Kind()))
	}
}

func (p *Printer) formatTableSource(ts ast.TableSource) {
	switch t := ts.(type) {
	case *ast.ExprTableSource:
		p.formatExpr(t.Expr)
		if t.Alias != "" {
			p.clause("AS")
			p.write(t.Alias)
		}
	case *ast.JoinTableSource:
		p.formatTableSource(t.Left)
		if t.Join == "," {
			p.write(", ")
		} else {
			p.space()
			p.kw(t.Join)
			p.space()
		}
		p.formatTableSource(t.Right)
		if t.On != nil {
			p.clause("ON")
			p.formatExpr(t.On)
		}
		if len(t.Using) > 0 {
			p.clause("USING")
			p.write("(")
			p.formatList(len(t.Using), func(i int) { p.write(t.Using[i]) })
			p.write(")")
		}
	case *ast.SubqueryTableSource:
		p.write("(")
		p.formatQuery(t.Query)
		p.write(")")
		if t.Alias != "" {
			p.clause("AS")
			p.write(t.Alias)
		}
	}
}

func (p *Printer) formatClause(n ast.Node) {
	if n == nil {
		return
	}
	switch c := n.(type) {
	case *ast.SelectItem:
		p.formatExpr(c.Expr)
		if c.Alias != "" {
			p.clause("AS")
			p.write(c.Alias)
		}
	case *ast.Limit:
		p.kw("LIMIT")
		p.space()
		if c.Offset != nil {
			p.formatExpr(c.Offset)
			p.write(", ")
		}
		p.formatExpr(c.RowCount)
	case *ast.GroupBy:
		if len(c.Items) > 0 {
			p.kw("GROUP", "BY")
			p.space()
			p.exprList(c.Items)
			if c.Having != nil {
				p.space()
			}
		}
		if c.Having != nil {
			p.kw("HAVING")
			p.space()
			p.formatExpr(c.Having)
		}
	case *ast.OrderBy:
		p.kw("ORDER", "BY")
		p.space()
		p.formatList(len(c.Items), func(i int) { p.formatClause(c.Items[i]) })
	case *ast.OrderItem:
		p.formatExpr(c.Expr)
		if c.Desc {
			p.space()
			p.kw("DESC")
		}
	case *ast.Assignment:
		p.formatExpr(c.Target)
		p.write(" = ")
		p.formatExpr(c.Value)
	case *ast.CommentHint:
		p.write(c.Text)
	case *ast.ColumnDefinition:
		p.formatColumn(c)
	case *ast.CaseWhen:
		p.kw("WHEN")
		p.space()
		p.formatExpr(c.Cond)
		p.clause("THEN")
		p.formatExpr(c.Result)
	case *ast.ValuesRow:
		p.write("(")
		p.exprList(c.Values)
		p.write(")")
	default:
		p.write(fmt.Sprintf("/* %s */", n.Kind()))
	}
}
