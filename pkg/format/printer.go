// Package format renders statement trees back to single-line MySQL text.
//
// The output is used as violation evidence and for returning rewritten
// statements, so it must be deterministic: keywords are upper case, lists are
// separated by ", " and no line breaks are emitted.
package format

import (
	"bytes"
	"strings"

	"github.com/leapstack-labs/sqlwall/pkg/ast"
)

// Printer accumulates rendered SQL.
type Printer struct {
	output *bytes.Buffer
}

func newPrinter() *Printer {
	return &Printer{output: &bytes.Buffer{}}
}

// Render returns the SQL text of any node.
func Render(n ast.Node) string {
	if n == nil {
		return ""
	}
	p := newPrinter()
	p.node(n)
	return p.String()
}

// String returns the rendered output.
func (p *Printer) String() string {
	return strings.TrimSpace(p.output.String())
}

func (p *Printer) write(s string) {
	p.output.WriteString(s)
}

func (p *Printer) space() {
	p.output.WriteByte(' ')
}

// kw writes keywords separated by single spaces.
func (p *Printer) kw(words ...string) {
	for i, w := range words {
		if i > 0 {
			p.space()
		}
		p.write(strings.ToUpper(w))
	}
}

// clause writes " KEYWORD " before a clause body.
func (p *Printer) clause(words ...string) {
	p.space()
	p.kw(words...)
	p.space()
}

// formatList prints count items separated by ", ".
func (p *Printer) formatList(count int, format func(i int)) {
	for i := 0; i < count; i++ {
		if i > 0 {
			p.write(", ")
		}
		format(i)
	}
}

func (p *Printer) exprList(list []ast.Expr) {
	p.formatList(len(list), func(i int) { p.node(list[i]) })
}

func (p *Printer) leadingComments(hints []*ast.CommentHint) {
	for _, h := range hints {
		if !h.Trailing {
			p.write(h.Text)
			p.space()
		}
	}
}

func (p *Printer) trailingComments(hints []*ast.CommentHint) {
	for _, h := range hints {
		if h.Trailing {
			p.space()
			p.write(h.Text)
		}
	}
}

func (p *Printer) ident(name string, quoted bool) {
	if quoted {
		p.write("`" + strings.ReplaceAll(name, "`", "``") + "`")
		return
	}
	p.write(name)
}

func (p *Printer) tableName(t ast.TableName) {
	p.write(t.String())
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// node dispatches on the concrete node type.
func (p *Printer) node(n ast.Node) {
	switch n := n.(type) {
	case ast.Statement:
		p.formatStatement(n)
	case ast.Query:
		p.formatQuery(n)
	case ast.Expr:
		p.formatExpr(n)
	case ast.TableSource:
		p.formatTableSource(n)
	default:
		p.formatClause(n)
	}
}
