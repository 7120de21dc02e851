package ast

import "fmt"

type childList []Node

func (c *childList) node(n Node) {
	if n != nil {
		*c = append(*c, n)
	}
}

func (c *childList) exprs(list []Expr) {
	for _, e := range list {
		c.node(e)
	}
}

func (c *childList) hints(list []*CommentHint) {
	for _, h := range list {
		*c = append(*c, h)
	}
}

func (c *childList) columns(list []*ColumnDefinition) {
	for _, col := range list {
		*c = append(*c, col)
	}
}

func (c *childList) assignments(list []*Assignment) {
	for _, a := range list {
		*c = append(*c, a)
	}
}

func (c *childList) orderLimit(o *OrderBy, l *Limit) {
	if o != nil {
		*c = append(*c, o)
	}
	if l != nil {
		*c = append(*c, l)
	}
}

// Children returns the direct children of n in source order. It panics on a
// node type it does not know, which means the grammar grew without the walker.
func Children(n Node) []Node {
	var c childList
	switch n := n.(type) {
	// Statements
	case *SelectStatement:
		c.hints(n.Hints)
		c.node(n.Query)
	case *InsertStatement:
		c.hints(n.Hints)
		if n.Table != nil {
			c = append(c, n.Table)
		}
		for _, col := range n.Columns {
			c = append(c, col)
		}
		for _, row := range n.Values {
			c = append(c, row)
		}
		c.node(n.Query)
		c.assignments(n.OnDuplicate)
	case *UpdateStatement:
		c.hints(n.Hints)
		c.node(n.Table)
		c.assignments(n.Set)
		c.node(n.Where)
		c.orderLimit(n.OrderBy, n.Limit)
	case *DeleteStatement:
		c.hints(n.Hints)
		c.node(n.Table)
		c.node(n.Where)
	case *MySQLDeleteStatement:
		c.hints(n.Hints)
		for _, t := range n.Targets {
			c = append(c, t)
		}
		c.node(n.Table)
		c.node(n.Where)
		c.orderLimit(n.OrderBy, n.Limit)
	case *CreateTableStatement:
		c.hints(n.Hints)
		c.columns(n.Columns)
	case *MySQLCreateTableStatement:
		c.hints(n.Hints)
		c.columns(n.Columns)
	case *AlterTableStatement:
		c.hints(n.Hints)
		c.columns(n.AddColumns)
	case *DropTableStatement:
		c.hints(n.Hints)
	case *SetStatement:
		c.hints(n.Hints)
		c.assignments(n.Items)
	case *CallStatement:
		c.hints(n.Hints)
		c.exprs(n.Args)
	case *ShowCreateTableStatement:
		c.hints(n.Hints)
	case *CreateTriggerStatement:
		c.hints(n.Hints)

	// Queries
	case *SelectBlock:
		c.hints(n.Hints)
		for _, item := range n.Items {
			c = append(c, item)
		}
		if n.Into != nil {
			c = append(c, n.Into)
		}
		c.node(n.From)
		c.node(n.Where)
		if n.GroupBy != nil {
			c = append(c, n.GroupBy)
		}
		c.orderLimit(n.OrderBy, n.Limit)
	case *UnionQuery:
		c.node(n.Left)
		c.node(n.Right)
		c.orderLimit(n.OrderBy, n.Limit)

	// Expressions
	case *BinaryOpExpr:
		c.node(n.Left)
		c.node(n.Right)
	case *InListExpr:
		c.node(n.Expr)
		c.exprs(n.List)
	case *PropertyExpr:
		c.node(n.Owner)
	case *MethodInvokeExpr:
		c.node(n.Owner)
		c.exprs(n.Args)
	case *ParenExpr:
		c.node(n.Expr)
	case *NotExpr:
		c.node(n.Expr)
	case *UnaryExpr:
		c.node(n.Expr)
	case *BetweenExpr:
		c.node(n.Expr)
		c.node(n.Low)
		c.node(n.High)
	case *IsExpr:
		c.node(n.Expr)
	case *CaseExpr:
		c.node(n.Operand)
		for _, w := range n.Whens {
			c = append(c, w)
		}
		c.node(n.Else)
	case *SubqueryExpr:
		c.node(n.Query)
	case *ExistsExpr:
		if n.Subquery != nil {
			c = append(c, n.Subquery)
		}
	case *OutFileExpr:
		c.node(n.File)
	case *VariableRefExpr, *Identifier, *NumberLiteral, *StringLiteral,
		*NullLiteral, *BoolLiteral, *AllColumnExpr:
		// leaves

	// Clauses
	case *SelectItem:
		c.node(n.Expr)
	case *Limit:
		c.node(n.Offset)
		c.node(n.RowCount)
	case *GroupBy:
		c.exprs(n.Items)
		c.node(n.Having)
	case *OrderBy:
		for _, item := range n.Items {
			c = append(c, item)
		}
	case *OrderItem:
		c.node(n.Expr)
	case *Assignment:
		c.node(n.Target)
		c.node(n.Value)
	case *CommentHint:
	case *ColumnDefinition:
		c.node(n.Default)
	case *CaseWhen:
		c.node(n.Cond)
		c.node(n.Result)
	case *ValuesRow:
		c.exprs(n.Values)

	// Table sources
	case *ExprTableSource:
		c.node(n.Expr)
	case *JoinTableSource:
		c.node(n.Left)
		c.node(n.Right)
		c.node(n.On)
	case *SubqueryTableSource:
		c.node(n.Query)

	default:
		panic(fmt.Sprintf("ast: no children rule for %T", n))
	}
	return c
}

// Link sets the parent reference of every node below root. The root itself
// keeps whatever parent it already has.
func Link(root Node) {
	for _, child := range Children(root) {
		child.setParent(root)
		Link(child)
	}
}

// Walk calls fn for n and then, if fn returns true, for each descendant in
// pre-order.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range Children(n) {
		Walk(child, fn)
	}
}

// Root returns the outermost ancestor of n.
func Root(n Node) Node {
	for n.Parent() != nil {
		n = n.Parent()
	}
	return n
}

// Nearest returns the closest proper ancestor of n with type T.
func Nearest[T Node](n Node) (T, bool) {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if t, ok := p.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// Same reports whether a and b are the same node. Interfaces holding different
// pointer types never compare equal.
func Same(a, b Node) bool {
	return a != nil && b != nil && a == b
}
