package ast

// ---------- Clause Types ----------

// SelectItem is one entry of a select list.
type SelectItem struct {
	NodeInfo
	Expr  Expr
	Alias string
}

// Limit is LIMIT [offset,] row_count.
type Limit struct {
	NodeInfo
	Offset   Expr
	RowCount Expr
}

// GroupBy holds the GROUP BY items and the HAVING condition. A HAVING without
// GROUP BY is represented with no items.
type GroupBy struct {
	NodeInfo
	Items  []Expr
	Having Expr
}

// OrderBy is an ORDER BY clause.
type OrderBy struct {
	NodeInfo
	Items []*OrderItem
}

// OrderItem is one ORDER BY key.
type OrderItem struct {
	NodeInfo
	Expr Expr
	Desc bool
}

// Assignment is target = value in SET lists and ON DUPLICATE KEY UPDATE.
type Assignment struct {
	NodeInfo
	Target Expr
	Value  Expr
}

// HintKind classifies a comment attached to a statement.
type HintKind int

// Comment hint kinds.
const (
	// HintComment is an ordinary comment.
	HintComment HintKind = iota
	// HintExecutable is a MySQL conditional comment (/*! ... */) whose body the
	// server executes.
	HintExecutable
	// HintOptimizer is an optimizer hint (/*+ ... */).
	HintOptimizer
	// HintVendor is a middleware hint such as /*TDDL: ... */ that is opaque to
	// the database and to analysis.
	HintVendor
)

// CommentHint is a comment found in the statement text. Trailing marks a
// comment that ends the statement.
type CommentHint struct {
	NodeInfo
	Text     string
	Type     HintKind
	Trailing bool
}

// ColumnDefinition is a column of CREATE/ALTER TABLE.
type ColumnDefinition struct {
	NodeInfo
	Name    string
	Type    string
	NotNull bool
	Default Expr
}

// CaseWhen is a WHEN ... THEN ... arm.
type CaseWhen struct {
	NodeInfo
	Cond   Expr
	Result Expr
}

// ValuesRow is one parenthesised row of INSERT ... VALUES.
type ValuesRow struct {
	NodeInfo
	Values []Expr
}

// Kind implements Node.
func (*SelectItem) Kind() Kind { return KindSelectItem }

// Kind implements Node.
func (*Limit) Kind() Kind { return KindLimit }

// Kind implements Node.
func (*GroupBy) Kind() Kind { return KindGroupBy }

// Kind implements Node.
func (*OrderBy) Kind() Kind { return KindOrderBy }

// Kind implements Node.
func (*OrderItem) Kind() Kind { return KindOrderItem }

// Kind implements Node.
func (*Assignment) Kind() Kind { return KindAssignment }

// Kind implements Node.
func (*CommentHint) Kind() Kind { return KindCommentHint }

// Kind implements Node.
func (*ColumnDefinition) Kind() Kind { return KindColumnDefinition }

// Kind implements Node.
func (*CaseWhen) Kind() Kind { return KindCaseWhen }

// Kind implements Node.
func (*ValuesRow) Kind() Kind { return KindValuesRow }
