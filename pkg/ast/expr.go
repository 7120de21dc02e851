package ast

import "strings"

// ---------- Query Types ----------

// SelectBlock is a single SELECT query block.
type SelectBlock struct {
	NodeInfo
	Hints    []*CommentHint
	Distinct bool
	Items    []*SelectItem
	Into     *OutFileExpr
	From     TableSource
	Where    Expr
	GroupBy  *GroupBy
	OrderBy  *OrderBy
	Limit    *Limit
}

// UnionQuery is a set operation between two queries.
type UnionQuery struct {
	NodeInfo
	Op      string // UNION, UNION ALL, UNION DISTINCT
	Left    Query
	Right   Query
	OrderBy *OrderBy
	Limit   *Limit
}

func (*SelectBlock) exprNode()  {}
func (*SelectBlock) queryNode() {}
func (*UnionQuery) exprNode()   {}
func (*UnionQuery) queryNode()  {}

// Kind implements Node.
func (*SelectBlock) Kind() Kind { return KindSelectBlock }

// Kind implements Node.
func (*UnionQuery) Kind() Kind { return KindUnionQuery }

// ---------- Expression Types ----------

// BinaryOperator is the operator of a BinaryOpExpr.
type BinaryOperator string

// Binary operators.
const (
	OpEqual         BinaryOperator = "="
	OpNotEqual      BinaryOperator = "!="
	OpLessThan      BinaryOperator = "<"
	OpLessEqual     BinaryOperator = "<="
	OpGreaterThan   BinaryOperator = ">"
	OpGreaterEqual  BinaryOperator = ">="
	OpNullSafeEqual BinaryOperator = "<=>"
	OpAnd           BinaryOperator = "AND"
	OpOr            BinaryOperator = "OR"
	OpXor           BinaryOperator = "XOR"
	OpLike          BinaryOperator = "LIKE"
	OpNotLike       BinaryOperator = "NOT LIKE"
	OpRegexp        BinaryOperator = "REGEXP"
	OpNotRegexp     BinaryOperator = "NOT REGEXP"
	OpIn            BinaryOperator = "IN"
	OpNotIn         BinaryOperator = "NOT IN"
	OpAdd           BinaryOperator = "+"
	OpSub           BinaryOperator = "-"
	OpMul           BinaryOperator = "*"
	OpDiv           BinaryOperator = "/"
	OpIntDiv        BinaryOperator = "DIV"
	OpMod           BinaryOperator = "%"
	OpBitAnd        BinaryOperator = "&"
	OpBitOr         BinaryOperator = "|"
	OpBitXor        BinaryOperator = "^"
	OpShiftLeft     BinaryOperator = "<<"
	OpShiftRight    BinaryOperator = ">>"
	OpJSONExtract   BinaryOperator = "->"
	OpJSONUnquote   BinaryOperator = "->>"
)

// IsComparison reports whether the operator yields a boolean from two values.
func (op BinaryOperator) IsComparison() bool {
	switch op {
	case OpEqual, OpNotEqual, OpLessThan, OpLessEqual, OpGreaterThan,
		OpGreaterEqual, OpNullSafeEqual, OpLike, OpNotLike, OpRegexp, OpNotRegexp:
		return true
	}
	return false
}

// IsLogical reports whether the operator combines boolean conditions.
func (op BinaryOperator) IsLogical() bool {
	return op == OpAnd || op == OpOr || op == OpXor
}

// IsBitwise reports whether the operator works on bits.
func (op BinaryOperator) IsBitwise() bool {
	switch op {
	case OpBitAnd, OpBitOr, OpBitXor, OpShiftLeft, OpShiftRight:
		return true
	}
	return false
}

// BinaryOpExpr is left <op> right.
type BinaryOpExpr struct {
	NodeInfo
	Op    BinaryOperator
	Left  Expr
	Right Expr
}

// InListExpr is expr [NOT] IN (v1, v2, ...).
type InListExpr struct {
	NodeInfo
	Expr Expr
	Not  bool
	List []Expr
}

// PropertyExpr is owner.name, used for qualified columns and for
// @@session.var / @@global.var.
type PropertyExpr struct {
	NodeInfo
	Owner Expr
	Name  string
}

// VariableRefExpr is a variable or placeholder token: @@version, @user_var or ?.
type VariableRefExpr struct {
	NodeInfo
	Name string
}

// MethodInvokeExpr is a function call.
type MethodInvokeExpr struct {
	NodeInfo
	Owner    Expr
	Name     string
	Distinct bool
	Args     []Expr
}

// Identifier is an unqualified name.
type Identifier struct {
	NodeInfo
	Name   string
	Quoted bool
}

// NumberLiteral keeps the source text of a numeric literal.
type NumberLiteral struct {
	NodeInfo
	Text string
}

// StringLiteral is an unescaped string value.
type StringLiteral struct {
	NodeInfo
	Value string
}

// NullLiteral is NULL.
type NullLiteral struct {
	NodeInfo
}

// BoolLiteral is TRUE or FALSE.
type BoolLiteral struct {
	NodeInfo
	Value bool
}

// AllColumnExpr is * or owner.*.
type AllColumnExpr struct {
	NodeInfo
	Owner string
}

// ParenExpr is a parenthesised expression.
type ParenExpr struct {
	NodeInfo
	Expr Expr
}

// NotExpr is NOT expr.
type NotExpr struct {
	NodeInfo
	Expr Expr
}

// UnaryExpr is a prefix operator other than NOT: -, +, ~, BINARY.
type UnaryExpr struct {
	NodeInfo
	Op   string
	Expr Expr
}

// BetweenExpr is expr [NOT] BETWEEN low AND high.
type BetweenExpr struct {
	NodeInfo
	Expr Expr
	Not  bool
	Low  Expr
	High Expr
}

// IsExpr is expr IS [NOT] NULL|TRUE|FALSE.
type IsExpr struct {
	NodeInfo
	Expr  Expr
	Not   bool
	Value string
}

// CaseExpr is CASE [operand] WHEN ... THEN ... [ELSE ...] END.
type CaseExpr struct {
	NodeInfo
	Operand Expr
	Whens   []*CaseWhen
	Else    Expr
}

// SubqueryExpr is a parenthesised query used as a value or IN operand.
type SubqueryExpr struct {
	NodeInfo
	Query Query
}

// ExistsExpr is EXISTS (subquery).
type ExistsExpr struct {
	NodeInfo
	Subquery *SubqueryExpr
}

// OutFileExpr is the INTO OUTFILE target of a query block.
type OutFileExpr struct {
	NodeInfo
	File Expr
}

func (*BinaryOpExpr) exprNode()     {}
func (*InListExpr) exprNode()       {}
func (*PropertyExpr) exprNode()     {}
func (*VariableRefExpr) exprNode()  {}
func (*MethodInvokeExpr) exprNode() {}
func (*Identifier) exprNode()       {}
func (*NumberLiteral) exprNode()    {}
func (*StringLiteral) exprNode()    {}
func (*NullLiteral) exprNode()      {}
func (*BoolLiteral) exprNode()      {}
func (*AllColumnExpr) exprNode()    {}
func (*ParenExpr) exprNode()        {}
func (*NotExpr) exprNode()          {}
func (*UnaryExpr) exprNode()        {}
func (*BetweenExpr) exprNode()      {}
func (*IsExpr) exprNode()           {}
func (*CaseExpr) exprNode()         {}
func (*SubqueryExpr) exprNode()     {}
func (*ExistsExpr) exprNode()       {}
func (*OutFileExpr) exprNode()      {}

// Kind implements Node.
func (*BinaryOpExpr) Kind() Kind { return KindBinaryOpExpr }

// Kind implements Node.
func (*InListExpr) Kind() Kind { return KindInListExpr }

// Kind implements Node.
func (*PropertyExpr) Kind() Kind { return KindPropertyExpr }

// Kind implements Node.
func (*VariableRefExpr) Kind() Kind { return KindVariableRefExpr }

// Kind implements Node.
func (*MethodInvokeExpr) Kind() Kind { return KindMethodInvokeExpr }

// Kind implements Node.
func (*Identifier) Kind() Kind { return KindIdentifier }

// Kind implements Node.
func (*NumberLiteral) Kind() Kind { return KindNumberLiteral }

// Kind implements Node.
func (*StringLiteral) Kind() Kind { return KindStringLiteral }

// Kind implements Node.
func (*NullLiteral) Kind() Kind { return KindNullLiteral }

// Kind implements Node.
func (*BoolLiteral) Kind() Kind { return KindBoolLiteral }

// Kind implements Node.
func (*AllColumnExpr) Kind() Kind { return KindAllColumnExpr }

// Kind implements Node.
func (*ParenExpr) Kind() Kind { return KindParenExpr }

// Kind implements Node.
func (*NotExpr) Kind() Kind { return KindNotExpr }

// Kind implements Node.
func (*UnaryExpr) Kind() Kind { return KindUnaryExpr }

// Kind implements Node.
func (*BetweenExpr) Kind() Kind { return KindBetweenExpr }

// Kind implements Node.
func (*IsExpr) Kind() Kind { return KindIsExpr }

// Kind implements Node.
func (*CaseExpr) Kind() Kind { return KindCaseExpr }

// Kind implements Node.
func (*SubqueryExpr) Kind() Kind { return KindSubqueryExpr }

// Kind implements Node.
func (*ExistsExpr) Kind() Kind { return KindExistsExpr }

// Kind implements Node.
func (*OutFileExpr) Kind() Kind { return KindOutFileExpr }

// IsSystemVariableOwner reports whether the property owner is @@session or
// @@global, the scopes through which system variables are addressed.
func (p *PropertyExpr) IsSystemVariableOwner() bool {
	var name string
	switch o := p.Owner.(type) {
	case *VariableRefExpr:
		name = o.Name
	case *Identifier:
		name = o.Name
	default:
		return false
	}
	return strings.EqualFold(name, "@@session") || strings.EqualFold(name, "@@global")
}

// IsSystemVariable reports whether the reference names a system variable.
func (v *VariableRefExpr) IsSystemVariable() bool {
	return strings.HasPrefix(v.Name, "@@")
}

// IsPlaceholder reports whether the reference is a positional parameter.
func (v *VariableRefExpr) IsPlaceholder() bool {
	return v.Name == "?"
}
