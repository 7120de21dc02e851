// Package ast defines the statement tree analysed by the firewall.
//
// Every node carries a back-reference to its syntactic parent so that checks can
// ask positional questions ("is this reference a SELECT item?") without walking
// down from the root again. Parent links never imply ownership; call Link on a
// freshly built tree to populate them.
package ast

import "fmt"

// Kind identifies the concrete type of a node.
type Kind int

// Statement kinds.
const (
	KindSelectStatement Kind = iota
	KindInsertStatement
	KindUpdateStatement
	KindDeleteStatement
	KindMySQLDeleteStatement
	KindCreateTableStatement
	KindMySQLCreateTableStatement
	KindAlterTableStatement
	KindDropTableStatement
	KindSetStatement
	KindCallStatement
	KindShowCreateTableStatement
	KindCreateTriggerStatement

	// Query kinds.
	KindSelectBlock
	KindUnionQuery

	// Expression kinds.
	KindBinaryOpExpr
	KindInListExpr
	KindPropertyExpr
	KindVariableRefExpr
	KindMethodInvokeExpr
	KindIdentifier
	KindNumberLiteral
	KindStringLiteral
	KindNullLiteral
	KindBoolLiteral
	KindAllColumnExpr
	KindParenExpr
	KindNotExpr
	KindUnaryExpr
	KindBetweenExpr
	KindIsExpr
	KindCaseExpr
	KindSubqueryExpr
	KindExistsExpr
	KindOutFileExpr

	// Clause kinds.
	KindSelectItem
	KindLimit
	KindGroupBy
	KindOrderBy
	KindOrderItem
	KindAssignment
	KindCommentHint
	KindColumnDefinition
	KindCaseWhen
	KindValuesRow

	// Table source kinds.
	KindExprTableSource
	KindJoinTableSource
	KindSubqueryTableSource

	kindCount
)

var kindNames = [...]string{
	KindSelectStatement:           "SelectStatement",
	KindInsertStatement:           "InsertStatement",
	KindUpdateStatement:           "UpdateStatement",
	KindDeleteStatement:           "DeleteStatement",
	KindMySQLDeleteStatement:      "MySQLDeleteStatement",
	KindCreateTableStatement:      "CreateTableStatement",
	KindMySQLCreateTableStatement: "MySQLCreateTableStatement",
	KindAlterTableStatement:       "AlterTableStatement",
	KindDropTableStatement:        "DropTableStatement",
	KindSetStatement:              "SetStatement",
	KindCallStatement:             "CallStatement",
	KindShowCreateTableStatement:  "ShowCreateTableStatement",
	KindCreateTriggerStatement:    "CreateTriggerStatement",
	KindSelectBlock:               "SelectBlock",
	KindUnionQuery:                "UnionQuery",
	KindBinaryOpExpr:              "BinaryOpExpr",
	KindInListExpr:                "InListExpr",
	KindPropertyExpr:              "PropertyExpr",
	KindVariableRefExpr:           "VariableRefExpr",
	KindMethodInvokeExpr:          "MethodInvokeExpr",
	KindIdentifier:                "Identifier",
	KindNumberLiteral:             "NumberLiteral",
	KindStringLiteral:             "StringLiteral",
	KindNullLiteral:               "NullLiteral",
	KindBoolLiteral:               "BoolLiteral",
	KindAllColumnExpr:             "AllColumnExpr",
	KindParenExpr:                 "ParenExpr",
	KindNotExpr:                   "NotExpr",
	KindUnaryExpr:                 "UnaryExpr",
	KindBetweenExpr:               "BetweenExpr",
	KindIsExpr:                    "IsExpr",
	KindCaseExpr:                  "CaseExpr",
	KindSubqueryExpr:              "SubqueryExpr",
	KindExistsExpr:                "ExistsExpr",
	KindOutFileExpr:               "OutFileExpr",
	KindSelectItem:                "SelectItem",
	KindLimit:                     "Limit",
	KindGroupBy:                   "GroupBy",
	KindOrderBy:                   "OrderBy",
	KindOrderItem:                 "OrderItem",
	KindAssignment:                "Assignment",
	KindCommentHint:               "CommentHint",
	KindColumnDefinition:          "ColumnDefinition",
	KindCaseWhen:                  "CaseWhen",
	KindValuesRow:                 "ValuesRow",
	KindExprTableSource:           "ExprTableSource",
	KindJoinTableSource:           "JoinTableSource",
	KindSubqueryTableSource:       "SubqueryTableSource",
}

func (k Kind) String() string {
	if k >= 0 && k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// AllKinds returns every node kind in declaration order.
func AllKinds() []Kind {
	kinds := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Node is implemented by every element of the statement tree.
type Node interface {
	Kind() Kind
	Parent() Node
	setParent(Node)
}

// Statement is a root-level SQL statement.
type Statement interface {
	Node
	Comments() []*CommentHint
	stmtNode()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Query is a SELECT query body: a single block or a set operation.
// Queries may appear wherever an expression may (scalar subqueries).
type Query interface {
	Expr
	queryNode()
}

// TableSource is an entry of a FROM clause or a DML target.
type TableSource interface {
	Node
	tableSourceNode()
}

// NodeInfo holds the parent back-reference shared by all nodes.
type NodeInfo struct {
	parent Node
}

// Parent returns the enclosing node, or nil for a root statement.
func (n *NodeInfo) Parent() Node { return n.parent }

func (n *NodeInfo) setParent(p Node) { n.parent = p }

// StmtInfo is embedded by statements. Hints holds the comments attached to the
// statement by the parser, in source order.
type StmtInfo struct {
	NodeInfo
	Hints []*CommentHint
}

// Comments returns the comment hints attached to the statement.
func (s *StmtInfo) Comments() []*CommentHint { return s.Hints }

// SetComments replaces the comment hints attached to the statement.
func (s *StmtInfo) SetComments(hints []*CommentHint) { s.Hints = hints }

// TableName is a possibly schema-qualified object name.
type TableName struct {
	Schema string
	Name   string
}

// String renders the name as schema.name.
func (t TableName) String() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// IsEmpty reports whether the name is unset.
func (t TableName) IsEmpty() bool { return t.Name == "" }
