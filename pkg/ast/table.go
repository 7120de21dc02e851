package ast

import "strings"

// ---------- Table Source Types ----------

// ExprTableSource is a table referenced by an expression, normally a name
// (*Identifier) or a schema-qualified name (*PropertyExpr).
type ExprTableSource struct {
	NodeInfo
	Expr  Expr
	Alias string
}

// JoinTableSource is left JOIN right [ON cond | USING (cols)].
type JoinTableSource struct {
	NodeInfo
	Left  TableSource
	Join  string
	Right TableSource
	On    Expr
	Using []string
}

// SubqueryTableSource is a derived table.
type SubqueryTableSource struct {
	NodeInfo
	Query Query
	Alias string
}

func (*ExprTableSource) tableSourceNode()     {}
func (*JoinTableSource) tableSourceNode()     {}
func (*SubqueryTableSource) tableSourceNode() {}

// Kind implements Node.
func (*ExprTableSource) Kind() Kind { return KindExprTableSource }

// Kind implements Node.
func (*JoinTableSource) Kind() Kind { return KindJoinTableSource }

// Kind implements Node.
func (*SubqueryTableSource) Kind() Kind { return KindSubqueryTableSource }

// IsName reports whether the source is a bare (possibly qualified) name with
// nothing further to analyse below it.
func (s *ExprTableSource) IsName() bool {
	switch e := s.Expr.(type) {
	case *Identifier:
		return true
	case *PropertyExpr:
		_, ok := e.Owner.(*Identifier)
		return ok
	}
	return false
}

// Name returns the referenced table name, or an empty name when the source is
// not a plain name.
func (s *ExprTableSource) Name() TableName {
	switch e := s.Expr.(type) {
	case *Identifier:
		return TableName{Name: e.Name}
	case *PropertyExpr:
		if owner, ok := e.Owner.(*Identifier); ok {
			return TableName{Schema: owner.Name, Name: e.Name}
		}
	}
	return TableName{}
}

// NewTableSource builds an ExprTableSource for a possibly qualified name.
func NewTableSource(name TableName, alias string) *ExprTableSource {
	var expr Expr = &Identifier{Name: name.Name}
	if name.Schema != "" {
		expr = &PropertyExpr{Owner: &Identifier{Name: name.Schema}, Name: name.Name}
	}
	return &ExprTableSource{Expr: expr, Alias: alias}
}

// NamedTables returns the plain-name sources reachable through joins,
// left to right. Derived tables are not included.
func NamedTables(ts TableSource) []*ExprTableSource {
	switch t := ts.(type) {
	case *ExprTableSource:
		if t.IsName() {
			return []*ExprTableSource{t}
		}
	case *JoinTableSource:
		return append(NamedTables(t.Left), NamedTables(t.Right)...)
	}
	return nil
}

// NormalizeName lower-cases a table or schema name and strips identifier quotes.
func NormalizeName(name string) string {
	name = strings.ReplaceAll(name, "`", "")
	name = strings.ReplaceAll(name, `"`, "")
	return strings.ToLower(name)
}
