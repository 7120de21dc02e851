package mysql

import (
	"encoding/hex"
	"strings"

	"github.com/xwb1989/sqlparser"

	"github.com/leapstack-labs/sqlwall/pkg/ast"
)

var comparisonOps = map[string]ast.BinaryOperator{
	sqlparser.EqualStr:             ast.OpEqual,
	sqlparser.LessThanStr:          ast.OpLessThan,
	sqlparser.GreaterThanStr:       ast.OpGreaterThan,
	sqlparser.LessEqualStr:         ast.OpLessEqual,
	sqlparser.GreaterEqualStr:      ast.OpGreaterEqual,
	sqlparser.NotEqualStr:          ast.OpNotEqual,
	sqlparser.NullSafeEqualStr:     ast.OpNullSafeEqual,
	sqlparser.InStr:                ast.OpIn,
	sqlparser.NotInStr:             ast.OpNotIn,
	sqlparser.LikeStr:              ast.OpLike,
	sqlparser.NotLikeStr:           ast.OpNotLike,
	sqlparser.RegexpStr:            ast.OpRegexp,
	sqlparser.NotRegexpStr:         ast.OpNotRegexp,
	sqlparser.JSONExtractOp:        ast.OpJSONExtract,
	sqlparser.JSONUnquoteExtractOp: ast.OpJSONUnquote,
}

var arithmeticOps = map[string]ast.BinaryOperator{
	sqlparser.BitAndStr:     ast.OpBitAnd,
	sqlparser.BitOrStr:      ast.OpBitOr,
	sqlparser.BitXorStr:     ast.OpBitXor,
	sqlparser.PlusStr:       ast.OpAdd,
	sqlparser.MinusStr:      ast.OpSub,
	sqlparser.MultStr:       ast.OpMul,
	sqlparser.DivStr:        ast.OpDiv,
	sqlparser.IntDivStr:     ast.OpIntDiv,
	sqlparser.ModStr:        ast.OpMod,
	sqlparser.ShiftLeftStr:  ast.OpShiftLeft,
	sqlparser.ShiftRightStr: ast.OpShiftRight,
}

func (c *converter) exprs(list sqlparser.Exprs) []ast.Expr {
	out := make([]ast.Expr, 0, len(list))
	for _, e := range list {
		out = append(out, c.expr(e))
	}
	return out
}

// exprList parses a bare comma-separated expression list.
func (c *converter) exprList(text string) []ast.Expr {
	stmt, err := sqlparser.ParseStrictDDL("select " + text)
	if err != nil {
		c.fail("expression list %q: %v", text, err)
		return nil
	}
	sel, ok := stmt.(*sqlparser.Select)
	if !ok {
		c.fail("expression list %q", text)
		return nil
	}
	return c.args(sel.SelectExprs)
}

// args converts function arguments; COUNT(*) style stars become AllColumnExpr.
func (c *converter) args(list sqlparser.SelectExprs) []ast.Expr {
	out := make([]ast.Expr, 0, len(list))
	for _, se := range list {
		switch e := se.(type) {
		case *sqlparser.StarExpr:
			out = append(out, &ast.AllColumnExpr{Owner: tableName(e.TableName).String()})
		case *sqlparser.AliasedExpr:
			out = append(out, c.expr(e.Expr))
		default:
			c.fail("argument %T", se)
		}
	}
	return out
}

func (c *converter) expr(e sqlparser.Expr) ast.Expr {
	switch e := e.(type) {
	case nil:
		return nil
	case *sqlparser.AndExpr:
		return &ast.BinaryOpExpr{Op: ast.OpAnd, Left: c.expr(e.Left), Right: c.expr(e.Right)}
	case *sqlparser.OrExpr:
		return &ast.BinaryOpExpr{Op: ast.OpOr, Left: c.expr(e.Left), Right: c.expr(e.Right)}
	case *sqlparser.NotExpr:
		return &ast.NotExpr{Expr: c.expr(e.Expr)}
	case *sqlparser.ParenExpr:
		return &ast.ParenExpr{Expr: c.expr(e.Expr)}
	case *sqlparser.ComparisonExpr:
		return c.comparison(e)
	case *sqlparser.RangeCond:
		return &ast.BetweenExpr{
			Expr: c.expr(e.Left),
			Not:  e.Operator == sqlparser.NotBetweenStr,
			Low:  c.expr(e.From),
			High: c.expr(e.To),
		}
	case *sqlparser.IsExpr:
		words := strings.Fields(strings.TrimPrefix(e.Operator, "is "))
		is := &ast.IsExpr{Expr: c.expr(e.Expr)}
		if len(words) > 0 && words[0] == "not" {
			is.Not = true
			words = words[1:]
		}
		is.Value = strings.ToUpper(strings.Join(words, " "))
		return is
	case *sqlparser.ExistsExpr:
		return &ast.ExistsExpr{Subquery: &ast.SubqueryExpr{Query: c.query(e.Subquery.Select)}}
	case *sqlparser.SQLVal:
		return c.value(e)
	case *sqlparser.NullVal:
		return &ast.NullLiteral{}
	case sqlparser.BoolVal:
		return &ast.BoolLiteral{Value: bool(e)}
	case *sqlparser.ColName:
		return c.colName(e)
	case sqlparser.ValTuple:
		return &ast.MethodInvokeExpr{Name: "ROW", Args: c.exprs(sqlparser.Exprs(e))}
	case *sqlparser.Subquery:
		return &ast.SubqueryExpr{Query: c.query(e.Select)}
	case sqlparser.ListArg:
		return &ast.VariableRefExpr{Name: "?"}
	case *sqlparser.BinaryExpr:
		op, ok := arithmeticOps[e.Operator]
		if !ok {
			c.fail("operator %s", e.Operator)
		}
		return &ast.BinaryOpExpr{Op: op, Left: c.expr(e.Left), Right: c.expr(e.Right)}
	case *sqlparser.UnaryExpr:
		if e.Operator == sqlparser.BangStr {
			return &ast.NotExpr{Expr: c.expr(e.Expr)}
		}
		return &ast.UnaryExpr{Op: strings.ToUpper(strings.TrimSpace(e.Operator)), Expr: c.expr(e.Expr)}
	case *sqlparser.IntervalExpr:
		return &ast.MethodInvokeExpr{Name: "INTERVAL", Args: []ast.Expr{c.expr(e.Expr), &ast.Identifier{Name: strings.ToUpper(e.Unit)}}}
	case *sqlparser.CollateExpr:
		return c.expr(e.Expr)
	case *sqlparser.FuncExpr:
		call := &ast.MethodInvokeExpr{Name: e.Name.String(), Distinct: e.Distinct, Args: c.args(e.Exprs)}
		if !e.Qualifier.IsEmpty() {
			call.Owner = &ast.Identifier{Name: e.Qualifier.String()}
		}
		return call
	case *sqlparser.GroupConcatExpr:
		return &ast.MethodInvokeExpr{Name: "group_concat", Distinct: e.Distinct != "", Args: c.args(e.Exprs)}
	case *sqlparser.ValuesFuncExpr:
		return &ast.MethodInvokeExpr{Name: "values", Args: []ast.Expr{c.colName(e.Name)}}
	case *sqlparser.SubstrExpr:
		args := []ast.Expr{c.colName(e.Name), c.expr(e.From)}
		if e.To != nil {
			args = append(args, c.expr(e.To))
		}
		return &ast.MethodInvokeExpr{Name: "substr", Args: args}
	case *sqlparser.ConvertExpr:
		args := []ast.Expr{c.expr(e.Expr)}
		if e.Type != nil {
			args = append(args, &ast.Identifier{Name: strings.ToUpper(e.Type.Type)})
		}
		return &ast.MethodInvokeExpr{Name: "convert", Args: args}
	case *sqlparser.ConvertUsingExpr:
		return &ast.MethodInvokeExpr{Name: "convert", Args: []ast.Expr{c.expr(e.Expr), &ast.Identifier{Name: e.Type}}}
	case *sqlparser.MatchExpr:
		return &ast.MethodInvokeExpr{Name: "match", Args: append(c.args(e.Columns), c.expr(e.Expr))}
	case *sqlparser.CaseExpr:
		ce := &ast.CaseExpr{Operand: c.expr(e.Expr), Else: c.expr(e.Else)}
		for _, w := range e.Whens {
			ce.Whens = append(ce.Whens, &ast.CaseWhen{Cond: c.expr(w.Cond), Result: c.expr(w.Val)})
		}
		return ce
	case *sqlparser.Default:
		return &ast.Identifier{Name: "DEFAULT"}
	}
	c.fail("expression %T", e)
	return &ast.NullLiteral{}
}

// comparison turns IN with a literal list into InListExpr; IN with a
// subquery stays a binary operation.
func (c *converter) comparison(e *sqlparser.ComparisonExpr) ast.Expr {
	op, ok := comparisonOps[e.Operator]
	if !ok {
		c.fail("operator %s", e.Operator)
	}
	if op == ast.OpIn || op == ast.OpNotIn {
		if tuple, ok := e.Right.(sqlparser.ValTuple); ok {
			return &ast.InListExpr{
				Expr: c.expr(e.Left),
				Not:  op == ast.OpNotIn,
				List: c.exprs(sqlparser.Exprs(tuple)),
			}
		}
	}
	return &ast.BinaryOpExpr{Op: op, Left: c.expr(e.Left), Right: c.expr(e.Right)}
}

func (c *converter) value(v *sqlparser.SQLVal) ast.Expr {
	text := string(v.Val)
	switch v.Type {
	case sqlparser.StrVal:
		return &ast.StringLiteral{Value: text}
	case sqlparser.IntVal, sqlparser.FloatVal, sqlparser.HexNum:
		return &ast.NumberLiteral{Text: text}
	case sqlparser.HexVal:
		if raw, err := hex.DecodeString(text); err == nil {
			return &ast.StringLiteral{Value: string(raw)}
		}
		return &ast.NumberLiteral{Text: "0x" + text}
	case sqlparser.BitVal:
		return &ast.NumberLiteral{Text: "b'" + text + "'"}
	case sqlparser.ValArg:
		return &ast.VariableRefExpr{Name: "?"}
	}
	c.fail("value type %d", v.Type)
	return &ast.NullLiteral{}
}

// colName maps column references. The tokenizer reads @ as a letter, so
// @@version and @@session.autocommit arrive here as column names.
func (c *converter) colName(col *sqlparser.ColName) ast.Expr {
	name := col.Name.String()
	q := col.Qualifier
	if q.IsEmpty() {
		return variableOrIdent(name)
	}
	owner := variableOrIdent(q.Name.String())
	if !q.Qualifier.IsEmpty() {
		owner = &ast.PropertyExpr{Owner: &ast.Identifier{Name: q.Qualifier.String()}, Name: q.Name.String()}
	}
	return &ast.PropertyExpr{Owner: owner, Name: name}
}

// variableOrIdent also splits a scoped system variable read as one token,
// such as @@session.version, into its scope and name.
func variableOrIdent(name string) ast.Expr {
	if !strings.HasPrefix(name, "@") {
		return &ast.Identifier{Name: name}
	}
	if scope, rest, ok := strings.Cut(name, "."); ok && rest != "" && isVariableScope(scope) {
		return &ast.PropertyExpr{Owner: &ast.VariableRefExpr{Name: scope}, Name: rest}
	}
	return &ast.VariableRefExpr{Name: name}
}

func isVariableScope(name string) bool {
	return strings.EqualFold(name, "@@session") || strings.EqualFold(name, "@@global")
}
