package checks

import (
	"math"
	"strconv"
	"strings"

	"github.com/leapstack-labs/sqlwall/pkg/ast"
)

// valueKind classifies the result of folding an expression.
type valueKind int

const (
	valueUnknown valueKind = iota // depends on row data or unsupported
	valueNull
	valueBool
	valueNumber
	valueString
)

// value is a folded constant.
type value struct {
	kind valueKind
	b    bool
	n    float64
	s    string
}

var (
	unknown   = value{}
	null      = value{kind: valueNull}
	trueValue = value{kind: valueBool, b: true}
)

func boolValue(b bool) value   { return value{kind: valueBool, b: b} }
func numValue(n float64) value { return value{kind: valueNumber, n: n} }

func (v value) known() bool { return v.kind != valueUnknown }

// truth is the SQL truth value of v: 1 true, 0 false, -1 null or unknown.
func (v value) truth() int {
	switch v.kind {
	case valueBool:
		if v.b {
			return 1
		}
		return 0
	case valueNumber, valueString:
		if n, _ := v.number(); n != 0 {
			return 1
		}
		return 0
	}
	return -1
}

// number converts v the way MySQL coerces operands in numeric context: a
// string contributes its longest numeric prefix.
func (v value) number() (float64, bool) {
	switch v.kind {
	case valueNumber:
		return v.n, true
	case valueBool:
		if v.b {
			return 1, true
		}
		return 0, true
	case valueString:
		return numericPrefix(v.s), true
	}
	return 0, false
}

func numericPrefix(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || c == '.' || ((c == '-' || c == '+') && end == 0) {
			end++
			continue
		}
		if (c == 'e' || c == 'E') && end > 0 {
			end++
			continue
		}
		break
	}
	for ; end > 0; end-- {
		if n, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return n
		}
	}
	return 0
}

func parseNumber(text string) value {
	if n, err := strconv.ParseFloat(text, 64); err == nil {
		return numValue(n)
	}
	if i, err := strconv.ParseInt(text, 0, 64); err == nil {
		return numValue(float64(i))
	}
	return unknown
}

// eval folds e to a constant where possible.
func eval(e ast.Expr) value {
	switch e := e.(type) {
	case *ast.NumberLiteral:
		return parseNumber(e.Text)
	case *ast.StringLiteral:
		return value{kind: valueString, s: e.Value}
	case *ast.NullLiteral:
		return null
	case *ast.BoolLiteral:
		return boolValue(e.Value)
	case *ast.ParenExpr:
		return eval(e.Expr)
	case *ast.NotExpr:
		return not(eval(e.Expr))
	case *ast.UnaryExpr:
		return evalUnary(e)
	case *ast.BinaryOpExpr:
		return evalBinary(e.Op, eval(e.Left), eval(e.Right))
	case *ast.InListExpr:
		return evalIn(e)
	case *ast.BetweenExpr:
		x, low, high := eval(e.Expr), eval(e.Low), eval(e.High)
		in := and(compare(ast.OpGreaterEqual, x, low), compare(ast.OpLessEqual, x, high))
		if e.Not {
			return not(in)
		}
		return in
	case *ast.IsExpr:
		return evalIs(e)
	}
	return unknown
}

func not(v value) value {
	switch v.truth() {
	case 1:
		return boolValue(false)
	case 0:
		return trueValue
	}
	if v.kind == valueNull {
		return null
	}
	return unknown
}

func and(l, r value) value {
	lt, rt := l.truth(), r.truth()
	switch {
	case lt == 0 || rt == 0:
		return boolValue(false)
	case lt == 1 && rt == 1:
		return trueValue
	case l.known() && r.known():
		return null
	}
	return unknown
}

func or(l, r value) value {
	lt, rt := l.truth(), r.truth()
	switch {
	case lt == 1 || rt == 1:
		return trueValue
	case lt == 0 && rt == 0:
		return boolValue(false)
	case l.known() && r.known():
		return null
	}
	return unknown
}

func evalUnary(e *ast.UnaryExpr) value {
	v := eval(e.Expr)
	switch strings.ToUpper(strings.TrimSpace(e.Op)) {
	case "-":
		if n, ok := v.number(); ok {
			return numValue(-n)
		}
	case "+":
		if n, ok := v.number(); ok {
			return numValue(n)
		}
	case "!":
		return not(v)
	case "BINARY", "_BINARY":
		return v
	}
	if v.kind == valueNull {
		return null
	}
	return unknown
}

func evalBinary(op ast.BinaryOperator, l, r value) value {
	switch op {
	case ast.OpAnd:
		return and(l, r)
	case ast.OpOr:
		return or(l, r)
	case ast.OpXor:
		lt, rt := l.truth(), r.truth()
		if lt < 0 || rt < 0 {
			return nullOrUnknown(l, r)
		}
		return boolValue(lt != rt)
	case ast.OpNullSafeEqual:
		if !l.known() || !r.known() {
			return unknown
		}
		if l.kind == valueNull || r.kind == valueNull {
			return boolValue(l.kind == r.kind)
		}
		return compare(ast.OpEqual, l, r)
	case ast.OpLike, ast.OpNotLike:
		if l.kind == valueNull || r.kind == valueNull {
			return nullOrUnknown(l, r)
		}
		if !l.known() || !r.known() {
			return unknown
		}
		matched := likeMatch(strings.ToLower(text(l)), strings.ToLower(text(r)))
		return boolValue(matched == (op == ast.OpLike))
	case ast.OpRegexp, ast.OpNotRegexp:
		return unknown
	}
	if op.IsComparison() {
		return compare(op, l, r)
	}
	return arithmetic(op, l, r)
}

func nullOrUnknown(l, r value) value {
	if l.known() && r.known() {
		return null
	}
	return unknown
}

// compare applies a comparison operator. Two strings compare
// case-insensitively as under the default collation; anything else compares
// numerically.
func compare(op ast.BinaryOperator, l, r value) value {
	if !l.known() || !r.known() {
		return unknown
	}
	if l.kind == valueNull || r.kind == valueNull {
		return null
	}
	var c int
	if l.kind == valueString && r.kind == valueString {
		c = strings.Compare(strings.ToLower(l.s), strings.ToLower(r.s))
	} else {
		ln, _ := l.number()
		rn, _ := r.number()
		switch {
		case ln < rn:
			c = -1
		case ln > rn:
			c = 1
		}
	}
	switch op {
	case ast.OpEqual:
		return boolValue(c == 0)
	case ast.OpNotEqual:
		return boolValue(c != 0)
	case ast.OpLessThan:
		return boolValue(c < 0)
	case ast.OpLessEqual:
		return boolValue(c <= 0)
	case ast.OpGreaterThan:
		return boolValue(c > 0)
	case ast.OpGreaterEqual:
		return boolValue(c >= 0)
	}
	return unknown
}

func arithmetic(op ast.BinaryOperator, l, r value) value {
	if l.kind == valueNull || r.kind == valueNull {
		return nullOrUnknown(l, r)
	}
	ln, lok := l.number()
	rn, rok := r.number()
	if !lok || !rok {
		return unknown
	}
	switch op {
	case ast.OpAdd:
		return numValue(ln + rn)
	case ast.OpSub:
		return numValue(ln - rn)
	case ast.OpMul:
		return numValue(ln * rn)
	case ast.OpDiv:
		if rn == 0 {
			return null
		}
		return numValue(ln / rn)
	case ast.OpIntDiv:
		if rn == 0 {
			return null
		}
		return numValue(math.Trunc(ln / rn))
	case ast.OpMod:
		if rn == 0 {
			return null
		}
		return numValue(math.Mod(ln, rn))
	case ast.OpBitAnd:
		return numValue(float64(int64(ln) & int64(rn)))
	case ast.OpBitOr:
		return numValue(float64(int64(ln) | int64(rn)))
	case ast.OpBitXor:
		return numValue(float64(int64(ln) ^ int64(rn)))
	case ast.OpShiftLeft:
		if rn < 0 || rn > 63 {
			return numValue(0)
		}
		return numValue(float64(uint64(ln) << uint(rn)))
	case ast.OpShiftRight:
		if rn < 0 || rn > 63 {
			return numValue(0)
		}
		return numValue(float64(uint64(ln) >> uint(rn)))
	}
	return unknown
}

func evalIn(e *ast.InListExpr) value {
	x := eval(e.Expr)
	if !x.known() {
		return unknown
	}
	sawNull := x.kind == valueNull
	for _, item := range e.List {
		v := compare(ast.OpEqual, x, eval(item))
		switch {
		case v.truth() == 1:
			return boolValue(!e.Not)
		case v.kind == valueNull:
			sawNull = true
		case !v.known():
			return unknown
		}
	}
	if sawNull {
		return null
	}
	return boolValue(e.Not)
}

func evalIs(e *ast.IsExpr) value {
	v := eval(e.Expr)
	if !v.known() {
		return unknown
	}
	var res bool
	switch strings.ToUpper(e.Value) {
	case "NULL", "UNKNOWN":
		res = v.kind == valueNull
	case "TRUE":
		res = v.truth() == 1
	case "FALSE":
		res = v.truth() == 0
	default:
		return unknown
	}
	return boolValue(res != e.Not)
}

func text(v value) string {
	switch v.kind {
	case valueString:
		return v.s
	case valueNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case valueBool:
		if v.b {
			return "1"
		}
		return "0"
	}
	return ""
}

// likeMatch matches s against a LIKE pattern with % and _ wildcards and
// backslash escapes.
func likeMatch(s, pattern string) bool {
	if pattern == "" {
		return s == ""
	}
	switch pattern[0] {
	case '%':
		for i := 0; i <= len(s); i++ {
			if likeMatch(s[i:], pattern[1:]) {
				return true
			}
		}
		return false
	case '_':
		return s != "" && likeMatch(s[1:], pattern[1:])
	case '\\':
		if len(pattern) > 1 {
			return s != "" && s[0] == pattern[1] && likeMatch(s[1:], pattern[2:])
		}
	}
	return s != "" && s[0] == pattern[0] && likeMatch(s[1:], pattern[1:])
}

// IsAlwaysTrue reports whether e folds to SQL TRUE regardless of row data.
func IsAlwaysTrue(e ast.Expr) bool {
	return e != nil && eval(e).truth() == 1
}

// isSimpleConstCompare reports a comparison of two literals, such as the
// WHERE 1 = 1 prefix that query builders emit.
func isSimpleConstCompare(e ast.Expr) bool {
	b, ok := e.(*ast.BinaryOpExpr)
	if !ok || !b.Op.IsComparison() {
		return false
	}
	return isLiteral(b.Left) && isLiteral(b.Right)
}

func isLiteral(e ast.Expr) bool {
	switch e.(type) {
	case *ast.NumberLiteral, *ast.StringLiteral:
		return true
	}
	return false
}
