package format_test

import (
	"testing"

	"github.com/leapstack-labs/sqlwall/pkg/ast"
	"github.com/leapstack-labs/sqlwall/pkg/format"
	"github.com/stretchr/testify/assert"
)

func col(name string) *ast.Identifier    { return &ast.Identifier{Name: name} }
func num(text string) *ast.NumberLiteral { return &ast.NumberLiteral{Text: text} }

func TestRender_Select(t *testing.T) {
	tests := []struct {
		name     string
		node     ast.Node
		expected string
	}{
		{
			name: "star with where and limit",
			node: &ast.SelectStatement{Query: &ast.SelectBlock{
				Items: []*ast.SelectItem{{Expr: &ast.AllColumnExpr{}}},
				From:  ast.NewTableSource(ast.TableName{Name: "orders"}, ""),
				Where: &ast.BinaryOpExpr{Op: ast.OpEqual, Left: num("1"), Right: num("1")},
				Limit: &ast.Limit{RowCount: num("100")},
			}},
			expected: "SELECT * FROM orders WHERE 1 = 1 LIMIT 100",
		},
		{
			name: "qualified source with alias and order",
			node: &ast.SelectBlock{
				Distinct: true,
				Items:    []*ast.SelectItem{{Expr: col("a"), Alias: "x"}},
				From:     ast.NewTableSource(ast.TableName{Schema: "db", Name: "t"}, "t1"),
				OrderBy:  &ast.OrderBy{Items: []*ast.OrderItem{{Expr: col("a"), Desc: true}}},
				Limit:    &ast.Limit{Offset: num("5"), RowCount: num("10")},
			},
			expected: "SELECT DISTINCT a AS x FROM db.t AS t1 ORDER BY a DESC LIMIT 5, 10",
		},
		{
			name:     "system variable property",
			node:     &ast.PropertyExpr{Owner: &ast.VariableRefExpr{Name: "@@session"}, Name: "version"},
			expected: "@@session.version",
		},
		{
			name: "comma join",
			node: &ast.JoinTableSource{
				Left:  ast.NewTableSource(ast.TableName{Name: "a"}, ""),
				Join:  ",",
				Right: ast.NewTableSource(ast.TableName{Name: "b"}, "x"),
			},
			expected: "a, b AS x",
		},
		{
			name: "union with limited branch",
			node: &ast.UnionQuery{
				Op:    "UNION ALL",
				Left:  &ast.SelectBlock{Items: []*ast.SelectItem{{Expr: num("1")}}},
				Right: &ast.SelectBlock{Items: []*ast.SelectItem{{Expr: num("2")}}, Limit: &ast.Limit{RowCount: num("1")}},
			},
			expected: "SELECT 1 UNION ALL (SELECT 2 LIMIT 1)",
		},
		{
			name: "in list and string escaping",
			node: &ast.InListExpr{Expr: col("name"), Not: true, List: []ast.Expr{
				&ast.StringLiteral{Value: "O'Brien"}, &ast.NullLiteral{},
			}},
			expected: "name NOT IN ('O''Brien', NULL)",
		},
		{
			name: "outfile",
			node: &ast.SelectBlock{
				Items: []*ast.SelectItem{{Expr: &ast.AllColumnExpr{}}},
				From:  ast.NewTableSource(ast.TableName{Name: "users"}, ""),
				Into:  &ast.OutFileExpr{File: &ast.StringLiteral{Value: "/tmp/u.txt"}},
			},
			expected: "SELECT * FROM users INTO OUTFILE '/tmp/u.txt'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, format.Render(tt.node))
		})
	}
}

func TestRender_Statements(t *testing.T) {
	tests := []struct {
		name     string
		node     ast.Node
		expected string
	}{
		{
			name: "insert values",
			node: &ast.InsertStatement{
				Table:   ast.NewTableSource(ast.TableName{Name: "t"}, ""),
				Columns: []*ast.Identifier{col("a"), col("b")},
				Values:  []*ast.ValuesRow{{Values: []ast.Expr{num("1"), &ast.StringLiteral{Value: "x"}}}},
			},
			expected: "INSERT INTO t (a, b) VALUES (1, 'x')",
		},
		{
			name: "update with where",
			node: &ast.UpdateStatement{
				Table: ast.NewTableSource(ast.TableName{Name: "t"}, ""),
				Set:   []*ast.Assignment{{Target: col("a"), Value: num("1")}},
				Where: &ast.BinaryOpExpr{Op: ast.OpGreaterThan, Left: col("id"), Right: num("3")},
			},
			expected: "UPDATE t SET a = 1 WHERE id > 3",
		},
		{
			name: "mysql delete with limit",
			node: &ast.MySQLDeleteStatement{
				DeleteStatement: ast.DeleteStatement{Table: ast.NewTableSource(ast.TableName{Name: "audit_log"}, "")},
				Limit:           &ast.Limit{RowCount: num("10")},
			},
			expected: "DELETE FROM audit_log LIMIT 10",
		},
		{
			name: "create table with default",
			node: &ast.MySQLCreateTableStatement{CreateTableStatement: ast.CreateTableStatement{
				Table:   ast.TableName{Name: "t"},
				Columns: []*ast.ColumnDefinition{{Name: "a", Type: "int", NotNull: true, Default: num("0")}},
			}},
			expected: "CREATE TABLE t (a INT NOT NULL DEFAULT 0)",
		},
		{
			name:     "drop table",
			node:     &ast.DropTableStatement{IfExists: true, Tables: []ast.TableName{{Name: "a"}, {Schema: "s", Name: "b"}}},
			expected: "DROP TABLE IF EXISTS a, s.b",
		},
		{
			name: "set with comment",
			node: &ast.SetStatement{
				StmtInfo: ast.StmtInfo{Hints: []*ast.CommentHint{{Text: "/* app */"}}},
				Items:    []*ast.Assignment{{Target: &ast.VariableRefExpr{Name: "@x"}, Value: num("1")}},
			},
			expected: "/* app */ SET @x = 1",
		},
		{
			name:     "show create table",
			node:     &ast.ShowCreateTableStatement{Table: ast.TableName{Name: "orders"}},
			expected: "SHOW CREATE TABLE orders",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, format.Render(tt.node))
		})
	}
}

func TestRender_Nil(t *testing.T) {
	assert.Empty(t, format.Render(nil))
}

func TestRender_MissingChildren(t *testing.T) {
	tests := []struct {
		name     string
		node     ast.Node
		expected string
	}{
		{"outfile without target", &ast.OutFileExpr{}, "INTO OUTFILE"},
		{"comparison without operands", &ast.BinaryOpExpr{Op: ast.OpEqual}, "="},
		{"case without operand", &ast.CaseExpr{}, "CASE END"},
		{"empty select item", &ast.SelectItem{}, ""},
		{"limit without row count", &ast.Limit{}, "LIMIT"},
		{"in list with missing value", &ast.InListExpr{Expr: col("a"), List: []ast.Expr{num("1"), nil}}, "a IN (1, )"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.expected, format.Render(tt.node))
			})
		})
	}
}
