package mysql_test

import (
	"errors"
	"testing"

	"github.com/leapstack-labs/sqlwall/pkg/ast"
	"github.com/leapstack-labs/sqlwall/pkg/format"
	"github.com/leapstack-labs/sqlwall/pkg/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSelect(t *testing.T, sql string) *ast.SelectBlock {
	t.Helper()
	stmt, err := mysql.ParseOne(sql)
	require.NoError(t, err)
	sel, ok := stmt.(*ast.SelectStatement)
	require.True(t, ok, "expected SelectStatement, got %T", stmt)
	block, ok := sel.Query.(*ast.SelectBlock)
	require.True(t, ok, "expected SelectBlock, got %T", sel.Query)
	return block
}

func TestParse_RenderRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected string
	}{
		{
			name:     "select with where and limit",
			sql:      "select * from orders where id = 1 limit 10",
			expected: "SELECT * FROM orders WHERE id = 1 LIMIT 10",
		},
		{
			name:     "qualified table with alias",
			sql:      "SELECT o.id FROM shop.orders AS o",
			expected: "SELECT o.id FROM shop.orders AS o",
		},
		{
			name:     "comma join",
			sql:      "SELECT * FROM a, b",
			expected: "SELECT * FROM a, b",
		},
		{
			name:     "union all",
			sql:      "SELECT a FROM t UNION ALL SELECT b FROM u",
			expected: "SELECT a FROM t UNION ALL SELECT b FROM u",
		},
		{
			name:     "is not null",
			sql:      "SELECT a FROM t WHERE b IS NOT NULL",
			expected: "SELECT a FROM t WHERE b IS NOT NULL",
		},
		{
			name:     "in list",
			sql:      "SELECT a FROM t WHERE b NOT IN (1, 'x')",
			expected: "SELECT a FROM t WHERE b NOT IN (1, 'x')",
		},
		{
			name:     "insert values",
			sql:      "INSERT INTO t (a, b) VALUES (1, 'x')",
			expected: "INSERT INTO t (a, b) VALUES (1, 'x')",
		},
		{
			name:     "update",
			sql:      "UPDATE t SET a = 1 WHERE id > 3",
			expected: "UPDATE t SET a = 1 WHERE id > 3",
		},
		{
			name:     "delete with limit",
			sql:      "DELETE FROM audit_log LIMIT 10",
			expected: "DELETE FROM audit_log LIMIT 10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := mysql.ParseOne(tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, format.Render(stmt))
		})
	}
}

func TestParse_FromLessSelect(t *testing.T) {
	block := parseSelect(t, "SELECT 1")
	assert.Nil(t, block.From, "implicit DUAL must not become a table source")
	require.Len(t, block.Items, 1)
	assert.Equal(t, &ast.NumberLiteral{Text: "1"}, stripParent(block.Items[0].Expr))
}

// stripParent compares literal nodes without their parent links.
func stripParent(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.NumberLiteral:
		return &ast.NumberLiteral{Text: n.Text}
	case *ast.StringLiteral:
		return &ast.StringLiteral{Value: n.Value}
	}
	return e
}

func TestParse_Variables(t *testing.T) {
	t.Run("system variable", func(t *testing.T) {
		block := parseSelect(t, "SELECT @@version")
		ref, ok := block.Items[0].Expr.(*ast.VariableRefExpr)
		require.True(t, ok, "got %T", block.Items[0].Expr)
		assert.Equal(t, "@@version", ref.Name)
		assert.True(t, ref.IsSystemVariable())
	})

	t.Run("scoped system variable", func(t *testing.T) {
		block := parseSelect(t, "SELECT @@session.autocommit")
		prop, ok := block.Items[0].Expr.(*ast.PropertyExpr)
		require.True(t, ok, "got %T", block.Items[0].Expr)
		assert.Equal(t, "autocommit", prop.Name)
		assert.True(t, prop.IsSystemVariableOwner())
		owner, ok := prop.Owner.(*ast.VariableRefExpr)
		require.True(t, ok, "got %T", prop.Owner)
		assert.Equal(t, "@@session", owner.Name)
	})

	t.Run("global scope in a condition", func(t *testing.T) {
		block := parseSelect(t, "SELECT a FROM t WHERE @@GLOBAL.version = '5'")
		cmp, ok := block.Where.(*ast.BinaryOpExpr)
		require.True(t, ok)
		prop, ok := cmp.Left.(*ast.PropertyExpr)
		require.True(t, ok, "got %T", cmp.Left)
		assert.Equal(t, "version", prop.Name)
		assert.True(t, prop.IsSystemVariableOwner())
	})

	t.Run("placeholder", func(t *testing.T) {
		block := parseSelect(t, "SELECT a FROM t WHERE id = ?")
		cmp, ok := block.Where.(*ast.BinaryOpExpr)
		require.True(t, ok)
		ref, ok := cmp.Right.(*ast.VariableRefExpr)
		require.True(t, ok, "got %T", cmp.Right)
		assert.True(t, ref.IsPlaceholder())
	})

	t.Run("schema qualified column", func(t *testing.T) {
		block := parseSelect(t, "SELECT secret.accounts.token FROM x")
		prop, ok := block.Items[0].Expr.(*ast.PropertyExpr)
		require.True(t, ok)
		owner, ok := prop.Owner.(*ast.PropertyExpr)
		require.True(t, ok, "got %T", prop.Owner)
		assert.Equal(t, "accounts", owner.Name)
		assert.Equal(t, &ast.Identifier{Name: "secret"}, stripIdent(owner.Owner))
	})
}

func stripIdent(e ast.Expr) ast.Expr {
	if id, ok := e.(*ast.Identifier); ok {
		return &ast.Identifier{Name: id.Name, Quoted: id.Quoted}
	}
	return e
}

func TestParse_ParentsLinked(t *testing.T) {
	block := parseSelect(t, "SELECT a FROM t WHERE b = 1")
	cmp := block.Where.(*ast.BinaryOpExpr)
	assert.Same(t, block, cmp.Parent())
	assert.Same(t, cmp, cmp.Left.Parent())
	assert.Nil(t, ast.Root(cmp).Parent())
}

func TestParse_Comments(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		text     string
		kind     ast.HintKind
		trailing bool
	}{
		{name: "leading block", sql: "/* app=web */ SELECT 1", text: "/* app=web */", kind: ast.HintComment},
		{name: "trailing line", sql: "SELECT 1 -- note", text: "-- note", kind: ast.HintComment, trailing: true},
		{name: "trailing hash", sql: "SELECT 1 # note", text: "# note", kind: ast.HintComment, trailing: true},
		{name: "trailing block", sql: "SELECT * FROM t WHERE id = 1 /* x */", text: "/* x */", kind: ast.HintComment, trailing: true},
		{name: "executable", sql: "SELECT 1 /*!50000 , 2 */ FROM t", text: "/*!50000 , 2 */", kind: ast.HintExecutable},
		{name: "vendor", sql: "/*TDDL:node=1*/ SELECT 1", text: "/*TDDL:node=1*/", kind: ast.HintVendor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := mysql.ParseOne(tt.sql)
			require.NoError(t, err)
			hints := stmt.Comments()
			require.Len(t, hints, 1)
			assert.Equal(t, tt.text, hints[0].Text)
			assert.Equal(t, tt.kind, hints[0].Type)
			assert.Equal(t, tt.trailing, hints[0].Trailing)
		})
	}
}

func TestParse_CommentMarkersInsideLiterals(t *testing.T) {
	stmt, err := mysql.ParseOne("SELECT a FROM t WHERE b = 'x -- y' AND c = '/* z */'")
	require.NoError(t, err)
	assert.Empty(t, stmt.Comments())
}

func TestParse_ExecutableOnlyStatement(t *testing.T) {
	stmt, err := mysql.ParseOne("/*!40101 SET @x = 1 */")
	require.NoError(t, err)
	set, ok := stmt.(*ast.SetStatement)
	require.True(t, ok, "got %T", stmt)
	require.Len(t, set.Items, 1)
	require.Len(t, set.Comments(), 1)
	assert.Equal(t, ast.HintExecutable, set.Comments()[0].Type)
}

func TestParse_MultipleStatements(t *testing.T) {
	stmts, err := mysql.Parse("SELECT 1; DELETE FROM t WHERE id = 2;")
	require.NoError(t, err)
	require.Len(t, stmts, 2)
	assert.IsType(t, &ast.SelectStatement{}, stmts[0])
	assert.IsType(t, &ast.MySQLDeleteStatement{}, stmts[1])

	_, err = mysql.ParseOne("SELECT 1; SELECT 2")
	assert.ErrorIs(t, err, mysql.ErrMultipleStatements)
}

func TestParse_Errors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		for _, sql := range []string{"", "   ", " ; ", "-- only a comment"} {
			_, err := mysql.Parse(sql)
			assert.ErrorIs(t, err, mysql.ErrEmptyStatement, "input %q", sql)
		}
	})

	t.Run("syntax", func(t *testing.T) {
		_, err := mysql.Parse("SELECT 1; SELEC 2")
		var syntaxErr *mysql.SyntaxError
		require.True(t, errors.As(err, &syntaxErr), "got %v", err)
		assert.Equal(t, 2, syntaxErr.Statement)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := mysql.Parse("USE shop")
		assert.ErrorIs(t, err, mysql.ErrUnsupported)
	})
}

func TestParse_Delete(t *testing.T) {
	stmt, err := mysql.ParseOne("DELETE FROM orders WHERE id = 1")
	require.NoError(t, err)
	del, ok := stmt.(*ast.MySQLDeleteStatement)
	require.True(t, ok, "got %T", stmt)
	assert.Empty(t, del.Targets)
	require.NotNil(t, del.Where)
	src, ok := del.Table.(*ast.ExprTableSource)
	require.True(t, ok)
	assert.Equal(t, ast.TableName{Name: "orders"}, src.Name())
}

func TestParse_CreateTable(t *testing.T) {
	stmt, err := mysql.ParseOne("CREATE TABLE t (id int, name varchar(10))")
	require.NoError(t, err)
	plain, ok := stmt.(*ast.CreateTableStatement)
	require.True(t, ok, "got %T", stmt)
	assert.Equal(t, "t", plain.Table.Name)
	assert.Len(t, plain.Columns, 2)

	stmt, err = mysql.ParseOne("CREATE TABLE t (id int default 0)")
	require.NoError(t, err)
	extended, ok := stmt.(*ast.MySQLCreateTableStatement)
	require.True(t, ok, "got %T", stmt)
	require.Len(t, extended.Columns, 1)
	assert.NotNil(t, extended.Columns[0].Default)
}

func TestParse_DDL(t *testing.T) {
	stmt, err := mysql.ParseOne("DROP TABLE IF EXISTS shop.orders")
	require.NoError(t, err)
	drop, ok := stmt.(*ast.DropTableStatement)
	require.True(t, ok, "got %T", stmt)
	assert.True(t, drop.IfExists)
	assert.Equal(t, []ast.TableName{{Schema: "shop", Name: "orders"}}, drop.Tables)

	stmt, err = mysql.ParseOne("ALTER TABLE orders ADD COLUMN note text")
	require.NoError(t, err)
	alter, ok := stmt.(*ast.AlterTableStatement)
	require.True(t, ok, "got %T", stmt)
	assert.Equal(t, "orders", alter.Table.Name)
	assert.True(t, alter.RenameTo.IsEmpty())

	stmt, err = mysql.ParseOne("RENAME TABLE orders TO shop.archive")
	require.NoError(t, err)
	rename, ok := stmt.(*ast.AlterTableStatement)
	require.True(t, ok, "got %T", stmt)
	assert.Equal(t, ast.TableName{Name: "orders"}, rename.Table)
	assert.Equal(t, ast.TableName{Schema: "shop", Name: "archive"}, rename.RenameTo)
	assert.Equal(t, "ALTER TABLE orders RENAME TO shop.archive", format.Render(rename))
}

func TestParse_SniffedStatements(t *testing.T) {
	t.Run("call", func(t *testing.T) {
		stmt, err := mysql.ParseOne("CALL shop.refund(42, 'late')")
		require.NoError(t, err)
		call, ok := stmt.(*ast.CallStatement)
		require.True(t, ok, "got %T", stmt)
		assert.Equal(t, ast.TableName{Schema: "shop", Name: "refund"}, call.Procedure)
		require.Len(t, call.Args, 2)
		assert.Equal(t, "'late'", format.Render(call.Args[1]))
	})

	t.Run("trigger", func(t *testing.T) {
		stmt, err := mysql.ParseOne("CREATE TRIGGER trg BEFORE INSERT ON orders FOR EACH ROW SET NEW.total = 0")
		require.NoError(t, err)
		trg, ok := stmt.(*ast.CreateTriggerStatement)
		require.True(t, ok, "got %T", stmt)
		assert.Equal(t, "BEFORE", trg.Timing)
		assert.Equal(t, "INSERT", trg.Event)
		assert.Equal(t, "orders", trg.Table.Name)
		assert.Equal(t, "SET NEW.total = 0", trg.Body)
	})

	t.Run("show create table", func(t *testing.T) {
		stmt, err := mysql.ParseOne("SHOW CREATE TABLE `shop`.`orders`")
		require.NoError(t, err)
		show, ok := stmt.(*ast.ShowCreateTableStatement)
		require.True(t, ok, "got %T", stmt)
		assert.Equal(t, ast.TableName{Schema: "shop", Name: "orders"}, show.Table)
	})

	t.Run("into outfile", func(t *testing.T) {
		block := parseSelect(t, "SELECT * FROM users INTO OUTFILE '/tmp/u.txt'")
		require.NotNil(t, block.Into)
		assert.Equal(t, "SELECT * FROM users INTO OUTFILE '/tmp/u.txt'", format.Render(block))
		assert.Same(t, block, block.Into.Parent())
	})

	t.Run("outfile text inside literal is data", func(t *testing.T) {
		block := parseSelect(t, "SELECT a FROM t WHERE b = 'into outfile x'")
		assert.Nil(t, block.Into)
	})
}

func TestParse_Expressions(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		kind ast.Kind
	}{
		{name: "between", sql: "SELECT a FROM t WHERE b BETWEEN 1 AND 2", kind: ast.KindBetweenExpr},
		{name: "not", sql: "SELECT a FROM t WHERE NOT b", kind: ast.KindNotExpr},
		{name: "exists", sql: "SELECT a FROM t WHERE EXISTS (SELECT 1 FROM u)", kind: ast.KindExistsExpr},
		{name: "in subquery", sql: "SELECT a FROM t WHERE b IN (SELECT c FROM u)", kind: ast.KindBinaryOpExpr},
		{name: "case", sql: "SELECT a FROM t WHERE CASE WHEN b = 1 THEN 1 ELSE 0 END", kind: ast.KindCaseExpr},
		{name: "function", sql: "SELECT a FROM t WHERE length(b) > 3", kind: ast.KindBinaryOpExpr},
		{name: "bitwise", sql: "SELECT a FROM t WHERE b & 1", kind: ast.KindBinaryOpExpr},
		{name: "paren", sql: "SELECT a FROM t WHERE (b = 1)", kind: ast.KindParenExpr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block := parseSelect(t, tt.sql)
			require.NotNil(t, block.Where)
			assert.Equal(t, tt.kind, block.Where.Kind())
		})
	}
}

func TestParse_SelectHintsStayOnBlock(t *testing.T) {
	stmt, err := mysql.ParseOne("SELECT /*+ MAX_EXECUTION_TIME(1000) */ a FROM t")
	require.NoError(t, err)
	assert.Empty(t, stmt.Comments())

	block := stmt.(*ast.SelectStatement).Query.(*ast.SelectBlock)
	require.Len(t, block.Hints, 1)
	assert.Equal(t, ast.HintOptimizer, block.Hints[0].Type)
}

func TestParse_CommentAfterSeparator(t *testing.T) {
	stmts, err := mysql.Parse("SELECT * FROM t WHERE id = 1; -- tail")
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	hints := stmts[0].Comments()
	require.Len(t, hints, 1)
	assert.Equal(t, "-- tail", hints[0].Text)
	assert.True(t, hints[0].Trailing)
	assert.Same(t, stmts[0], hints[0].Parent())
}
