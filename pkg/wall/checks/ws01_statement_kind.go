package checks

import (
	"github.com/leapstack-labs/sqlwall/pkg/ast"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

func init() {
	wall.Register(StatementKind)
}

// StatementKind gates data-modifying and DDL statements behind the
// per-kind allow toggles. SET, CALL and CREATE TRIGGER are decided upstream.
var StatementKind = wall.CheckDef{
	ID:          "WS01",
	Name:        "statement.kind",
	Group:       groupStatement,
	Hooks:       []wall.Hook{wall.HookPreVisit},
	Description: "Statement kind is not allowed by policy.",
	Codes: []wall.Code{
		wall.CodeInsertNotAllowed, wall.CodeUpdateNotAllowed, wall.CodeDeleteNotAllowed,
		wall.CodeCreateTableNotAllowed, wall.CodeAlterTableNotAllowed, wall.CodeDropTableNotAllowed,
	},
	Check: checkStatementKind,
}

func checkStatementKind(v *wall.Visitor, n ast.Node) wall.Outcome {
	cfg := v.Config()
	var allowed bool
	var code wall.Code
	var what string
	switch n.(type) {
	case *ast.InsertStatement:
		allowed, code, what = cfg.InsertAllowed, wall.CodeInsertNotAllowed, "insert"
	case *ast.UpdateStatement:
		allowed, code, what = cfg.UpdateAllowed, wall.CodeUpdateNotAllowed, "update"
	case *ast.DeleteStatement, *ast.MySQLDeleteStatement:
		allowed, code, what = cfg.DeleteAllowed, wall.CodeDeleteNotAllowed, "delete"
	case *ast.CreateTableStatement, *ast.MySQLCreateTableStatement:
		allowed, code, what = cfg.CreateTableAllowed, wall.CodeCreateTableNotAllowed, "create table"
	case *ast.AlterTableStatement:
		allowed, code, what = cfg.AlterTableAllowed, wall.CodeAlterTableNotAllowed, "alter table"
	case *ast.DropTableStatement:
		allowed, code, what = cfg.DropTableAllowed, wall.CodeDropTableNotAllowed, "drop table"
	default:
		return wall.Continue
	}
	if !allowed {
		v.AddViolation(code, what+" not allowed", n)
		return wall.StopDenied
	}
	return wall.Continue
}
