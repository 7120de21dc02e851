package checks

import (
	"github.com/leapstack-labs/sqlwall/pkg/ast"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

func init() {
	wall.Register(DDLTable)
}

// DDLTable applies the table and schema deny lists to the names a CREATE,
// ALTER or DROP TABLE statement touches.
var DDLTable = wall.CheckDef{
	ID:          "WS10",
	Name:        "table.ddl",
	Group:       groupTable,
	Hooks:       []wall.Hook{wall.HookCreateTable, wall.HookAlterTable, wall.HookDropTable},
	Description: "DDL on a denied table or schema.",
	Codes:       []wall.Code{wall.CodeTableDeny, wall.CodeSchemaDeny},
	Check:       checkDDLTable,
}

func checkDDLTable(v *wall.Visitor, n ast.Node) wall.Outcome {
	var names []ast.TableName
	switch stmt := n.(type) {
	case *ast.CreateTableStatement:
		names = []ast.TableName{stmt.Table}
	case *ast.MySQLCreateTableStatement:
		names = []ast.TableName{stmt.Table}
	case *ast.AlterTableStatement:
		names = []ast.TableName{stmt.Table, stmt.RenameTo}
	case *ast.DropTableStatement:
		names = stmt.Tables
	default:
		return wall.Continue
	}

	out := wall.Continue
	cfg := v.Config()
	for _, name := range names {
		if name.IsEmpty() {
			continue
		}
		if cfg.SchemaCheck && name.Schema != "" && cfg.DeniedSchemas.Has(ast.NormalizeName(name.Schema)) {
			v.AddViolation(wall.CodeSchemaDeny, "schema not allowed: "+name.Schema, n)
			out = wall.StopDenied
		}
		if v.IsTableDenied(name.String()) {
			v.AddViolation(wall.CodeTableDeny, "table not allowed: "+name.String(), n)
			out = wall.StopDenied
		}
	}
	return out
}
