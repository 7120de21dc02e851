package ast

// ---------- Statement Types ----------

// SelectStatement is a root SELECT.
type SelectStatement struct {
	StmtInfo
	Query Query
}

// InsertStatement is INSERT (or REPLACE) INTO.
// Exactly one of Values and Query is set.
type InsertStatement struct {
	StmtInfo
	Replace     bool
	Table       *ExprTableSource
	Columns     []*Identifier
	Values      []*ValuesRow
	Query       Query
	OnDuplicate []*Assignment
}

// UpdateStatement is UPDATE ... SET.
type UpdateStatement struct {
	StmtInfo
	Table   TableSource
	Set     []*Assignment
	Where   Expr
	OrderBy *OrderBy
	Limit   *Limit
}

// DeleteStatement is the dialect-neutral DELETE.
type DeleteStatement struct {
	StmtInfo
	Table TableSource
	Where Expr
}

// MySQLDeleteStatement extends DeleteStatement with the MySQL multi-table
// target list and ORDER BY / LIMIT.
type MySQLDeleteStatement struct {
	DeleteStatement
	Targets []*ExprTableSource
	OrderBy *OrderBy
	Limit   *Limit
}

// CreateTableStatement is the base CREATE TABLE grammar.
type CreateTableStatement struct {
	StmtInfo
	Table       TableName
	IfNotExists bool
	Columns     []*ColumnDefinition
}

// MySQLCreateTableStatement is CREATE TABLE with MySQL extensions such as
// computed column defaults and table options.
type MySQLCreateTableStatement struct {
	CreateTableStatement
	Options string
}

// AlterTableStatement is ALTER TABLE. AddColumns lists columns added by the
// statement when the parser could recover them.
type AlterTableStatement struct {
	StmtInfo
	Table      TableName
	AddColumns []*ColumnDefinition
	// RenameTo is the new name of a RENAME TABLE or ALTER TABLE ... RENAME.
	RenameTo TableName
}

// DropTableStatement is DROP TABLE.
type DropTableStatement struct {
	StmtInfo
	Tables   []TableName
	IfExists bool
}

// SetStatement is SET [SESSION|GLOBAL] name = value, ...
type SetStatement struct {
	StmtInfo
	Scope string
	Items []*Assignment
}

// CallStatement is CALL procedure(args).
type CallStatement struct {
	StmtInfo
	Procedure TableName
	Args      []Expr
}

// ShowCreateTableStatement is SHOW CREATE TABLE name.
type ShowCreateTableStatement struct {
	StmtInfo
	Table TableName
}

// CreateTriggerStatement is CREATE TRIGGER. The body is kept as text.
type CreateTriggerStatement struct {
	StmtInfo
	Name   TableName
	Timing string
	Event  string
	Table  TableName
	Body   string
}

func (*SelectStatement) stmtNode()          {}
func (*InsertStatement) stmtNode()          {}
func (*UpdateStatement) stmtNode()          {}
func (*DeleteStatement) stmtNode()          {}
func (*CreateTableStatement) stmtNode()     {}
func (*AlterTableStatement) stmtNode()      {}
func (*DropTableStatement) stmtNode()       {}
func (*SetStatement) stmtNode()             {}
func (*CallStatement) stmtNode()            {}
func (*ShowCreateTableStatement) stmtNode() {}
func (*CreateTriggerStatement) stmtNode()   {}

// Kind implements Node.
func (*SelectStatement) Kind() Kind { return KindSelectStatement }

// Kind implements Node.
func (*InsertStatement) Kind() Kind { return KindInsertStatement }

// Kind implements Node.
func (*UpdateStatement) Kind() Kind { return KindUpdateStatement }

// Kind implements Node.
func (*DeleteStatement) Kind() Kind { return KindDeleteStatement }

// Kind implements Node.
func (*MySQLDeleteStatement) Kind() Kind { return KindMySQLDeleteStatement }

// Kind implements Node.
func (*CreateTableStatement) Kind() Kind { return KindCreateTableStatement }

// Kind implements Node.
func (*MySQLCreateTableStatement) Kind() Kind { return KindMySQLCreateTableStatement }

// Kind implements Node.
func (*AlterTableStatement) Kind() Kind { return KindAlterTableStatement }

// Kind implements Node.
func (*DropTableStatement) Kind() Kind { return KindDropTableStatement }

// Kind implements Node.
func (*SetStatement) Kind() Kind { return KindSetStatement }

// Kind implements Node.
func (*CallStatement) Kind() Kind { return KindCallStatement }

// Kind implements Node.
func (*ShowCreateTableStatement) Kind() Kind { return KindShowCreateTableStatement }

// Kind implements Node.
func (*CreateTriggerStatement) Kind() Kind { return KindCreateTriggerStatement }
