package wall

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/sqlwall/pkg/ast"
)

// ErrUnhandledNode is the panic value (wrapped) raised when the visitor meets
// a node type without a policy. It indicates a grammar change that was not
// reflected in the dispatch table.
var ErrUnhandledNode = errors.New("wall: unhandled node type")

// Renderer turns a node back into SQL text for violation evidence.
type Renderer interface {
	Render(n ast.Node) string
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(n ast.Node) string

// Render implements Renderer.
func (f RenderFunc) Render(n ast.Node) string { return f(n) }

// Visitor walks one statement tree. A Visitor, its Context and its Report
// belong to a single analysis and must not be reused or shared.
type Visitor struct {
	cfg       *Config
	ctx       *Context
	report    *Report
	hooks     *hookTable
	permitter TablePermitter
	renderer  Renderer
	logger    *slog.Logger

	updateCheck UpdateCheckFunc
}

// Config returns the policy in effect.
func (v *Visitor) Config() *Config { return v.cfg }

// Context returns the analysis context.
func (v *Visitor) Context() *Context { return v.ctx }

// Report returns the violation report.
func (v *Visitor) Report() *Report { return v.report }

// Render returns the SQL text of n.
func (v *Visitor) Render(n ast.Node) string { return v.renderer.Render(n) }

// AddViolation records a violation with n as evidence.
func (v *Visitor) AddViolation(code Code, message string, n ast.Node) {
	evidence := ""
	if n != nil {
		evidence = v.renderer.Render(n)
	}
	v.logger.Debug("violation", slog.String("code", string(code)), slog.String("evidence", evidence))
	v.report.Add(Violation{Code: code, Message: message, Evidence: evidence})
}

// IsTableDenied applies the table-access policy: the external lookup is
// consulted only when table checking is enabled. A missing permitter permits
// every table.
func (v *Visitor) IsTableDenied(name string) bool {
	if !v.cfg.TableCheck || v.permitter == nil {
		return false
	}
	return !v.permitter.IsTablePermitted(name)
}

// Visit analyses n and, unless its policy says otherwise, its descendants.
// It returns the descent decision taken for n.
func (v *Visitor) Visit(n ast.Node) Outcome {
	if n == nil {
		return StopLeaf
	}
	if !isOpaqueStatement(n) {
		v.runChecks(HookPreVisit, n)
	}

	out, end := v.enter(n)
	if end != nil {
		defer end()
	}
	if out == Continue {
		v.VisitChildren(n)
	}
	return out
}

// VisitChildren visits the direct children of n.
func (v *Visitor) VisitChildren(n ast.Node) {
	for _, child := range ast.Children(n) {
		v.Visit(child)
	}
}

// runChecks runs every check registered for h. All checks run; the first
// outcome other than Continue is returned.
func (v *Visitor) runChecks(h Hook, n ast.Node) Outcome {
	out := Continue
	for _, def := range v.hooks[h] {
		if res := def.Check(v, n); out == Continue && res != Continue {
			out = res
		}
	}
	return out
}

// isOpaqueStatement reports statement kinds that are gated upstream by the
// statement-kind allow-list and never analysed here.
func isOpaqueStatement(n ast.Node) bool {
	switch n.(type) {
	case *ast.SetStatement, *ast.CallStatement, *ast.CreateTriggerStatement:
		return true
	}
	return false
}

// leafOutcome maps a check outcome onto a node that has no children worth
// visiting.
func leafOutcome(checked Outcome) Outcome {
	if checked == StopDenied {
		return StopDenied
	}
	return StopLeaf
}

// enter applies the per-kind policy. The returned function, if any, runs after
// the node's children have been visited.
func (v *Visitor) enter(n ast.Node) (Outcome, func()) {
	switch n := n.(type) {
	// Statements
	case *ast.SelectStatement:
		if !v.cfg.SelectAllowed {
			v.AddViolation(CodeSelectNotAllowed, "select not allowed", n)
			return StopDenied, nil
		}
		release := v.ctx.push(ast.KindSelectStatement)
		v.applyRowLimit(n)
		return Continue, release
	case *ast.InsertStatement:
		release := v.ctx.push(ast.KindInsertStatement)
		v.runChecks(HookInsert, n)
		return Continue, release
	case *ast.UpdateStatement:
		release := v.ctx.push(ast.KindUpdateStatement)
		v.runChecks(HookUpdate, n)
		return Continue, release
	case *ast.MySQLDeleteStatement:
		v.runChecks(HookReadOnly, n)
		v.runChecks(HookDelete, &n.DeleteStatement)
		return Continue, nil
	case *ast.DeleteStatement:
		v.runChecks(HookDelete, n)
		return Continue, nil
	case *ast.CreateTableStatement:
		v.runChecks(HookCreateTable, n)
		return StopLeaf, nil
	case *ast.MySQLCreateTableStatement:
		v.runChecks(HookCreateTable, n)
		return Continue, nil
	case *ast.AlterTableStatement:
		v.runChecks(HookAlterTable, n)
		return Continue, nil
	case *ast.DropTableStatement:
		v.runChecks(HookDropTable, n)
		return Continue, nil
	case *ast.SetStatement, *ast.CallStatement, *ast.CreateTriggerStatement:
		return StopLeaf, nil
	case *ast.ShowCreateTableStatement:
		if !n.Table.IsEmpty() {
			v.ctx.TableStat(n.Table.String()).Show++
		}
		return StopLeaf, nil

	// Queries
	case *ast.SelectBlock:
		v.runChecks(HookSelectBlock, n)
		return Continue, nil
	case *ast.UnionQuery:
		return v.runChecks(HookUnion, n), nil

	// Clauses
	case *ast.GroupBy:
		if n.Having != nil {
			v.runChecks(HookHaving, n)
		}
		return Continue, nil
	case *ast.Limit:
		if isZeroLiteral(n.RowCount) {
			v.ctx.Warn()
			if !v.cfg.LimitZeroAllowed {
				v.AddViolation(CodeLimitZero, "limit zero not allowed", n)
			}
		}
		return Continue, nil
	case *ast.SelectItem:
		v.runChecks(HookSelectItem, n)
		return Continue, nil
	case *ast.CommentHint:
		if n.Type == ast.HintVendor {
			return StopLeaf, nil
		}
		v.runChecks(HookCommentHint, n)
		return Continue, nil
	case *ast.OrderBy, *ast.OrderItem, *ast.Assignment, *ast.ColumnDefinition,
		*ast.CaseWhen, *ast.ValuesRow:
		return Continue, nil

	// Table sources
	case *ast.ExprTableSource:
		checked := v.runChecks(HookTableSource, n)
		if n.IsName() {
			return leafOutcome(checked), nil
		}
		return Continue, nil
	case *ast.JoinTableSource, *ast.SubqueryTableSource:
		v.runChecks(HookTableSource, n)
		return Continue, nil

	// Expressions
	case *ast.OutFileExpr:
		if !v.cfg.SelectIntoOutfileAllowed && !IsTopSelectOutFile(n) {
			v.AddViolation(CodeIntoOutfile, "into outfile not allowed", n)
		}
		return Continue, nil
	case *ast.BinaryOpExpr:
		v.runChecks(HookBinaryOp, n)
		return Continue, nil
	case *ast.InListExpr:
		v.runChecks(HookInList, n)
		return Continue, nil
	case *ast.MethodInvokeExpr:
		v.runChecks(HookMethodInvoke, n)
		return Continue, nil
	case *ast.PropertyExpr:
		if n.IsSystemVariableOwner() {
			return v.visitSystemProperty(n), nil
		}
		v.runChecks(HookPropertyAccess, n)
		return Continue, nil
	case *ast.VariableRefExpr:
		return v.visitVariableRef(n), nil
	case *ast.StringLiteral:
		return leafOutcome(v.runChecks(HookLiteral, n)), nil
	case *ast.Identifier, *ast.NumberLiteral, *ast.NullLiteral, *ast.BoolLiteral,
		*ast.AllColumnExpr:
		return StopLeaf, nil
	case *ast.ParenExpr, *ast.NotExpr, *ast.UnaryExpr, *ast.BetweenExpr, *ast.IsExpr,
		*ast.CaseExpr, *ast.SubqueryExpr, *ast.ExistsExpr:
		return Continue, nil
	}

	panic(fmt.Errorf("%w: %T", ErrUnhandledNode, n))
}
