// Package mysql parses MySQL statement text into the firewall's statement tree.
//
// Parsing is delegated to github.com/xwb1989/sqlparser and the result is
// converted node by node into pkg/ast. The front-end adds what that grammar
// lacks:
//
//   - comments are located on the raw text and attached to the statement as
//     hints, executable (/*! */), optimizer (/*+ */) and vendor (/*TDDL: */)
//     comments included; comments that end the statement are marked Trailing
//   - CALL and CREATE TRIGGER are recognised by keyword and not parsed further
//   - SHOW CREATE TABLE keeps its table name
//   - SELECT ... INTO OUTFILE keeps its target file
//
// # Usage
//
//	stmts, err := mysql.Parse("SELECT * FROM users WHERE id = 1; DELETE FROM t")
//	if err != nil {
//	    // *SyntaxError, ErrUnsupported or ErrEmptyStatement
//	}
package mysql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xwb1989/sqlparser"

	"github.com/leapstack-labs/sqlwall/pkg/ast"
)

var (
	// ErrEmptyStatement is returned for input without any statement, such as
	// blank text or text made only of comments.
	ErrEmptyStatement = errors.New("empty statement")
	// ErrMultipleStatements is returned by ParseOne for multi-statement input.
	ErrMultipleStatements = errors.New("multiple statements")
	// ErrUnsupported marks statements and expressions that parse but have no
	// counterpart in the statement tree.
	ErrUnsupported = errors.New("unsupported syntax")
)

// SyntaxError reports a statement the grammar rejected.
type SyntaxError struct {
	// Statement is the 1-based position of the statement in the input.
	Statement int
	SQL       string
	Err       error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error in statement %d: %v", e.Statement, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Parse parses every statement of sql, in order. Statement separators inside
// literals and comments are respected.
func Parse(sql string) ([]ast.Statement, error) {
	pieces, err := sqlparser.SplitStatementToPieces(sql)
	if err != nil {
		return nil, &SyntaxError{Statement: 1, SQL: sql, Err: err}
	}
	var stmts []ast.Statement
	for _, piece := range pieces {
		stmt, orphans, err := parseStatement(piece)
		if errors.Is(err, ErrEmptyStatement) {
			// Comments after the last separator end the previous statement.
			if n := len(stmts); n > 0 && len(orphans) > 0 {
				attachTrailing(stmts[n-1], orphans)
			}
			continue
		}
		var syntaxErr *SyntaxError
		if errors.As(err, &syntaxErr) {
			syntaxErr.Statement = len(stmts) + 1
			return nil, syntaxErr
		}
		if err != nil {
			return nil, fmt.Errorf("statement %d: %w", len(stmts)+1, err)
		}
		stmts = append(stmts, stmt)
	}
	if len(stmts) == 0 {
		return nil, ErrEmptyStatement
	}
	return stmts, nil
}

// ParseOne parses sql, which must hold exactly one statement.
func ParseOne(sql string) (ast.Statement, error) {
	stmts, err := Parse(sql)
	if err != nil {
		return nil, err
	}
	if len(stmts) > 1 {
		return nil, fmt.Errorf("%w: got %d", ErrMultipleStatements, len(stmts))
	}
	return stmts[0], nil
}

type commented interface {
	SetComments([]*ast.CommentHint)
}

// parseStatement parses one piece of the input. A piece holding nothing but
// comments yields ErrEmptyStatement together with those comments.
func parseStatement(text string) (ast.Statement, []*ast.CommentHint, error) {
	scan := scanComments(text)
	hints := scan.hints()
	body := text[scan.bodyStart:scan.bodyEnd]
	masked := scan.masked[scan.bodyStart:scan.bodyEnd]
	if body == "" {
		// A statement written entirely inside /*! ... */ still executes.
		if !hasExecutable(hints) {
			return nil, hints, ErrEmptyStatement
		}
		body = strings.TrimSpace(text)
		masked = body
	}

	c := &converter{}
	stmt, err := c.statement(body, masked)
	if err != nil {
		return nil, nil, err
	}
	if c.err != nil {
		return nil, nil, c.err
	}
	stmt.(commented).SetComments(c.statementHints(hints))
	ast.Link(stmt)
	return stmt, nil, nil
}

func attachTrailing(stmt ast.Statement, hints []*ast.CommentHint) {
	for _, h := range hints {
		h.Trailing = true
	}
	stmt.(commented).SetComments(append(stmt.Comments(), hints...))
	ast.Link(stmt)
}

func (c *converter) statement(body, masked string) (ast.Statement, error) {
	if call, ok := c.sniffCall(body, masked); ok {
		return call, nil
	}
	if trigger, ok := sniffTrigger(body, masked); ok {
		return trigger, nil
	}
	body, masked, file, into := stripOutfile(body, masked)

	parsed, err := sqlparser.ParseStrictDDL(body)
	if err != nil {
		return nil, &SyntaxError{SQL: body, Err: err}
	}
	stmt := c.convert(parsed, body, masked)
	if c.err != nil {
		return nil, c.err
	}
	if into {
		sel, ok := stmt.(*ast.SelectStatement)
		if !ok {
			return nil, fmt.Errorf("%w: INTO OUTFILE outside SELECT", ErrUnsupported)
		}
		var target ast.Expr = &ast.NullLiteral{}
		if args := c.exprList(file); len(args) == 1 {
			target = args[0]
		}
		lastBlock(sel.Query).Into = &ast.OutFileExpr{File: target}
	}
	return stmt, nil
}

// statementHints drops comments already attached to a query block.
func (c *converter) statementHints(hints []*ast.CommentHint) []*ast.CommentHint {
	if len(c.blockHints) == 0 {
		return hints
	}
	out := hints[:0]
	for _, h := range hints {
		if c.blockHints[h.Text] > 0 {
			c.blockHints[h.Text]--
			continue
		}
		out = append(out, h)
	}
	return out
}

func hasExecutable(hints []*ast.CommentHint) bool {
	for _, h := range hints {
		if h.Type == ast.HintExecutable {
			return true
		}
	}
	return false
}

// lastBlock returns the block an INTO clause binds to: the query itself or
// the rightmost branch of a union.
func lastBlock(q ast.Query) *ast.SelectBlock {
	for {
		switch t := q.(type) {
		case *ast.SelectBlock:
			return t
		case *ast.UnionQuery:
			q = t.Right
		default:
			return nil
		}
	}
}
