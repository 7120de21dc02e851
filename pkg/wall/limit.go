package wall

import (
	"log/slog"
	"strconv"

	"github.com/leapstack-labs/sqlwall/pkg/ast"
)

// applyRowLimit caps the rows returned by a root SELECT. An existing literal
// limit is tightened but never loosened; a placeholder limit is left to the
// caller that binds it.
func (v *Visitor) applyRowLimit(stmt *ast.SelectStatement) {
	if v.cfg.SelectRowLimit == nil || stmt.Parent() != nil {
		return
	}
	rowLimit := *v.cfg.SelectRowLimit
	if capRowCount(stmt.Query, rowLimit) {
		ast.Link(stmt)
		v.report.MarkModified()
		v.logger.Debug("row limit applied", slog.Uint64("limit", rowLimit))
	}
}

// capRowCount rewrites the outermost limit of q and reports whether q changed.
func capRowCount(q ast.Query, rowLimit uint64) bool {
	var limit **ast.Limit
	switch q := q.(type) {
	case *ast.SelectBlock:
		limit = &q.Limit
	case *ast.UnionQuery:
		limit = &q.Limit
	default:
		return false
	}

	capped := &ast.NumberLiteral{Text: strconv.FormatUint(rowLimit, 10)}
	if *limit == nil {
		*limit = &ast.Limit{RowCount: capped}
		return true
	}
	num, ok := (*limit).RowCount.(*ast.NumberLiteral)
	if !ok {
		return false
	}
	current, err := strconv.ParseUint(num.Text, 10, 64)
	if err != nil || current <= rowLimit {
		return false
	}
	(*limit).RowCount = capped
	return true
}
