package wall

import (
	"log/slog"

	"github.com/leapstack-labs/sqlwall/pkg/ast"
)

// UpdateCheckItem is an UPDATE assignment to a column listed in
// Config.UpdateCheckColumns, collected so the embedding application can
// validate the new value against the rows the statement selects.
type UpdateCheckItem struct {
	Table  string `json:"table"`
	Column string `json:"column"`
	// Value is the rendered SET expression.
	Value string `json:"value"`
	// Filters are the equality restrictions of the WHERE condition.
	Filters []UpdateFilter `json:"filters,omitempty"`
}

// UpdateFilter restricts Column to one of Values (rendered literals).
type UpdateFilter struct {
	Column string   `json:"column"`
	Values []string `json:"values"`
}

// UpdateCheckFunc validates a collected item. A non-nil error denies the
// statement with CodeUpdateCheckFail.
type UpdateCheckFunc func(item UpdateCheckItem) error

// WithUpdateCheck sets the validator for collected update check items.
func WithUpdateCheck(fn UpdateCheckFunc) Option {
	return func(o *engineOptions) { o.updateCheck = fn }
}

// AddUpdateCheckItem records item, with the assignment n as evidence, and
// runs the configured validator on it.
func (v *Visitor) AddUpdateCheckItem(item UpdateCheckItem, n ast.Node) {
	v.report.addUpdateItem(item)
	if v.updateCheck == nil {
		return
	}
	if err := v.updateCheck(item); err != nil {
		v.logger.Debug("update check failed",
			slog.String("table", item.Table),
			slog.String("column", item.Column),
			slog.Any("error", err))
		v.AddViolation(CodeUpdateCheckFail, err.Error(), n)
	}
}
