package wall

import "slices"

// Code is the machine-readable identifier of a violation.
type Code string

// Violation codes raised by the visitor itself.
const (
	CodeSelectNotAllowed Code = "SelectNotAllowed"
	CodeLimitZero        Code = "LimitZero"
	CodeVariableDeny     Code = "VariableDeny"
	CodeIntoOutfile      Code = "IntoOutfile"
)

// Violation codes raised by registered checks and by the firewall facade.
const (
	CodeSelectIntoNotAllowed  Code = "SelectIntoNotAllowed"
	CodeInsertNotAllowed      Code = "InsertNotAllowed"
	CodeUpdateNotAllowed      Code = "UpdateNotAllowed"
	CodeDeleteNotAllowed      Code = "DeleteNotAllowed"
	CodeCreateTableNotAllowed Code = "CreateTableNotAllowed"
	CodeAlterTableNotAllowed  Code = "AlterTableNotAllowed"
	CodeDropTableNotAllowed   Code = "DropTableNotAllowed"
	CodeCommentNotAllowed     Code = "CommentNotAllowed"
	CodeEvilHint              Code = "EvilHint"
	CodeAlwaysTrue            Code = "AlwaysTrue"
	CodeUnionNotAllowed       Code = "UnionNotAllowed"
	CodeReadOnlyTable         Code = "ReadOnlyTable"
	CodeNoneCondition         Code = "NoneCondition"
	CodeTableDeny             Code = "TableDeny"
	CodeSchemaDeny            Code = "SchemaDeny"
	CodeXorNotAllowed         Code = "XorNotAllowed"
	CodeBitwiseNotAllowed     Code = "BitwiseNotAllowed"
	CodeSelectAllColumn       Code = "SelectAllColumn"
	CodeFunctionDeny          Code = "FunctionDeny"
	CodeLiteralInjection      Code = "LiteralInjection"
	CodeMultiStatement        Code = "MultiStatement"
	CodeSyntaxError           Code = "SyntaxError"
	CodeUnsupported           Code = "Unsupported"
	CodeUpdateCheckFail       Code = "UpdateCheckFail"
)

// Violation is one recorded policy breach. Evidence is the rendered SQL of
// the offending sub-tree.
type Violation struct {
	Code     Code   `json:"code"`
	Message  string `json:"message"`
	Evidence string `json:"evidence"`
}

// Report is the ordered, append-only log of violations for one analysis, plus
// whether the statement tree was rewritten.
type Report struct {
	violations  []Violation
	modified    bool
	updateItems []UpdateCheckItem
}

// Add appends a violation. Duplicates are kept.
func (r *Report) Add(v Violation) {
	r.violations = append(r.violations, v)
}

// Violations returns a copy of the recorded violations in order.
func (r *Report) Violations() []Violation {
	return slices.Clone(r.violations)
}

// Len returns the number of violations.
func (r *Report) Len() int { return len(r.violations) }

// Count returns how many violations carry code.
func (r *Report) Count(code Code) int {
	n := 0
	for _, v := range r.violations {
		if v.Code == code {
			n++
		}
	}
	return n
}

// Has reports whether any violation carries code.
func (r *Report) Has(code Code) bool { return r.Count(code) > 0 }

// MarkModified records that the statement tree was rewritten.
func (r *Report) MarkModified() { r.modified = true }

// Modified reports whether the statement tree was rewritten.
func (r *Report) Modified() bool { return r.modified }

func (r *Report) addUpdateItem(item UpdateCheckItem) {
	r.updateItems = append(r.updateItems, item)
}

// UpdateItems returns a copy of the collected update check items.
func (r *Report) UpdateItems() []UpdateCheckItem {
	return slices.Clone(r.updateItems)
}
