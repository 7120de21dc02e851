package wall

import (
	"strings"

	"github.com/leapstack-labs/sqlwall/pkg/ast"
)

const sysPrefix = "@@"

// canonicalVariable strips the system prefix and lower-cases name.
func canonicalVariable(name string) string {
	return strings.ToLower(strings.TrimPrefix(name, sysPrefix))
}

// variableAllowed applies the permit side of the variable rule to a
// reference at n.
func (v *Visitor) variableAllowed(n ast.Node, name string) bool {
	if !v.cfg.VariableCheck || name == "?" {
		return true
	}
	if strings.HasPrefix(name, sysPrefix) {
		if !IsSelectItemOrAssignment(n) {
			return false
		}
		name = name[len(sysPrefix):]
	}
	return v.cfg.PermittedVariables.Has(name)
}

// variableDenied reports whether a reference at n that failed the permit test
// must be reported. Top-level reads are tolerated; nested ones are reported
// when the name is denied and the reference filters or orders rows.
func (v *Visitor) variableDenied(n ast.Node, name string) bool {
	if IsTopNoneFromSelect(n) {
		return false
	}
	if !v.cfg.DeniedVariables.Has(canonicalVariable(name)) {
		return false
	}
	return IsWhereOrHaving(n) || InSensitivePosition(n)
}

func (v *Visitor) visitSystemProperty(n *ast.PropertyExpr) Outcome {
	if !IsSelectItemOrAssignment(n) {
		v.AddViolation(CodeVariableDeny, "variable not allowed", n)
		return StopDenied
	}
	if !v.variableAllowed(n, n.Name) && v.variableDenied(n, n.Name) {
		v.AddViolation(CodeVariableDeny, "variable not allowed", n)
		return StopDenied
	}
	return StopLeaf
}

func (v *Visitor) visitVariableRef(n *ast.VariableRefExpr) Outcome {
	if !n.IsSystemVariable() {
		return StopLeaf
	}
	if top := v.ctx.Top(); top != nil && (top.FromSysSchema || top.FromSysTable) {
		return StopLeaf
	}
	if !v.variableAllowed(n, n.Name) && v.variableDenied(n, n.Name) {
		v.AddViolation(CodeVariableDeny, "variable not allowed", n)
		return StopDenied
	}
	return StopLeaf
}
