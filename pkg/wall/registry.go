package wall

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/leapstack-labs/sqlwall/pkg/ast"
)

// Hook names a syntactic situation at which the visitor runs checks.
type Hook int

// Hooks, one per situation in the visitor's dispatch.
const (
	HookPreVisit Hook = iota
	HookSelectBlock
	HookHaving
	HookUnion
	HookInsert
	HookUpdate
	HookReadOnly
	HookDelete
	HookCreateTable
	HookAlterTable
	HookDropTable
	HookCommentHint
	HookTableSource
	HookBinaryOp
	HookInList
	HookSelectItem
	HookMethodInvoke
	HookPropertyAccess
	HookLiteral

	hookCount
)

var hookNames = [...]string{
	HookPreVisit:       "pre-visit",
	HookSelectBlock:    "select-block",
	HookHaving:         "having",
	HookUnion:          "union",
	HookInsert:         "insert",
	HookUpdate:         "update",
	HookReadOnly:       "read-only",
	HookDelete:         "delete",
	HookCreateTable:    "create-table",
	HookAlterTable:     "alter-table",
	HookDropTable:      "drop-table",
	HookCommentHint:    "comment-hint",
	HookTableSource:    "table-source",
	HookBinaryOp:       "binary-op",
	HookInList:         "in-list",
	HookSelectItem:     "select-item",
	HookMethodInvoke:   "method-invoke",
	HookPropertyAccess: "property-access",
	HookLiteral:        "literal",
}

func (h Hook) String() string {
	if h >= 0 && h < hookCount {
		return hookNames[h]
	}
	return fmt.Sprintf("Hook(%d)", int(h))
}

// Outcome is a check's or a node policy's descent decision.
type Outcome int

const (
	// Continue descends into the node's children.
	Continue Outcome = iota
	// StopLeaf stops because there is nothing below worth analysing.
	StopLeaf
	// StopDenied stops because the node was rejected.
	StopDenied
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case StopLeaf:
		return "stop-leaf"
	case StopDenied:
		return "stop-denied"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// CheckFunc inspects n, which is the node the hook fired for, and reports
// through v.AddViolation. Checks may read v.Config and v.Context and may
// update context state such as table counters and provenance flags.
//
// The returned outcome decides descent only for hooks whose node policy
// delegates it (union queries). For table sources it distinguishes a denied
// leaf from a plain leaf. Elsewhere it is ignored.
type CheckFunc func(v *Visitor, n ast.Node) Outcome

// CheckDef describes a registered check.
type CheckDef struct {
	ID          string
	Name        string
	Group       string
	Hooks       []Hook
	Description string
	Codes       []Code
	Check       CheckFunc
}

// Registry maps hooks to checks. Checks for a hook run in ID order.
type Registry struct {
	mu     sync.RWMutex
	checks map[string]CheckDef
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{checks: make(map[string]CheckDef)}
}

// defaultRegistry is populated from init() in the checks package.
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry { return defaultRegistry }

// Register adds a check to the default registry.
// Call this from init() functions in check packages.
func Register(def CheckDef) {
	defaultRegistry.Register(def)
}

// Register adds or replaces a check by ID.
func (r *Registry) Register(def CheckDef) {
	if def.ID == "" || def.Check == nil || len(def.Hooks) == 0 {
		panic(fmt.Sprintf("wall: invalid check definition %q", def.ID))
	}
	for _, h := range def.Hooks {
		if h < 0 || h >= hookCount {
			panic(fmt.Sprintf("wall: check %q uses unknown %s", def.ID, h))
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks[def.ID] = def
}

// Checks returns all checks ordered by ID.
func (r *Registry) Checks() []CheckDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]CheckDef, 0, len(r.checks))
	for _, def := range r.checks {
		out = append(out, def)
	}
	slices.SortFunc(out, func(a, b CheckDef) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// ByID returns the check with the given ID.
func (r *Registry) ByID(id string) (CheckDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.checks[id]
	return def, ok
}

// Len returns the number of registered checks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.checks)
}

// CheckInfo is the serialisable description of a registered check.
type CheckInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Group       string   `json:"group"`
	Description string   `json:"description"`
	Hooks       []string `json:"hooks"`
	Codes       []Code   `json:"codes"`
	Enabled     bool     `json:"enabled"`
}

// Describe lists the checks of r in ID order, marking those cfg disables.
func (r *Registry) Describe(cfg *Config) []CheckInfo {
	defs := r.Checks()
	out := make([]CheckInfo, 0, len(defs))
	for _, def := range defs {
		hooks := make([]string, len(def.Hooks))
		for i, h := range def.Hooks {
			hooks[i] = h.String()
		}
		out = append(out, CheckInfo{
			ID:          def.ID,
			Name:        def.Name,
			Group:       def.Group,
			Description: def.Description,
			Hooks:       hooks,
			Codes:       def.Codes,
			Enabled:     cfg == nil || !cfg.DisabledChecks.Has(def.ID),
		})
	}
	return out
}

// hookTable is an immutable per-hook snapshot of a registry.
type hookTable [hookCount][]CheckDef

func (r *Registry) snapshot(disabled Set) *hookTable {
	var t hookTable
	for _, def := range r.Checks() {
		if disabled.Has(def.ID) {
			continue
		}
		for _, h := range def.Hooks {
			t[h] = append(t[h], def)
		}
	}
	return &t
}
