// Package wall is the policy core of the SQL firewall. It walks a statement
// tree once, records violations of the configured policy, tracks per-table
// usage and optionally rewrites root SELECTs to cap their row count.
//
// An Engine is immutable and safe for concurrent use. Each Analyze call
// builds its own Visitor, Context and Report.
package wall

import (
	"log/slog"

	"github.com/leapstack-labs/sqlwall/pkg/ast"
	"github.com/leapstack-labs/sqlwall/pkg/format"
)

// Engine applies one policy to statements.
type Engine struct {
	cfg       *Config
	hooks     *hookTable
	permitter TablePermitter
	renderer  Renderer
	logger    *slog.Logger

	updateCheck UpdateCheckFunc
}

// Option is a functional option for configuring an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	registry  *Registry
	permitter TablePermitter
	renderer  Renderer
	logger    *slog.Logger

	updateCheck UpdateCheckFunc
}

// WithRegistry sets the check registry. The default registry is used
// otherwise.
func WithRegistry(r *Registry) Option {
	return func(o *engineOptions) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithTablePermitter sets the external table deny-list provider.
func WithTablePermitter(p TablePermitter) Option {
	return func(o *engineOptions) { o.permitter = p }
}

// WithRenderer sets the renderer used for violation evidence.
func WithRenderer(r Renderer) Option {
	return func(o *engineOptions) {
		if r != nil {
			o.renderer = r
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *engineOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates an engine for cfg. A nil cfg means DefaultConfig. The registry
// is snapshotted here, so checks registered later are not seen.
func New(cfg *Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	o := engineOptions{
		registry: DefaultRegistry(),
		renderer: RenderFunc(format.Render),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{
		cfg:       cfg,
		hooks:     o.registry.snapshot(cfg.DisabledChecks),
		permitter: o.permitter,
		renderer:  o.renderer,
		logger:    o.logger,

		updateCheck: o.updateCheck,
	}
}

// Config returns the engine's policy.
func (e *Engine) Config() *Config { return e.cfg }

// NewVisitor returns a visitor with fresh per-analysis state.
func (e *Engine) NewVisitor() *Visitor {
	return &Visitor{
		cfg:       e.cfg,
		ctx:       newContext(),
		report:    &Report{},
		hooks:     e.hooks,
		permitter: e.permitter,
		renderer:  e.renderer,
		logger:    e.logger,

		updateCheck: e.updateCheck,
	}
}

// Result is the outcome of analysing one statement.
type Result struct {
	Violations []Violation          `json:"violations"`
	Modified   bool                 `json:"modified"`
	Warnings   int                  `json:"warnings"`
	TableStats map[string]TableStat `json:"table_stats"`
	// UpdateCheckItems lists assignments to watched columns.
	UpdateCheckItems []UpdateCheckItem `json:"update_check_items,omitempty"`
}

// Has reports whether any violation carries code.
func (r *Result) Has(code Code) bool { return r.Count(code) > 0 }

// Count returns how many violations carry code.
func (r *Result) Count(code Code) int {
	n := 0
	for _, v := range r.Violations {
		if v.Code == code {
			n++
		}
	}
	return n
}

// Allowed reports whether the statement passed.
func (r *Result) Allowed() bool { return len(r.Violations) == 0 }

// Analyze walks stmt and returns its violations. stmt may be rewritten in
// place when a row limit is configured.
func (e *Engine) Analyze(stmt ast.Statement) *Result {
	ast.Link(stmt)
	v := e.NewVisitor()
	v.Visit(stmt)

	res := &Result{
		Violations: v.report.Violations(),
		Modified:   v.report.Modified(),
		Warnings:   v.ctx.Warnings(),
		TableStats: v.ctx.TableStats(),

		UpdateCheckItems: v.report.UpdateItems(),
	}
	e.logger.Debug("statement analysed",
		slog.String("kind", stmt.Kind().String()),
		slog.Int("violations", len(res.Violations)),
		slog.Bool("modified", res.Modified))
	return res
}
