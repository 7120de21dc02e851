// Package firewall checks SQL text against a policy. It parses the text with
// the MySQL front-end, runs every statement through a wall.Engine and merges
// the per-statement results. Parse failures become violations, so callers
// handle a single outcome type.
//
// # Usage
//
//	fw := firewall.New(wall.DefaultConfig())
//	res := fw.Check("SELECT * FROM users WHERE id = 1 OR 1 = 1")
//	if !res.Allowed() {
//	    for _, v := range res.Violations {
//	        fmt.Println(v.Code, v.Evidence)
//	    }
//	}
package firewall

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/sqlwall/pkg/ast"
	"github.com/leapstack-labs/sqlwall/pkg/format"
	"github.com/leapstack-labs/sqlwall/pkg/mysql"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

// Result is the outcome of checking one SQL text.
type Result struct {
	SQL string `json:"sql"`
	// RewrittenSQL is the rendered statement list when a rewrite happened.
	RewrittenSQL string                    `json:"rewritten_sql,omitempty"`
	Statements   int                       `json:"statements"`
	Violations   []wall.Violation          `json:"violations"`
	Modified     bool                      `json:"modified"`
	Warnings     int                       `json:"warnings"`
	TableStats   map[string]wall.TableStat `json:"table_stats"`
}

// Allowed reports whether the text passed.
func (r *Result) Allowed() bool { return len(r.Violations) == 0 }

// Has reports whether any violation carries code.
func (r *Result) Has(code wall.Code) bool {
	for _, v := range r.Violations {
		if v.Code == code {
			return true
		}
	}
	return false
}

// Firewall checks SQL text. It is safe for concurrent use; Reload swaps the
// policy without blocking running checks.
type Firewall struct {
	engine      atomic.Pointer[wall.Engine]
	engineOpts  []wall.Option
	concurrency int
	logger      *slog.Logger

	mu      sync.Mutex
	stats   map[string]wall.TableStat
	checked int
	denied  int
}

// Option is a functional option for configuring a Firewall.
type Option func(*Firewall)

// WithEngineOptions passes options to every engine the firewall builds.
func WithEngineOptions(opts ...wall.Option) Option {
	return func(f *Firewall) { f.engineOpts = append(f.engineOpts, opts...) }
}

// WithConcurrency bounds the number of texts CheckBatch checks at once.
func WithConcurrency(n int) Option {
	return func(f *Firewall) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithLogger sets the structured logger. It is also handed to the engine.
func WithLogger(l *slog.Logger) Option {
	return func(f *Firewall) {
		if l != nil {
			f.logger = l
		}
	}
}

// New creates a firewall enforcing cfg. A nil cfg means wall.DefaultConfig.
func New(cfg *wall.Config, opts ...Option) *Firewall {
	f := &Firewall{
		concurrency: runtime.GOMAXPROCS(0),
		logger:      slog.New(slog.DiscardHandler),
		stats:       make(map[string]wall.TableStat),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.engine.Store(f.newEngine(cfg))
	return f
}

func (f *Firewall) newEngine(cfg *wall.Config, extra ...wall.Option) *wall.Engine {
	opts := append([]wall.Option{wall.WithLogger(f.logger)}, f.engineOpts...)
	return wall.New(cfg, append(opts, extra...)...)
}

// Reload replaces the policy. extra options are applied after the ones given
// to New, so a fresh table permitter can be supplied with the new policy.
func (f *Firewall) Reload(cfg *wall.Config, extra ...wall.Option) {
	f.engine.Store(f.newEngine(cfg, extra...))
	f.logger.Info("policy reloaded")
}

// Config returns the policy currently enforced.
func (f *Firewall) Config() *wall.Config { return f.engine.Load().Config() }

// Check parses sql and analyses every statement in it.
func (f *Firewall) Check(sql string) *Result {
	engine := f.engine.Load()
	cfg := engine.Config()
	res := &Result{SQL: sql, TableStats: make(map[string]wall.TableStat)}

	stmts, err := mysql.Parse(sql)
	if err != nil {
		res.Violations = append(res.Violations, parseViolation(sql, err))
		f.record(res)
		return res
	}
	res.Statements = len(stmts)
	if len(stmts) > 1 && !cfg.MultiStatementAllowed {
		res.Violations = append(res.Violations, wall.Violation{
			Code:     wall.CodeMultiStatement,
			Message:  "multi-statement not allowed",
			Evidence: format.Render(stmts[1]),
		})
	}

	for _, stmt := range stmts {
		r := engine.Analyze(stmt)
		res.Violations = append(res.Violations, r.Violations...)
		res.Modified = res.Modified || r.Modified
		res.Warnings += r.Warnings
		wall.MergeTableStats(res.TableStats, r.TableStats)
	}
	if res.Modified {
		res.RewrittenSQL = renderAll(stmts)
	}

	f.logger.Debug("sql checked",
		slog.Int("statements", res.Statements),
		slog.Int("violations", len(res.Violations)),
		slog.Bool("modified", res.Modified))
	f.record(res)
	return res
}

// CheckBatch checks every text in sqls, in parallel, and returns the results
// in input order. It stops early when ctx is cancelled.
func (f *Firewall) CheckBatch(ctx context.Context, sqls []string) ([]*Result, error) {
	results := make([]*Result, len(sqls))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(f.concurrency)
	for i, sql := range sqls {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			results[i] = f.Check(sql)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Stats is a snapshot of the counters accumulated since the firewall was
// created.
type Stats struct {
	Checked    int                       `json:"checked"`
	Denied     int                       `json:"denied"`
	TableStats map[string]wall.TableStat `json:"table_stats"`
}

// Stats returns the cumulative counters.
func (f *Firewall) Stats() Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Stats{Checked: f.checked, Denied: f.denied, TableStats: maps.Clone(f.stats)}
}

func (f *Firewall) record(res *Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checked++
	if !res.Allowed() {
		f.denied++
	}
	wall.MergeTableStats(f.stats, res.TableStats)
}

func parseViolation(sql string, err error) wall.Violation {
	code := wall.CodeSyntaxError
	if errors.Is(err, mysql.ErrUnsupported) {
		code = wall.CodeUnsupported
	}
	return wall.Violation{Code: code, Message: err.Error(), Evidence: strings.TrimSpace(sql)}
}

func renderAll(stmts []ast.Statement) string {
	parts := make([]string, len(stmts))
	for i, s := range stmts {
		parts[i] = format.Render(s)
	}
	return strings.Join(parts, "; ")
}
