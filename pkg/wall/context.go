package wall

import "github.com/leapstack-labs/sqlwall/pkg/ast"

// TopStatementMarker describes the outermost INSERT, UPDATE or SELECT being
// visited. Provenance flags are set when a target or FROM table of that
// statement is resolved to a system schema or table.
type TopStatementMarker struct {
	Kind          ast.Kind
	FromSysSchema bool
	FromSysTable  bool
}

// TableStat counts operations against one table during an analysis.
type TableStat struct {
	Select int `json:"select"`
	Insert int `json:"insert"`
	Update int `json:"update"`
	Delete int `json:"delete"`
	Show   int `json:"show"`
}

// Context is the per-analysis state threaded through the visitor. It must not
// outlive or be shared beyond the analysis that created it.
type Context struct {
	markers  []*TopStatementMarker
	tables   map[string]*TableStat
	warnings int
}

func newContext() *Context {
	return &Context{tables: make(map[string]*TableStat)}
}

// push adds a marker and returns the function that removes it.
func (c *Context) push(kind ast.Kind) func() {
	c.markers = append(c.markers, &TopStatementMarker{Kind: kind})
	depth := len(c.markers)
	return func() {
		c.markers = c.markers[:depth-1]
	}
}

// Top returns the innermost marker, or nil outside INSERT/UPDATE/SELECT.
func (c *Context) Top() *TopStatementMarker {
	if len(c.markers) == 0 {
		return nil
	}
	return c.markers[len(c.markers)-1]
}

// Depth returns the marker stack depth.
func (c *Context) Depth() int { return len(c.markers) }

// TableStat returns the counters for name, creating them on first use.
// Names are normalised with ast.NormalizeName.
func (c *Context) TableStat(name string) *TableStat {
	key := ast.NormalizeName(name)
	stat, ok := c.tables[key]
	if !ok {
		stat = &TableStat{}
		c.tables[key] = stat
	}
	return stat
}

// LookupTableStat returns the counters for name if the table was referenced.
func (c *Context) LookupTableStat(name string) (*TableStat, bool) {
	stat, ok := c.tables[ast.NormalizeName(name)]
	return stat, ok
}

// TableStats returns a snapshot of all counters.
func (c *Context) TableStats() map[string]TableStat {
	out := make(map[string]TableStat, len(c.tables))
	for name, stat := range c.tables {
		out[name] = *stat
	}
	return out
}

// Warn increments the warning counter.
func (c *Context) Warn() { c.warnings++ }

// Warnings returns the warning counter.
func (c *Context) Warnings() int { return c.warnings }

// MergeTableStats adds src into dst.
func MergeTableStats(dst, src map[string]TableStat) {
	for name, s := range src {
		d := dst[name]
		d.Select += s.Select
		d.Insert += s.Insert
		d.Update += s.Update
		d.Delete += s.Delete
		d.Show += s.Show
		dst[name] = d
	}
}
