package firewall_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlwall/internal/testutil"
	"github.com/leapstack-labs/sqlwall/pkg/firewall"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
	_ "github.com/leapstack-labs/sqlwall/pkg/wall/checks"
)

func newFirewall(t *testing.T, cfg *wall.Config, opts ...firewall.Option) *firewall.Firewall {
	t.Helper()
	return firewall.New(cfg, append([]firewall.Option{firewall.WithLogger(testutil.NewTestLogger(t))}, opts...)...)
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name       string
		sql        string
		config     func(*wall.Config)
		want       []wall.Code
		statements int
	}{
		{
			name:       "plain select",
			sql:        "SELECT id FROM orders WHERE id = 1",
			statements: 1,
		},
		{
			name: "syntax error",
			sql:  "SELEC id FROM orders",
			want: []wall.Code{wall.CodeSyntaxError},
		},
		{
			name: "empty text",
			sql:  "   ",
			want: []wall.Code{wall.CodeSyntaxError},
		},
		{
			name: "comment only",
			sql:  "-- nothing here",
			want: []wall.Code{wall.CodeSyntaxError},
		},
		{
			name: "unsupported statement",
			sql:  "USE shop",
			want: []wall.Code{wall.CodeUnsupported},
		},
		{
			name:       "multiple statements",
			sql:        "SELECT 1; SELECT 2",
			want:       []wall.Code{wall.CodeMultiStatement},
			statements: 2,
		},
		{
			name:       "multiple statements allowed",
			sql:        "SELECT 1; SELECT 2",
			config:     func(c *wall.Config) { c.MultiStatementAllowed = true },
			statements: 2,
		},
		{
			name:       "violations from every statement",
			sql:        "SELECT id FROM orders WHERE id = 1 OR 2 = 2; DELETE FROM orders",
			config:     func(c *wall.Config) { c.MultiStatementAllowed = true; c.DeleteAllowed = false },
			want:       []wall.Code{wall.CodeAlwaysTrue, wall.CodeDeleteNotAllowed},
			statements: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := wall.DefaultConfig()
			if tt.config != nil {
				tt.config(cfg)
			}
			res := newFirewall(t, cfg).Check(tt.sql)

			var got []wall.Code
			for _, v := range res.Violations {
				got = append(got, v.Code)
			}
			if len(tt.want) == 0 {
				assert.Empty(t, got, "violations: %+v", res.Violations)
				assert.True(t, res.Allowed())
			} else {
				assert.ElementsMatch(t, tt.want, got)
				assert.False(t, res.Allowed())
			}
			assert.Equal(t, tt.statements, res.Statements)
			assert.Equal(t, tt.sql, res.SQL)
		})
	}
}

func TestCheck_MultiStatementEvidence(t *testing.T) {
	res := newFirewall(t, nil).Check("SELECT a FROM t; DROP TABLE t")

	require.True(t, res.Has(wall.CodeMultiStatement))
	assert.Equal(t, "DROP TABLE t", res.Violations[0].Evidence)
}

func TestCheck_SyntaxErrorEvidence(t *testing.T) {
	res := newFirewall(t, nil).Check("SELECT 1; SELECT FROM WHERE")

	require.Len(t, res.Violations, 1)
	assert.Equal(t, wall.CodeSyntaxError, res.Violations[0].Code)
	assert.Contains(t, res.Violations[0].Message, "statement 2")
	assert.Equal(t, "SELECT 1; SELECT FROM WHERE", res.Violations[0].Evidence)
}

func TestCheck_Rewrite(t *testing.T) {
	cfg := wall.DefaultConfig()
	cfg.SelectRowLimit = wall.RowLimit(100)
	fw := newFirewall(t, cfg)

	res := fw.Check("SELECT id FROM orders")
	assert.True(t, res.Allowed())
	assert.True(t, res.Modified)
	assert.Equal(t, "SELECT id FROM orders LIMIT 100", res.RewrittenSQL)

	res = fw.Check("SELECT id FROM orders LIMIT 5")
	assert.False(t, res.Modified)
	assert.Empty(t, res.RewrittenSQL)
}

func TestCheck_TableStats(t *testing.T) {
	cfg := wall.DefaultConfig()
	cfg.MultiStatementAllowed = true
	fw := newFirewall(t, cfg)

	res := fw.Check("SELECT id FROM orders; UPDATE orders SET paid = 1 WHERE id = 2")
	assert.Equal(t, wall.TableStat{Select: 1, Update: 1}, res.TableStats["orders"])

	fw.Check("SELECT id FROM orders WHERE 1 = 1 OR id > 2")
	stats := fw.Stats()
	assert.Equal(t, 2, stats.Checked)
	assert.Equal(t, 1, stats.Denied)
	assert.Equal(t, wall.TableStat{Select: 2, Update: 1}, stats.TableStats["orders"])
}

func TestReload(t *testing.T) {
	logger, logs := testutil.NewCaptureLogger()
	fw := firewall.New(nil, firewall.WithLogger(logger))
	require.True(t, fw.Check("SELECT id FROM secrets").Allowed())

	cfg := wall.DefaultConfig()
	cfg.SelectAllowed = false
	deny := wall.TablePermitterFunc(func(name string) bool { return name != "secrets" })
	fw.Reload(cfg, wall.WithTablePermitter(deny))

	res := fw.Check("SELECT id FROM secrets")
	assert.True(t, res.Has(wall.CodeSelectNotAllowed))
	assert.False(t, fw.Config().SelectAllowed)

	res = fw.Check("DELETE FROM secrets WHERE id = 1")
	assert.True(t, res.Has(wall.CodeTableDeny))
	assert.Contains(t, logs.Messages(), "policy reloaded")
}

func TestCheckBatch(t *testing.T) {
	fw := newFirewall(t, nil, firewall.WithConcurrency(2))
	sqls := make([]string, 20)
	for i := range sqls {
		if i%2 == 0 {
			sqls[i] = fmt.Sprintf("SELECT id FROM orders WHERE id = %d", i)
		} else {
			sqls[i] = fmt.Sprintf("SELECT id FROM orders WHERE id = %d OR 1 = 1", i)
		}
	}

	results, err := fw.CheckBatch(context.Background(), sqls)
	require.NoError(t, err)
	require.Len(t, results, len(sqls))
	for i, res := range results {
		assert.Equal(t, sqls[i], res.SQL)
		assert.Equal(t, i%2 == 0, res.Allowed(), res.SQL)
	}
	assert.Equal(t, 20, fw.Stats().Checked)
}

func TestCheckBatch_Cancelled(t *testing.T) {
	fw := newFirewall(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := fw.CheckBatch(ctx, []string{"SELECT 1", "SELECT 2"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results)
}

func TestCheck_Concurrent(t *testing.T) {
	fw := newFirewall(t, nil)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fw.Check(fmt.Sprintf("SELECT id FROM orders WHERE id = %d", i))
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, fw.Stats().TableStats["orders"].Select)
}
