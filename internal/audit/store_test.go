package audit_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlwall/internal/audit"
	"github.com/leapstack-labs/sqlwall/internal/testutil"
	"github.com/leapstack-labs/sqlwall/pkg/firewall"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
	_ "github.com/leapstack-labs/sqlwall/pkg/wall/checks"
)

// clock returns a time source that advances one second per call.
func clock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		t := next
		next = next.Add(time.Second)
		return t
	}
}

var epoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func setupTestStore(t *testing.T) *audit.Store {
	t.Helper()
	store, err := audit.Open(context.Background(), ":memory:",
		audit.WithLogger(testutil.NewTestLogger(t)),
		audit.WithClock(clock(epoch)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpen_Migrates(t *testing.T) {
	store := setupTestStore(t)

	version, err := store.MigrationVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "audit.db")
	ctx := context.Background()

	store, err := audit.Open(ctx, path)
	require.NoError(t, err)
	id, err := store.Record(ctx, &firewall.Result{SQL: "SELECT 1", Statements: 1})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening applies no migration twice and keeps the data.
	store, err = audit.Open(ctx, path)
	require.NoError(t, err)
	defer store.Close()
	e, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", e.SQL)
}

func TestRecordAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	cfg := wall.DefaultConfig()
	cfg.SelectRowLimit = wall.RowLimit(10)
	res := firewall.New(cfg).Check("SELECT id FROM orders WHERE id = 1 OR 1 = 1")
	require.NotEmpty(t, res.Violations)

	id, err := store.Record(ctx, res)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	e, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, e.ID)
	assert.True(t, e.CheckedAt.Equal(epoch))
	assert.Equal(t, res.SQL, e.SQL)
	assert.Equal(t, res.RewrittenSQL, e.RewrittenSQL)
	assert.Equal(t, res.Statements, e.Statements)
	assert.Equal(t, res.Modified, e.Modified)
	assert.Equal(t, res.Violations, e.Violations)
	assert.Equal(t, res.TableStats, e.TableStats)
	assert.False(t, e.Allowed())
}

func TestGet_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	require.ErrorIs(t, err, audit.ErrNotFound)
}

func TestList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	fw := firewall.New(nil)

	sqls := []string{
		"SELECT id FROM orders WHERE id = 1",
		"SELECT id FROM orders WHERE id = 2 OR 1 = 1",
		"SELECT id FROM users UNION SELECT version()",
		"SELECT id FROM orders WHERE id = 3",
	}
	for _, sql := range sqls {
		_, err := store.Record(ctx, fw.Check(sql))
		require.NoError(t, err)
	}

	tests := []struct {
		name     string
		filter   audit.Filter
		expected []string
	}{
		{
			name:     "all, newest first",
			expected: []string{sqls[3], sqls[2], sqls[1], sqls[0]},
		},
		{
			name:     "limit",
			filter:   audit.Filter{Limit: 2},
			expected: []string{sqls[3], sqls[2]},
		},
		{
			name:     "denied only",
			filter:   audit.Filter{DeniedOnly: true},
			expected: []string{sqls[2], sqls[1]},
		},
		{
			name:     "by code",
			filter:   audit.Filter{Code: wall.CodeUnionNotAllowed},
			expected: []string{sqls[2]},
		},
		{
			name:   "no match",
			filter: audit.Filter{Code: wall.CodeDropTableNotAllowed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := store.List(ctx, tt.filter)
			require.NoError(t, err)
			var got []string
			for _, e := range entries {
				got = append(got, e.SQL)
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestAggregates(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	cfg := wall.DefaultConfig()
	cfg.MultiStatementAllowed = true
	fw := firewall.New(cfg)

	for _, sql := range []string{
		"SELECT id FROM orders WHERE id = 1 OR 1 = 1",
		"UPDATE orders SET paid = 1 WHERE id = 2; DELETE FROM carts WHERE 2 > 1",
	} {
		_, err := store.Record(ctx, fw.Check(sql))
		require.NoError(t, err)
	}

	usage, err := store.TableUsage(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]wall.TableStat{
		"orders": {Select: 1, Update: 1},
		"carts":  {Delete: 1},
	}, usage)

	counts, err := store.CodeCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[wall.Code]int{wall.CodeAlwaysTrue: 2}, counts)
}

func TestPrune(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	var ids []string
	for range 3 {
		id, err := store.Record(ctx, &firewall.Result{
			SQL:        "DELETE FROM t",
			Violations: []wall.Violation{{Code: wall.CodeDeleteNotAllowed}},
			TableStats: map[string]wall.TableStat{"t": {Delete: 1}},
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	// Entries were stamped epoch, epoch+1s and epoch+2s.
	n, err := store.Prune(ctx, epoch.Add(1500*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = store.Get(ctx, ids[0])
	require.ErrorIs(t, err, audit.ErrNotFound)
	_, err = store.Get(ctx, ids[2])
	require.NoError(t, err)

	// Child rows go with their entry.
	usage, err := store.TableUsage(ctx)
	require.NoError(t, err)
	assert.Equal(t, wall.TableStat{Delete: 1}, usage["t"])
	counts, err := store.CodeCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[wall.CodeDeleteNotAllowed])
}
