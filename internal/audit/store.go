// Package audit keeps a SQLite log of firewall decisions: every checked text
// with its violations and per-table usage counts.
package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/leapstack-labs/sqlwall/pkg/firewall"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("audit record not found")

// Entry is one stored firewall decision.
type Entry struct {
	ID        string    `json:"id"`
	CheckedAt time.Time `json:"checked_at"`
	firewall.Result
}

// Filter narrows List.
type Filter struct {
	// Code keeps entries with at least one violation of this code.
	Code wall.Code
	// DeniedOnly keeps entries with violations.
	DeniedOnly bool
	// Limit caps the number of entries; zero means 100.
	Limit int
}

// Store is the SQLite audit log.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Option is a functional option for configuring a Store.
type Option func(*Store)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the time source used for CheckedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens the database at path and applies pending migrations.
// Use ":memory:" for an in-memory database.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	s := &Store{
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	dsn := ":memory:?_pragma=foreign_keys(1)&_time_format=sqlite"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create audit directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s.db = db
	s.logger.Debug("audit store opened", slog.String("path", path))
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores res and returns the new entry ID.
func (s *Store) Record(ctx context.Context, res *firewall.Result) (string, error) {
	id := uuid.New().String()
	checkedAt := s.now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var rewritten *string
	if res.RewrittenSQL != "" {
		rewritten = &res.RewrittenSQL
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO checks (id, checked_at, sql_text, rewritten_sql, statements, allowed, modified, warnings)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, checkedAt, res.SQL, rewritten, res.Statements, res.Allowed(), res.Modified, res.Warnings,
	); err != nil {
		return "", fmt.Errorf("failed to insert check: %w", err)
	}

	for i, v := range res.Violations {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO violations (check_id, seq, code, message, evidence) VALUES (?, ?, ?, ?, ?)`,
			id, i, string(v.Code), v.Message, v.Evidence,
		); err != nil {
			return "", fmt.Errorf("failed to insert violation: %w", err)
		}
	}

	for name, st := range res.TableStats {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO table_stats (check_id, table_name, select_count, insert_count, update_count, delete_count, show_count)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, name, st.Select, st.Insert, st.Update, st.Delete, st.Show,
		); err != nil {
			return "", fmt.Errorf("failed to insert table stats: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.logger.Debug("check recorded", slog.String("id", id), slog.Int("violations", len(res.Violations)))
	return id, nil
}

// Get retrieves an entry by ID.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	e := &Entry{}
	var rewritten sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, checked_at, sql_text, rewritten_sql, statements, modified, warnings FROM checks WHERE id = ?`,
		id,
	).Scan(&e.ID, &e.CheckedAt, &e.SQL, &rewritten, &e.Statements, &e.Modified, &e.Warnings)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get check: %w", err)
	}
	e.RewrittenSQL = rewritten.String

	if err := s.loadDetails(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// List returns the most recent entries matching f, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]*Entry, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	var where []string
	var args []any
	if f.DeniedOnly {
		where = append(where, "allowed = 0")
	}
	if f.Code != "" {
		where = append(where, "EXISTS (SELECT 1 FROM violations v WHERE v.check_id = checks.id AND v.code = ?)")
		args = append(args, string(f.Code))
	}
	query := `SELECT id, checked_at, sql_text, rewritten_sql, statements, modified, warnings FROM checks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY checked_at DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list checks: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e := &Entry{}
		var rewritten sql.NullString
		if err := rows.Scan(&e.ID, &e.CheckedAt, &e.SQL, &rewritten, &e.Statements, &e.Modified, &e.Warnings); err != nil {
			return nil, fmt.Errorf("failed to scan check: %w", err)
		}
		e.RewrittenSQL = rewritten.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Details are loaded after the cursor is closed: an in-memory store has
	// a single connection.
	rows.Close()

	for _, e := range entries {
		if err := s.loadDetails(ctx, e); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (s *Store) loadDetails(ctx context.Context, e *Entry) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, message, evidence FROM violations WHERE check_id = ? ORDER BY seq`, e.ID)
	if err != nil {
		return fmt.Errorf("failed to get violations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var v wall.Violation
		var code string
		if err := rows.Scan(&code, &v.Message, &v.Evidence); err != nil {
			return fmt.Errorf("failed to scan violation: %w", err)
		}
		v.Code = wall.Code(code)
		e.Violations = append(e.Violations, v)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	stats, err := s.tableStats(ctx, `WHERE check_id = ?`, e.ID)
	if err != nil {
		return err
	}
	e.TableStats = stats
	return nil
}

// TableUsage sums the per-table counters over all entries.
func (s *Store) TableUsage(ctx context.Context) (map[string]wall.TableStat, error) {
	return s.tableStats(ctx, "")
}

func (s *Store) tableStats(ctx context.Context, where string, args ...any) (map[string]wall.TableStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT table_name, SUM(select_count), SUM(insert_count), SUM(update_count), SUM(delete_count), SUM(show_count)
		 FROM table_stats `+where+` GROUP BY table_name`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get table stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]wall.TableStat)
	for rows.Next() {
		var name string
		var st wall.TableStat
		if err := rows.Scan(&name, &st.Select, &st.Insert, &st.Update, &st.Delete, &st.Show); err != nil {
			return nil, fmt.Errorf("failed to scan table stats: %w", err)
		}
		stats[name] = st
	}
	return stats, rows.Err()
}

// CodeCounts returns how many violations of each code were recorded.
func (s *Store) CodeCounts(ctx context.Context) (map[wall.Code]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code, COUNT(*) FROM violations GROUP BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to count violations: %w", err)
	}
	defer rows.Close()

	counts := make(map[wall.Code]int)
	for rows.Next() {
		var code string
		var n int
		if err := rows.Scan(&code, &n); err != nil {
			return nil, fmt.Errorf("failed to scan violation count: %w", err)
		}
		counts[wall.Code(code)] = n
	}
	return counts, rows.Err()
}

// Prune deletes entries checked before cutoff and returns how many were
// removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM checks WHERE checked_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune checks: %w", err)
	}
	n, _ := result.RowsAffected()
	s.logger.Info("audit log pruned", slog.Int64("removed", n))
	return n, nil
}
