// Package sqlite stores observation records in a single SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/abhishektayde15/argo-chatbot-rag/internal/domain"
	"github.com/abhishektayde15/argo-chatbot-rag/internal/recordstore/sqlite/migrations"
)

var _ domain.RecordStore = (*Store)(nil)

// Store is the append-only observation table. It does not enforce any key
// uniqueness: ingesting the same file twice stores every row twice.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database file at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, domain.Wrap("open record store", domain.ErrStorageUnavailable, fmt.Errorf("database path cannot be empty"))
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, domain.Wrap("open record store", domain.ErrStorageUnavailable, fmt.Errorf("creating data directory: %w", err))
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, domain.Wrap("open record store", domain.ErrStorageUnavailable, fmt.Errorf("opening database: %w", err))
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, domain.Wrap("open record store", domain.ErrStorageUnavailable, fmt.Errorf("running migrations: %w", err))
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// Append inserts records in one transaction and returns the number inserted.
func (s *Store) Append(ctx context.Context, records []domain.ObservationRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, domain.Wrap("append records", domain.ErrStorageUnavailable, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO argo_profiles (float_id, profile_number, time, lat, lon, depth, temperature, salinity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, domain.Wrap("append records", domain.ErrStorageUnavailable, fmt.Errorf("preparing insert: %w", err))
	}
	defer stmt.Close()

	for i, r := range records {
		_, err := stmt.ExecContext(ctx, r.FloatID, r.ProfileNumber, domain.FormatRecordTime(r.Time),
			nullFloat(r.Lat), nullFloat(r.Lon), r.Depth, r.Temperature, r.Salinity)
		if err != nil {
			return 0, domain.Wrap("append records", domain.ErrStorageUnavailable, fmt.Errorf("inserting record %d: %w", i, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, domain.Wrap("append records", domain.ErrStorageUnavailable, fmt.Errorf("committing: %w", err))
	}
	return len(records), nil
}

// CountAll returns the number of stored rows.
func (s *Store) CountAll(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM argo_profiles").Scan(&n); err != nil {
		return 0, domain.Wrap("count records", domain.ErrStorageUnavailable, err)
	}
	return n, nil
}

// Page returns up to limit rows starting at offset, in insertion order.
func (s *Store) Page(ctx context.Context, offset, limit int) ([]domain.ObservationRecord, error) {
	if offset < 0 || limit <= 0 {
		return nil, fmt.Errorf("invalid page offset=%d limit=%d", offset, limit)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT float_id, profile_number, time, lat, lon, depth, temperature, salinity
		FROM argo_profiles ORDER BY rowid LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, domain.Wrap("page records", domain.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	out := make([]domain.ObservationRecord, 0, limit)
	for rows.Next() {
		var (
			r        domain.ObservationRecord
			ts       string
			lat, lon sql.NullFloat64
		)
		if err := rows.Scan(&r.FloatID, &r.ProfileNumber, &ts, &lat, &lon, &r.Depth, &r.Temperature, &r.Salinity); err != nil {
			return nil, domain.Wrap("page records", domain.ErrStorageUnavailable, fmt.Errorf("scanning row: %w", err))
		}
		if r.Time, err = domain.ParseRecordTime(ts); err != nil {
			return nil, domain.Wrap("page records", domain.ErrStorageUnavailable, err)
		}
		r.Lat, r.Lon = floatOrNaN(lat), floatOrNaN(lon)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Wrap("page records", domain.ErrStorageUnavailable, err)
	}
	return out, nil
}

// Truncate deletes every row. Callers truncate before re-ingesting a file.
func (s *Store) Truncate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM argo_profiles"); err != nil {
		return domain.Wrap("truncate records", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// Overview aggregates counts and ranges over the whole table.
func (s *Store) Overview(ctx context.Context) (domain.StoreOverview, error) {
	var (
		ov                 domain.StoreOverview
		first, last        sql.NullString
		minDepth, maxDepth sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(DISTINCT float_id),
		       COUNT(DISTINCT float_id || ':' || profile_number),
		       MIN(NULLIF(time, '')), MAX(NULLIF(time, '')), MIN(depth), MAX(depth)
		FROM argo_profiles
	`).Scan(&ov.Rows, &ov.Floats, &ov.Profiles, &first, &last, &minDepth, &maxDepth)
	if err != nil {
		return domain.StoreOverview{}, domain.Wrap("overview", domain.ErrStorageUnavailable, err)
	}
	if first.Valid {
		if ov.First, err = domain.ParseRecordTime(first.String); err != nil {
			return domain.StoreOverview{}, domain.Wrap("overview", domain.ErrStorageUnavailable, err)
		}
	}
	if last.Valid {
		if ov.Last, err = domain.ParseRecordTime(last.String); err != nil {
			return domain.StoreOverview{}, domain.Wrap("overview", domain.ErrStorageUnavailable, err)
		}
	}
	ov.MinDepth, ov.MaxDepth = minDepth.Float64, maxDepth.Float64
	return ov, nil
}

// SQLite stores NaN as NULL; keep that explicit.
func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
