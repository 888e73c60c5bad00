package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rcliao/clipstack/internal/model"
)

const schemaVersion = 1

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create db dir: %w: %w", model.ErrIO, err)
	}

	// rollback journal keeps the aggregate in one file between runs
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(delete)&_pragma=synchronous(full)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w: %w", model.ErrIO, err)
	}

	s := &SQLiteStore{db: db, path: dbPath}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w: %w", model.ErrSerialization, err)
	}

	return s, nil
}

// Path returns the database file.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id           INTEGER PRIMARY KEY,
		position     INTEGER NOT NULL UNIQUE,
		fingerprint  INTEGER NOT NULL,
		size         INTEGER NOT NULL,
		created_at   TEXT NOT NULL,
		preview_kind TEXT NOT NULL,
		summary      TEXT NOT NULL,
		mime         TEXT,
		thumbnail    TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_entries_mime ON entries(mime);

	CREATE TABLE IF NOT EXISTS meta (
		key   TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	var version int
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = s.db.Exec(`INSERT INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion)
		return err
	}
	if err != nil {
		return err
	}
	if version != schemaVersion {
		return fmt.Errorf("unsupported schema version %d", version)
	}
	return nil
}

// Load reads the whole aggregate.
func (s *SQLiteStore) Load(ctx context.Context) (model.Snapshot, error) {
	snap := model.EmptySnapshot()

	var nextID sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'next_id'`).Scan(&nextID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return snap, fmt.Errorf("read next id: %w: %w", model.ErrSerialization, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fingerprint, size, created_at, preview_kind, summary, mime, thumbnail
		 FROM entries ORDER BY position`)
	if err != nil {
		return snap, fmt.Errorf("read entries: %w: %w", model.ErrSerialization, err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return snap, fmt.Errorf("scan entry: %w: %w", model.ErrSerialization, err)
		}
		snap.Order = append(snap.Order, e.ID)
		snap.Entries[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("read entries: %w: %w", model.ErrSerialization, err)
	}

	if nextID.Valid {
		if nextID.Int64 < 1 {
			return snap, fmt.Errorf("next id %d below 1: %w", nextID.Int64, model.ErrSerialization)
		}
		snap.NextID = uint64(nextID.Int64)
	} else if len(snap.Order) > 0 {
		return snap, fmt.Errorf("entries without next id: %w", model.ErrSerialization)
	}
	if err := validate(snap); err != nil {
		return snap, err
	}

	slog.Debug("history loaded", "path", s.path, "entries", len(snap.Order), "next_id", snap.NextID)
	return snap, nil
}

// Save replaces the persisted aggregate inside one transaction, so a crash
// leaves the previous state intact.
func (s *SQLiteStore) Save(ctx context.Context, snap model.Snapshot) error {
	if err := validate(snap); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w: %w", model.ErrIO, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("clear entries: %w: %w", model.ErrIO, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (id, position, fingerprint, size, created_at, preview_kind, summary, mime, thumbnail)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w: %w", model.ErrIO, err)
	}
	defer stmt.Close()

	for pos, id := range snap.Order {
		e := snap.Entries[id]
		_, err := stmt.ExecContext(ctx,
			int64(e.ID), pos, int64(e.Fingerprint), e.Size,
			e.CreatedAt.UTC().Format(time.RFC3339Nano),
			string(e.Preview.Kind), e.Preview.Summary,
			nullString(e.Preview.Mime), nullString(e.Preview.Thumbnail))
		if err != nil {
			return fmt.Errorf("insert entry %d: %w: %w", id, model.ErrIO, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('next_id', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, int64(snap.NextID))
	if err != nil {
		return fmt.Errorf("write next id: %w: %w", model.ErrIO, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w: %w", model.ErrIO, err)
	}
	slog.Debug("history saved", "path", s.path, "entries", len(snap.Order), "next_id", snap.NextID)
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// validate checks the aggregate invariants that do not need the file system.
func validate(snap model.Snapshot) error {
	if snap.NextID == 0 {
		return fmt.Errorf("next id is 0: %w", model.ErrSerialization)
	}
	if len(snap.Order) != len(snap.Entries) {
		return fmt.Errorf("%d ordered ids but %d entries: %w", len(snap.Order), len(snap.Entries), model.ErrSerialization)
	}
	seen := make(map[uint64]bool, len(snap.Order))
	for _, id := range snap.Order {
		if seen[id] {
			return fmt.Errorf("id %d ordered twice: %w", id, model.ErrSerialization)
		}
		seen[id] = true
		e, ok := snap.Entries[id]
		if !ok || e.ID != id {
			return fmt.Errorf("id %d has no entry: %w", id, model.ErrSerialization)
		}
		if id >= snap.NextID {
			return fmt.Errorf("id %d not below next id %d: %w", id, snap.NextID, model.ErrSerialization)
		}
		switch e.Preview.Kind {
		case model.PreviewText, model.PreviewThumb:
		default:
			return fmt.Errorf("id %d has unknown preview kind %q: %w", id, e.Preview.Kind, model.ErrSerialization)
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (model.Entry, error) {
	var e model.Entry
	var id, fingerprint int64
	var createdAt, kind string
	var mime, thumbnail sql.NullString

	err := row.Scan(&id, &fingerprint, &e.Size, &createdAt, &kind, &e.Preview.Summary, &mime, &thumbnail)
	if err != nil {
		return e, err
	}

	e.ID = uint64(id)
	e.Fingerprint = uint64(fingerprint)
	e.Preview.Kind = model.PreviewKind(kind)
	e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return e, fmt.Errorf("created_at of %d: %w", id, err)
	}
	if mime.Valid {
		e.Preview.Mime = mime.String
	}
	if thumbnail.Valid {
		e.Preview.Thumbnail = thumbnail.String
	}
	return e, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
