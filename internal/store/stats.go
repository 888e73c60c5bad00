package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/rcliao/clipstack/internal/model"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string      `json:"db_path"`
	DBSizeBytes int64       `json:"db_size_bytes"`
	Entries     int         `json:"entries"`
	NextID      int64       `json:"next_id"`
	BlobBytes   int64       `json:"blob_bytes"`
	Thumbnails  int         `json:"thumbnails"`
	Kinds       []KindStats `json:"kinds"`

	// Filled in from the blob directory, not the database.
	DiskBytes    int64    `json:"blob_disk_bytes"`
	MissingBlobs []uint64 `json:"missing_blobs,omitempty"`
}

// KindStats holds per-mime counts. Plain text has an empty mime.
type KindStats struct {
	Mime  string `json:"mime"`
	Count int    `json:"count"`
	Bytes int64  `json:"bytes"`
}

// Stats returns database statistics for the last saved aggregate.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{DBPath: s.path}

	// DB file size
	if info, err := os.Stat(s.path); err == nil {
		st.DBSizeBytes = info.Size()
	}

	var next sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'next_id'`).Scan(&next)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return st, fmt.Errorf("read next id: %w: %w", model.ErrSerialization, err)
	}
	st.NextID = 1
	if next.Valid {
		st.NextID = next.Int64
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(size), 0), COALESCE(SUM(preview_kind = 'thumb'), 0) FROM entries`).
		Scan(&st.Entries, &st.BlobBytes, &st.Thumbnails)
	if err != nil {
		return st, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(mime, ''), COUNT(*) AS cnt, SUM(size)
		FROM entries
		GROUP BY COALESCE(mime, '') ORDER BY cnt DESC`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var k KindStats
		if err := rows.Scan(&k.Mime, &k.Count, &k.Bytes); err != nil {
			return st, err
		}
		st.Kinds = append(st.Kinds, k)
	}

	return st, rows.Err()
}
