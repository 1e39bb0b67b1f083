package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mediaconv/internal/models"
)

const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 200
)

// Recorder appends and lists conversion log entries.
type Recorder struct {
	db *sql.DB
}

func NewRecorder(db *sql.DB) (*Recorder, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	return &Recorder{db: db}, nil
}

// Record inserts rec and fills its ID. A zero CreatedAt is set to now.
func (r *Recorder) Record(ctx context.Context, rec *models.ConversionRecord) error {
	if rec == nil {
		return errors.New("record cannot be nil")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO conversions (request_id, mode, file_name, size, summarize, status, error_code, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RequestID, rec.Mode, rec.FileName, rec.Size, rec.Summarize,
		rec.Status, rec.ErrorCode, rec.DurationMS, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert conversion: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("conversion id: %w", err)
	}
	rec.ID = id
	return nil
}

// Recent lists up to limit records, newest first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]*models.ConversionRecord, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, request_id, mode, file_name, size, summarize, status, error_code, duration_ms, created_at
		FROM conversions
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query conversions: %w", err)
	}
	defer rows.Close()

	records := make([]*models.ConversionRecord, 0, limit)
	for rows.Next() {
		var rec models.ConversionRecord
		if err := rows.Scan(&rec.ID, &rec.RequestID, &rec.Mode, &rec.FileName, &rec.Size,
			&rec.Summarize, &rec.Status, &rec.ErrorCode, &rec.DurationMS, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}
