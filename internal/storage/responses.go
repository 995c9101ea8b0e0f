package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rsvphub/rsvp-api/internal/metrics"
	"github.com/rsvphub/rsvp-api/internal/models"
)

const responseColumns = "id, first_name, last_name, response, guest1, guest2, guest3, guest4, note, created_at"

// CreateResponse inserts a record without any uniqueness check. Used by the
// admin manual-create path, where input is trusted.
func (s *Store) CreateResponse(ctx context.Context, rec *models.Response) (int64, error) {
	start := time.Now()
	defer func() { metrics.RecordDBOperation("create_response", time.Since(start)) }()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO responses (first_name, last_name, response, guest1, guest2, guest3, guest4, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.FirstName, rec.LastName, rec.Response,
		rec.Guest1, rec.Guest2, rec.Guest3, rec.Guest4, rec.Note,
		formatTime(rec.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert failed: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}

	rec.ID = id
	return id, nil
}

// SubmitResponse performs the duplicate-guarded public insert. The
// case-insensitive name check and the insert run inside one transaction so
// concurrent identical submissions cannot both pass the check.
func (s *Store) SubmitResponse(ctx context.Context, rec *models.Response) (int64, error) {
	start := time.Now()
	defer func() { metrics.RecordDBOperation("submit_response", time.Since(start)) }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM responses WHERE lower(first_name) = lower(?) AND lower(last_name) = lower(?)`,
		rec.FirstName, rec.LastName,
	).Scan(&existing)
	switch {
	case err == nil:
		return 0, &DuplicateError{FirstName: rec.FirstName, LastName: rec.LastName}
	case err != sql.ErrNoRows:
		return 0, fmt.Errorf("duplicate check failed: %w", err)
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO responses (first_name, last_name, response, guest1, guest2, guest3, guest4, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.FirstName, rec.LastName, rec.Response,
		rec.Guest1, rec.Guest2, rec.Guest3, rec.Guest4, rec.Note,
		formatTime(rec.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert failed: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}

	rec.ID = id
	return id, nil
}

// ListResponses returns all records, newest first. No pagination: the whole
// guest list of a single event is small.
func (s *Store) ListResponses(ctx context.Context) ([]models.Response, error) {
	start := time.Now()
	defer func() { metrics.RecordDBOperation("list_responses", time.Since(start)) }()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+responseColumns+` FROM responses ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list query failed: %w", err)
	}
	defer rows.Close()

	responses := make([]models.Response, 0)
	for rows.Next() {
		rec, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scan failed: %w", err)
	}

	return responses, nil
}

// GetResponse returns a single record by id
func (s *Store) GetResponse(ctx context.Context, id int64) (*models.Response, error) {
	start := time.Now()
	defer func() { metrics.RecordDBOperation("get_response", time.Since(start)) }()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+responseColumns+` FROM responses WHERE id = ?`, id)

	rec, err := scanResponse(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateResponse overwrites a record in full and reports the affected-row
// count. A zero count is not an error: the endpoint reports it to the caller.
func (s *Store) UpdateResponse(ctx context.Context, id int64, rec *models.Response) (int64, error) {
	start := time.Now()
	defer func() { metrics.RecordDBOperation("update_response", time.Since(start)) }()

	result, err := s.db.ExecContext(ctx,
		`UPDATE responses SET first_name = ?, last_name = ?, response = ?,
		 guest1 = ?, guest2 = ?, guest3 = ?, guest4 = ?, note = ?
		 WHERE id = ?`,
		rec.FirstName, rec.LastName, rec.Response,
		rec.Guest1, rec.Guest2, rec.Guest3, rec.Guest4, rec.Note,
		id,
	)
	if err != nil {
		return 0, fmt.Errorf("update failed: %w", err)
	}

	changes, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return changes, nil
}

// DeleteResponse removes a record. Returns ErrNotFound when no row matched.
func (s *Store) DeleteResponse(ctx context.Context, id int64) error {
	start := time.Now()
	defer func() { metrics.RecordDBOperation("delete_response", time.Since(start)) }()

	result, err := s.db.ExecContext(ctx, `DELETE FROM responses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats aggregates record counts per response category and companion slots
// for attending parties. Computed fresh on every call: the dashboard polls
// and must see concurrent edits.
func (s *Store) Stats(ctx context.Context) (*models.Stats, error) {
	start := time.Now()
	defer func() { metrics.RecordDBOperation("stats", time.Since(start)) }()

	rows, err := s.db.QueryContext(ctx,
		`SELECT response, COUNT(*),
		        SUM((guest1 IS NOT NULL) + (guest2 IS NOT NULL) + (guest3 IS NOT NULL) + (guest4 IS NOT NULL))
		 FROM responses GROUP BY response`)
	if err != nil {
		return nil, fmt.Errorf("stats query failed: %w", err)
	}
	defer rows.Close()

	stats := &models.Stats{}
	for rows.Next() {
		var category string
		var count, guests int
		if err := rows.Scan(&category, &count, &guests); err != nil {
			return nil, fmt.Errorf("stats scan failed: %w", err)
		}

		switch category {
		case models.ResponseYes:
			stats.Yes = count
			stats.Guests = guests
		case models.ResponseNo:
			stats.No = count
		case models.ResponseMaybe:
			stats.Maybe = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stats scan failed: %w", err)
	}

	stats.TotalAttending = stats.Yes + stats.Guests
	return stats, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanResponse
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanResponse(row scanner) (*models.Response, error) {
	var rec models.Response
	var guest1, guest2, guest3, guest4, note sql.NullString
	var createdAt string

	err := row.Scan(&rec.ID, &rec.FirstName, &rec.LastName, &rec.Response,
		&guest1, &guest2, &guest3, &guest4, &note, &createdAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("response scan failed: %w", err)
	}

	rec.Guest1 = nullableString(guest1)
	rec.Guest2 = nullableString(guest2)
	rec.Guest3 = nullableString(guest3)
	rec.Guest4 = nullableString(guest4)
	rec.Note = nullableString(note)

	rec.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
