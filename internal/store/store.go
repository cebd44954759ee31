// Package store keeps a local SQLite history of serialized reports.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ReportRecord represents a stored report row.
type ReportRecord struct {
	ID             int64
	Name           string
	Hostname       string
	SystemUUID     string
	SystemSerial   string
	Format         string
	Digest         string
	UnknownClasses []string
	CollectedAt    time.Time
	StoredAt       time.Time
	Data           []byte
}

// ListFilter holds optional query parameters for listing reports.
type ListFilter struct {
	Hostname        string
	SystemUUID      string
	CollectedAfter  *time.Time
	CollectedBefore *time.Time
	PageSize        int
	Page            int
}

// Store provides CRUD operations for report records.
type Store struct {
	db *sql.DB
}

// New opens the SQLite database at path and runs migrations.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// timeLayout is fixed-width so that stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const columns = `id, name, hostname, system_uuid, system_serial, format, digest, unknown_classes, collected_at, stored_at`

// Insert stores a report record and returns the new ID and stored_at time.
func (s *Store) Insert(ctx context.Context, rec *ReportRecord) (int64, time.Time, error) {
	storedAt := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (name, hostname, system_uuid, system_serial, format, digest, unknown_classes, collected_at, stored_at, data)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Name,
		rec.Hostname,
		rec.SystemUUID,
		rec.SystemSerial,
		rec.Format,
		rec.Digest,
		strings.Join(rec.UnknownClasses, ","),
		rec.CollectedAt.UTC().Format(timeLayout),
		storedAt.Format(timeLayout),
		rec.Data,
	)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("insert report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("get last insert id: %w", err)
	}

	return id, storedAt, nil
}

// Get retrieves a report record, including its data, by ID.
func (s *Store) Get(ctx context.Context, id int64) (*ReportRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+columns+`, data FROM reports WHERE id = ?`, id)

	return scanRecord(row)
}

// Latest retrieves the most recent report for a machine, identified by its
// hostname and system UUID. Either may be empty.
func (s *Store) Latest(ctx context.Context, hostname, systemUUID string) (*ReportRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+columns+`, data FROM reports
		 WHERE hostname = ? AND system_uuid = ? ORDER BY collected_at DESC, id DESC LIMIT 1`, hostname, systemUUID)

	return scanRecord(row)
}

// Delete removes a report record by ID.
func (s *Store) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// List returns report summaries, without data, matching the given filter.
func (s *Store) List(ctx context.Context, f ListFilter) ([]ReportRecord, int, error) {
	where, args := buildWhere(f)

	// Count total matching rows.
	var total int
	countQuery := "SELECT COUNT(*) FROM reports" + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	// Fetch page.
	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize

	query := `SELECT ` + columns + `, X''
		FROM reports` + where + ` ORDER BY collected_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, pageSize, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var records []ReportRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		rec.Data = nil
		records = append(records, *rec)
	}

	return records, total, rows.Err()
}

// Purge deletes report records collected more than olderThan ago.
func (s *Store) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format(timeLayout)
	result, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE collected_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge reports: %w", err)
	}
	return result.RowsAffected()
}

func buildWhere(f ListFilter) (string, []any) {
	var conditions []string
	var args []any

	if f.Hostname != "" {
		conditions = append(conditions, "hostname = ?")
		args = append(args, f.Hostname)
	}
	if f.SystemUUID != "" {
		conditions = append(conditions, "system_uuid = ?")
		args = append(args, f.SystemUUID)
	}
	if f.CollectedAfter != nil {
		conditions = append(conditions, "collected_at >= ?")
		args = append(args, f.CollectedAfter.UTC().Format(timeLayout))
	}
	if f.CollectedBefore != nil {
		conditions = append(conditions, "collected_at <= ?")
		args = append(args, f.CollectedBefore.UTC().Format(timeLayout))
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*ReportRecord, error) {
	var rec ReportRecord
	var unknown, collectedAt, storedAt string
	err := row.Scan(&rec.ID, &rec.Name, &rec.Hostname, &rec.SystemUUID, &rec.SystemSerial, &rec.Format,
		&rec.Digest, &unknown, &collectedAt, &storedAt, &rec.Data)
	if err != nil {
		return nil, err
	}

	if unknown != "" {
		rec.UnknownClasses = strings.Split(unknown, ",")
	}
	rec.CollectedAt, _ = time.Parse(timeLayout, collectedAt)
	rec.StoredAt, _ = time.Parse(timeLayout, storedAt)

	return &rec, nil
}
