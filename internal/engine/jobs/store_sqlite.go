package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/anatolykoptev/go_tuneit/internal/salary"
)

// SQLiteStore keeps profiles and jobs in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// DefaultSQLitePath is $HOME/.go_tuneit/tuneit.db.
func DefaultSQLitePath() string {
	return filepath.Join(os.Getenv("HOME"), ".go_tuneit", "tuneit.db")
}

// OpenSQLiteStore opens (or creates) the SQLite database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = DefaultSQLitePath()
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("store: mkdir %s: %w", dir, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initSQLiteSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		user_id     TEXT PRIMARY KEY,
		base_resume TEXT NOT NULL DEFAULT '',
		updated_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_jobs (
		id              TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL,
		company_name    TEXT NOT NULL,
		job_title       TEXT NOT NULL,
		job_description TEXT NOT NULL,
		salary_min      REAL,
		salary_max      REAL,
		salary_currency TEXT,
		salary_period   TEXT,
		salary_range    TEXT,
		hourly_rate     REAL,
		location        TEXT,
		location_type   TEXT,
		job_apply_url   TEXT,
		job_portal_url  TEXT,
		tailored_resume TEXT,
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS user_jobs_user_created ON user_jobs (user_id, created_at DESC)`,
}

// initSQLiteSchema creates the profiles and user_jobs tables if they don't exist.
func initSQLiteSchema(db *sql.DB) error {
	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) GetBaseResume(ctx context.Context, userID string) (string, error) {
	var resume string
	err := s.db.QueryRowContext(ctx, `SELECT base_resume FROM profiles WHERE user_id = ?`, userID).Scan(&resume)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get base resume: %w", err)
	}
	return resume, nil
}

func (s *SQLiteStore) SaveBaseResume(ctx context.Context, userID, resume string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, base_resume, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET base_resume = excluded.base_resume, updated_at = excluded.updated_at`,
		userID, resume, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("save base resume: %w", err)
	}
	return nil
}

func (s *SQLiteStore) InsertJob(ctx context.Context, j *UserJob) error {
	now := time.Now().UTC()
	j.ID = uuid.NewString()
	j.CreatedAt, j.UpdatedAt = now, now

	c := j.Salary.Columns()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_jobs (id, user_id, company_name, job_title, job_description,
			salary_min, salary_max, salary_currency, salary_period, salary_range, hourly_rate,
			location, location_type, job_apply_url, job_portal_url, tailored_resume, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.UserID, j.CompanyName, j.JobTitle, j.JobDescription,
		c.SalaryMin, c.SalaryMax, c.SalaryCurrency, c.SalaryPeriod, c.SalaryRange, c.HourlyRate,
		nullString(j.Location), nullString(j.LocationType), nullString(j.ApplyURL), nullString(j.PortalURL),
		nullString(j.TailoredResume), formatTime(j.CreatedAt), formatTime(j.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

const sqliteJobColumns = `id, user_id, company_name, job_title, job_description,
	salary_min, salary_max, salary_currency, salary_period, salary_range, hourly_rate,
	location, location_type, job_apply_url, job_portal_url, tailored_resume, created_at, updated_at`

func (s *SQLiteStore) GetJob(ctx context.Context, userID, id string) (*UserJob, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteJobColumns+` FROM user_jobs WHERE id = ? AND user_id = ?`, id, userID)
	j, err := scanSQLiteJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

func (s *SQLiteStore) ListJobs(ctx context.Context, userID string, limit int) ([]UserJob, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteJobColumns+` FROM user_jobs WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	out := []UserJob{}
	for rows.Next() {
		j, err := scanSQLiteJob(rows)
		if err != nil {
			return nil, fmt.Errorf("list jobs: scan: %w", err)
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpdateJob(ctx context.Context, j *UserJob) error {
	j.UpdatedAt = time.Now().UTC()
	c := j.Salary.Columns()
	res, err := s.db.ExecContext(ctx,
		`UPDATE user_jobs SET company_name=?, job_title=?, job_description=?,
			salary_min=?, salary_max=?, salary_currency=?, salary_period=?, salary_range=?, hourly_rate=?,
			location=?, location_type=?, job_apply_url=?, job_portal_url=?, tailored_resume=?, updated_at=?
		 WHERE id=? AND user_id=?`,
		j.CompanyName, j.JobTitle, j.JobDescription,
		c.SalaryMin, c.SalaryMax, c.SalaryCurrency, c.SalaryPeriod, c.SalaryRange, c.HourlyRate,
		nullString(j.Location), nullString(j.LocationType), nullString(j.ApplyURL), nullString(j.PortalURL),
		nullString(j.TailoredResume), formatTime(j.UpdatedAt),
		j.ID, j.UserID,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteJob(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM user_jobs WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteJob(r rowScanner) (*UserJob, error) {
	var (
		j                                     UserJob
		lo, hi, hourly                        sql.NullFloat64
		currency, period, rng                 sql.NullString
		location, locationType, apply, portal sql.NullString
		tailored                              sql.NullString
		createdAt, updatedAt                  string
	)
	if err := r.Scan(&j.ID, &j.UserID, &j.CompanyName, &j.JobTitle, &j.JobDescription,
		&lo, &hi, &currency, &period, &rng, &hourly,
		&location, &locationType, &apply, &portal, &tailored, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	j.Location = location.String
	j.LocationType = locationType.String
	j.ApplyURL = apply.String
	j.PortalURL = portal.String
	j.TailoredResume = tailored.String
	j.CreatedAt = parseTime(createdAt)
	j.UpdatedAt = parseTime(updatedAt)
	j.loadSalaryColumns(salary.Columns{
		SalaryMin:      nullFloatPtr(lo),
		SalaryMax:      nullFloatPtr(hi),
		SalaryCurrency: nullStringPtr(currency),
		SalaryPeriod:   nullStringPtr(period),
		SalaryRange:    nullStringPtr(rng),
		HourlyRate:     nullFloatPtr(hourly),
	})
	return &j, nil
}

// sqliteTime has fixed-width fractions so stored values sort as text.
const sqliteTime = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string { return t.UTC().Format(sqliteTime) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	return &n.String
}

func nullFloatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	return &n.Float64
}
