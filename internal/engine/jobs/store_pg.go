package jobs

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anatolykoptev/go_tuneit/internal/salary"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// PostgresStore holds the pgx connection pool for profiles and jobs.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// ConnectPostgresStore creates a pgx pool and runs schema migrations.
func ConnectPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("job store postgres connected", slog.String("addr", config.ConnConfig.Host))
	return s, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if _, err := s.pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("execute %s: %w", entry.Name(), err)
		}
		slog.Debug("migration applied", slog.String("file", entry.Name()))
	}
	return nil
}

func (s *PostgresStore) GetBaseResume(ctx context.Context, userID string) (string, error) {
	var resume string
	err := s.pool.QueryRow(ctx, `SELECT base_resume FROM profiles WHERE user_id = $1`, userID).Scan(&resume)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get base resume: %w", err)
	}
	return resume, nil
}

func (s *PostgresStore) SaveBaseResume(ctx context.Context, userID, resume string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO profiles (user_id, base_resume, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET base_resume = EXCLUDED.base_resume, updated_at = NOW()`,
		userID, resume,
	)
	if err != nil {
		return fmt.Errorf("save base resume: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertJob(ctx context.Context, j *UserJob) error {
	j.ID = uuid.NewString()
	c := j.Salary.Columns()
	err := s.pool.QueryRow(ctx,
		`INSERT INTO user_jobs (id, user_id, company_name, job_title, job_description,
			salary_min, salary_max, salary_currency, salary_period, salary_range, hourly_rate,
			location, location_type, job_apply_url, job_portal_url, tailored_resume)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING created_at, updated_at`,
		j.ID, j.UserID, j.CompanyName, j.JobTitle, j.JobDescription,
		c.SalaryMin, c.SalaryMax, c.SalaryCurrency, c.SalaryPeriod, c.SalaryRange, c.HourlyRate,
		optText(j.Location), optText(j.LocationType), optText(j.ApplyURL), optText(j.PortalURL),
		optText(j.TailoredResume),
	).Scan(&j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

const pgJobColumns = `id, user_id, company_name, job_title, job_description,
	salary_min, salary_max, salary_currency, salary_period, salary_range, hourly_rate,
	location, location_type, job_apply_url, job_portal_url, tailored_resume, created_at, updated_at`

func (s *PostgresStore) GetJob(ctx context.Context, userID, id string) (*UserJob, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgJobColumns+` FROM user_jobs WHERE id = $1 AND user_id = $2`, id, userID)
	j, err := scanPgJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

func (s *PostgresStore) ListJobs(ctx context.Context, userID string, limit int) ([]UserJob, error) {
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgJobColumns+` FROM user_jobs WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limitArg)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	out := []UserJob{}
	for rows.Next() {
		j, err := scanPgJob(rows)
		if err != nil {
			return nil, fmt.Errorf("list jobs: scan: %w", err)
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateJob(ctx context.Context, j *UserJob) error {
	c := j.Salary.Columns()
	err := s.pool.QueryRow(ctx,
		`UPDATE user_jobs SET company_name=$3, job_title=$4, job_description=$5,
			salary_min=$6, salary_max=$7, salary_currency=$8, salary_period=$9, salary_range=$10, hourly_rate=$11,
			location=$12, location_type=$13, job_apply_url=$14, job_portal_url=$15, tailored_resume=$16,
			updated_at=NOW()
		 WHERE id=$1 AND user_id=$2
		 RETURNING updated_at`,
		j.ID, j.UserID, j.CompanyName, j.JobTitle, j.JobDescription,
		c.SalaryMin, c.SalaryMax, c.SalaryCurrency, c.SalaryPeriod, c.SalaryRange, c.HourlyRate,
		optText(j.Location), optText(j.LocationType), optText(j.ApplyURL), optText(j.PortalURL),
		optText(j.TailoredResume),
	).Scan(&j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteJob(ctx context.Context, userID, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM user_jobs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPgJob(r rowScanner) (*UserJob, error) {
	var (
		j                                     UserJob
		c                                     salary.Columns
		location, locationType, apply, portal *string
		tailored                              *string
		createdAt, updatedAt                  time.Time
	)
	if err := r.Scan(&j.ID, &j.UserID, &j.CompanyName, &j.JobTitle, &j.JobDescription,
		&c.SalaryMin, &c.SalaryMax, &c.SalaryCurrency, &c.SalaryPeriod, &c.SalaryRange, &c.HourlyRate,
		&location, &locationType, &apply, &portal, &tailored, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	j.Location = deref(location)
	j.LocationType = deref(locationType)
	j.ApplyURL = deref(apply)
	j.PortalURL = deref(portal)
	j.TailoredResume = deref(tailored)
	j.CreatedAt, j.UpdatedAt = createdAt, updatedAt
	j.loadSalaryColumns(c)
	return &j, nil
}

func optText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
