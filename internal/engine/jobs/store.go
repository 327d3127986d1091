package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/anatolykoptev/go_tuneit/internal/salary"
)

var (
	// ErrNotFound is returned when a job does not exist for the user.
	ErrNotFound = errors.New("job not found")
	// ErrMissingUser is returned when no user id is given and no default is configured.
	ErrMissingUser = errors.New("user id is required")
	// ErrNoStore is returned when no job store has been configured.
	ErrNoStore = errors.New("job store is not configured")
)

// UserJob is a saved job description with its salary details and the
// resume tailored to it.
type UserJob struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	CompanyName    string          `json:"company_name"`
	JobTitle       string          `json:"job_title"`
	JobDescription string          `json:"job_description"`
	Salary         *salary.Details `json:"salary,omitempty"`
	SalaryLabel    string          `json:"salary_label"`
	HourlyRate     *float64        `json:"hourly_rate,omitempty"`
	Location       string          `json:"location,omitempty"`
	LocationType   string          `json:"location_type,omitempty"`
	ApplyURL       string          `json:"job_apply_url,omitempty"`
	PortalURL      string          `json:"job_portal_url,omitempty"`
	TailoredResume string          `json:"tailored_resume,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// setSalary stores d and refreshes the derived fields.
func (j *UserJob) setSalary(d *salary.Details) {
	j.Salary = d
	j.HourlyRate = d.Columns().HourlyRate
	j.SalaryLabel = salary.Label(d)
}

// loadSalaryColumns rebuilds the salary from stored columns.
func (j *UserJob) loadSalaryColumns(c salary.Columns) {
	j.setSalary(salary.FromColumns(c))
	if j.HourlyRate == nil {
		j.HourlyRate = c.HourlyRate
	}
}

// Store persists base resumes and saved jobs. Every call is scoped to one
// user id.
type Store interface {
	GetBaseResume(ctx context.Context, userID string) (string, error)
	SaveBaseResume(ctx context.Context, userID, resume string) error

	// InsertJob assigns ID and timestamps to j before writing it.
	InsertJob(ctx context.Context, j *UserJob) error
	GetJob(ctx context.Context, userID, id string) (*UserJob, error)
	// ListJobs returns jobs newest first. limit <= 0 means no limit.
	ListJobs(ctx context.Context, userID string, limit int) ([]UserJob, error)
	// UpdateJob rewrites every mutable column and refreshes UpdatedAt.
	UpdateJob(ctx context.Context, j *UserJob) error
	DeleteJob(ctx context.Context, userID, id string) error

	Close() error
}

// Package-level store, set from main.go.
var store Store

// SetStore sets the package-level job store.
func SetStore(s Store) { store = s }
