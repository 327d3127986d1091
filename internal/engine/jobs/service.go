package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_tuneit/internal/engine"
	"github.com/anatolykoptev/go_tuneit/internal/salary"
)

// SaveJobInput is the input for job_save.
type SaveJobInput struct {
	UserID         string `json:"user_id,omitempty" jsonschema:"Owner of the job (default: configured user)"`
	JobDescription string `json:"job_description" jsonschema:"Raw job posting text, Markdown or HTML"`
	ApplyURL       string `json:"job_apply_url,omitempty" jsonschema:"Link to the application form"`
	PortalURL      string `json:"job_portal_url,omitempty" jsonschema:"Link to the job portal listing"`
	Location       string `json:"location,omitempty"`
	LocationType   string `json:"location_type,omitempty" jsonschema:"remote, hybrid or onsite"`
}

// UpdateJobInput is the input for job_update. Nil link fields are left
// unchanged; an empty string clears the link.
type UpdateJobInput struct {
	UserID         string  `json:"user_id,omitempty" jsonschema:"Owner of the job (default: configured user)"`
	ID             string  `json:"id" jsonschema:"Job id from job_list"`
	JobDescription string  `json:"job_description,omitempty" jsonschema:"Edited job description Markdown"`
	ApplyURL       *string `json:"job_apply_url,omitempty" jsonschema:"New apply link, empty to clear"`
	PortalURL      *string `json:"job_portal_url,omitempty" jsonschema:"New portal link, empty to clear"`
}

// JobListResult is the output for job_list.
type JobListResult struct {
	Jobs  []UserJob `json:"jobs"`
	Total int       `json:"total"`
}

// BaseResumeResult is the output of SaveBaseResume.
type BaseResumeResult struct {
	UserID     string `json:"user_id"`
	BaseResume string `json:"base_resume"`
	Formatted  bool   `json:"formatted"`
	Message    string `json:"message"`
}

var (
	errEmptyJob            = errors.New("Paste a job description before saving.")
	errEmptyResumeSave     = errors.New("Add resume content before saving.")
	errMissingJobID        = errors.New("Missing job reference for tailored resume.")
	errNothingToOptimize   = errors.New("This job does not have content to optimize yet.")
	errNothingToUpdate     = errors.New("Update the description or a link before saving.")
	errMissingBaseOptimize = errors.New("Add your base resume above before optimizing.")
)

// ResolveUserID returns userID, or the configured default when it is blank.
func ResolveUserID(userID string) (string, error) {
	if id := strings.TrimSpace(userID); id != "" {
		return id, nil
	}
	if engine.Cfg.DefaultUserID != "" {
		return engine.Cfg.DefaultUserID, nil
	}
	return "", ErrMissingUser
}

// scope resolves the user and the configured store for a flow.
func scope(op, userID string) (Store, string, error) {
	uid, err := ResolveUserID(userID)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if store == nil {
		return nil, "", fmt.Errorf("%s: %w", op, ErrNoStore)
	}
	return store, uid, nil
}

// SaveJob formats a posting, derives company and title from its heading
// and stores it with the extracted salary.
func SaveJob(ctx context.Context, in SaveJobInput) (*UserJob, error) {
	if strings.TrimSpace(in.JobDescription) == "" {
		return nil, errEmptyJob
	}
	s, uid, err := scope("job_save", in.UserID)
	if err != nil {
		return nil, err
	}

	apply, err := NormalizeOptionalURL(in.ApplyURL, "Job apply URL")
	if err != nil {
		return nil, err
	}
	portal, err := NormalizeOptionalURL(in.PortalURL, "Job portal URL")
	if err != nil {
		return nil, err
	}

	formatted, err := FormatJobDescription(ctx, in.JobDescription)
	if err != nil {
		return nil, err
	}

	company, title := DeriveCompanyAndTitle(formatted.Markdown)
	j := &UserJob{
		UserID:         uid,
		CompanyName:    company,
		JobTitle:       title,
		JobDescription: formatted.Markdown,
		Location:       strings.TrimSpace(in.Location),
		LocationType:   strings.TrimSpace(in.LocationType),
		ApplyURL:       apply,
		PortalURL:      portal,
	}
	j.setSalary(formatted.Salary)

	if err := s.InsertJob(ctx, j); err != nil {
		return nil, fmt.Errorf("job_save: %w", err)
	}
	engine.PublishJobEvent(ctx, engine.EventJobCreated, uid, j.ID)
	return j, nil
}

// GetJob loads one job.
func GetJob(ctx context.Context, userID, id string) (*UserJob, error) {
	s, uid, err := scope("job_get", userID)
	if err != nil {
		return nil, err
	}
	j, err := s.GetJob(ctx, uid, id)
	if err != nil {
		return nil, fmt.Errorf("job_get: %w", err)
	}
	return j, nil
}

// ListJobs returns the user's jobs, newest first.
func ListJobs(ctx context.Context, userID string, limit int) (*JobListResult, error) {
	return SearchJobs(ctx, userID, "", limit)
}

// SearchJobs lists jobs whose title, company, description, tailored resume
// or salary label contain term, ignoring case. A blank term matches every
// job.
func SearchJobs(ctx context.Context, userID, term string, limit int) (*JobListResult, error) {
	s, uid, err := scope("job_list", userID)
	if err != nil {
		return nil, err
	}
	all, err := s.ListJobs(ctx, uid, 0)
	if err != nil {
		return nil, fmt.Errorf("job_list: %w", err)
	}

	term = strings.ToLower(strings.TrimSpace(term))
	matched := make([]UserJob, 0, len(all))
	for _, j := range all {
		if term == "" || jobMatches(&j, term) {
			matched = append(matched, j)
		}
	}

	total := len(matched)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return &JobListResult{Jobs: matched, Total: total}, nil
}

func jobMatches(j *UserJob, term string) bool {
	fields := []string{
		JobTitle(j.JobDescription),
		j.CompanyName,
		j.JobTitle,
		j.JobDescription,
		j.TailoredResume,
	}
	if label := salary.Label(j.Salary); label != salary.NotProvided {
		fields = append(fields, label)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// UpdateJob applies an edited description and/or new links. A new
// description re-derives company and title but keeps the stored salary.
func UpdateJob(ctx context.Context, in UpdateJobInput) (*UserJob, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, errors.New("id is required")
	}
	description := strings.TrimSpace(in.JobDescription)
	if description == "" && in.ApplyURL == nil && in.PortalURL == nil {
		return nil, errNothingToUpdate
	}
	s, uid, err := scope("job_update", in.UserID)
	if err != nil {
		return nil, err
	}

	j, err := s.GetJob(ctx, uid, in.ID)
	if err != nil {
		return nil, fmt.Errorf("job_update: %w", err)
	}

	if in.ApplyURL != nil {
		if j.ApplyURL, err = NormalizeOptionalURL(*in.ApplyURL, "Apply URL"); err != nil {
			return nil, err
		}
	}
	if in.PortalURL != nil {
		if j.PortalURL, err = NormalizeOptionalURL(*in.PortalURL, "Portal URL"); err != nil {
			return nil, err
		}
	}
	if description != "" {
		j.JobDescription = description
		j.CompanyName, j.JobTitle = DeriveCompanyAndTitle(description)
	}

	if err := s.UpdateJob(ctx, j); err != nil {
		return nil, fmt.Errorf("job_update: %w", err)
	}
	engine.PublishJobEvent(ctx, engine.EventJobUpdated, uid, j.ID)
	return j, nil
}

// DeleteJob removes a job.
func DeleteJob(ctx context.Context, userID, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("id is required")
	}
	s, uid, err := scope("job_delete", userID)
	if err != nil {
		return err
	}
	if err := s.DeleteJob(ctx, uid, id); err != nil {
		return fmt.Errorf("job_delete: %w", err)
	}
	engine.PublishJobEvent(ctx, engine.EventJobDeleted, uid, id)
	return nil
}

// GetBaseResume returns the user's base resume, "" when none is saved.
func GetBaseResume(ctx context.Context, userID string) (string, error) {
	s, uid, err := scope("resume_base_get", userID)
	if err != nil {
		return "", err
	}
	resume, err := s.GetBaseResume(ctx, uid)
	if err != nil {
		return "", fmt.Errorf("resume_base_get: %w", err)
	}
	return resume, nil
}

// SaveBaseResume stores the user's base resume. The content is formatted
// first when force is set or when the user has no resume yet.
func SaveBaseResume(ctx context.Context, userID, content string, force bool) (*BaseResumeResult, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, errEmptyResumeSave
	}
	s, uid, err := scope("resume_base_save", userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.GetBaseResume(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("resume_base_save: %w", err)
	}

	next := trimmed
	format := force || strings.TrimSpace(existing) == ""
	if format {
		if next, err = FormatBaseResume(ctx, trimmed); err != nil {
			return nil, err
		}
		next = strings.TrimSpace(next)
	}

	if err := s.SaveBaseResume(ctx, uid, next); err != nil {
		return nil, fmt.Errorf("resume_base_save: %w", err)
	}
	engine.PublishJobEvent(ctx, engine.EventBaseResumeSaved, uid, "")

	msg := "Base resume updated."
	if format {
		msg = "Base resume formatted and saved."
	}
	return &BaseResumeResult{UserID: uid, BaseResume: next, Formatted: format, Message: msg}, nil
}

// OptimizeJob tailors the user's base resume to a saved job and stores
// the result on the job.
func OptimizeJob(ctx context.Context, userID, id string) (*UserJob, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errMissingJobID
	}
	s, uid, err := scope("resume_optimize", userID)
	if err != nil {
		return nil, err
	}

	base, err := s.GetBaseResume(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("resume_optimize: %w", err)
	}
	if strings.TrimSpace(base) == "" {
		return nil, errMissingBaseOptimize
	}
	j, err := s.GetJob(ctx, uid, id)
	if err != nil {
		return nil, fmt.Errorf("resume_optimize: %w", err)
	}
	if strings.TrimSpace(j.JobDescription) == "" {
		return nil, errNothingToOptimize
	}

	tailored, err := OptimizeResume(ctx, OptimizeInput{
		BaseResume:     base,
		JobDescription: j.JobDescription,
		JobTitle:       JobTitle(j.JobDescription),
	})
	if err != nil {
		return nil, err
	}

	j.TailoredResume = strings.TrimSpace(tailored)
	if err := s.UpdateJob(ctx, j); err != nil {
		return nil, fmt.Errorf("resume_optimize: %w", err)
	}
	engine.PublishJobEvent(ctx, engine.EventResumeOptimized, uid, j.ID)
	return j, nil
}

// SaveTailoredResume replaces the tailored resume stored on a job.
func SaveTailoredResume(ctx context.Context, userID, id, content string) (*UserJob, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errMissingJobID
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, errEmptyResumeSave
	}
	s, uid, err := scope("job_tailored_resume_save", userID)
	if err != nil {
		return nil, err
	}

	j, err := s.GetJob(ctx, uid, id)
	if err != nil {
		return nil, fmt.Errorf("job_tailored_resume_save: %w", err)
	}
	j.TailoredResume = trimmed
	if err := s.UpdateJob(ctx, j); err != nil {
		return nil, fmt.Errorf("job_tailored_resume_save: %w", err)
	}
	engine.PublishJobEvent(ctx, engine.EventJobUpdated, uid, j.ID)
	return j, nil
}
