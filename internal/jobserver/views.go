package jobserver

import (
	"time"

	"github.com/anatolykoptev/go_tuneit/internal/engine/jobs"
	"github.com/anatolykoptev/go_tuneit/internal/salary"
)

// JobView is the tool output shape of a saved job. Timestamps are RFC 3339
// strings.
type JobView struct {
	ID             string          `json:"id"`
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
	CreatedAt      string          `json:"created_at"`
	UpdatedAt      string          `json:"updated_at"`
}

// JobListView is the output of job_list.
type JobListView struct {
	Jobs  []JobView `json:"jobs"`
	Total int       `json:"total"`
}

func jobView(j *jobs.UserJob) JobView {
	return JobView{
		ID:             j.ID,
		CompanyName:    j.CompanyName,
		JobTitle:       j.JobTitle,
		JobDescription: j.JobDescription,
		Salary:         j.Salary,
		SalaryLabel:    j.SalaryLabel,
		HourlyRate:     j.HourlyRate,
		Location:       j.Location,
		LocationType:   j.LocationType,
		ApplyURL:       j.ApplyURL,
		PortalURL:      j.PortalURL,
		TailoredResume: j.TailoredResume,
		CreatedAt:      j.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      j.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func jobViewPtr(j *jobs.UserJob) *JobView {
	v := jobView(j)
	return &v
}

func jobListView(res *jobs.JobListResult) *JobListView {
	out := &JobListView{Jobs: make([]JobView, 0, len(res.Jobs)), Total: res.Total}
	for i := range res.Jobs {
		out.Jobs = append(out.Jobs, jobView(&res.Jobs[i]))
	}
	return out
}
