package jobserver

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_tuneit/internal/engine"
	"github.com/anatolykoptev/go_tuneit/internal/engine/jobs"
	"github.com/anatolykoptev/go_tuneit/internal/toolutil"
)

// JobFormatInput is the input for job_format.
type JobFormatInput struct {
	JobDescription string `json:"job_description" jsonschema:"Raw job posting text, Markdown or HTML"`
}

// JobFetchInput is the input for job_fetch.
type JobFetchInput struct {
	URL     string `json:"url" jsonschema:"Job posting page URL"`
	Format  bool   `json:"format,omitempty" jsonschema:"Also run job_format on the fetched posting"`
	Refresh bool   `json:"refresh,omitempty" jsonschema:"Ignore a cached copy of the page"`
}

// JobFetchResult is the output of job_fetch.
type JobFetchResult struct {
	URL       string             `json:"url"`
	Title     string             `json:"title,omitempty"`
	Markdown  string             `json:"markdown"`
	Formatted *jobs.FormattedJob `json:"formatted,omitempty"`
}

// JobListInput is the input for job_list.
type JobListInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"Owner of the jobs (default: configured user)"`
	Query  string `json:"query,omitempty" jsonschema:"Case-insensitive filter on company, title, description, tailored resume and salary label"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum jobs to return (default: all)"`
}

// JobRefInput identifies one saved job.
type JobRefInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"Owner of the job (default: configured user)"`
	ID     string `json:"id" jsonschema:"Job id from job_list"`
}

// JobDeleteResult is the output of job_delete.
type JobDeleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// cachedFetch is the cached part of a job_fetch result.
type cachedFetch struct {
	Title    string `json:"title"`
	Markdown string `json:"markdown"`
}

const maxFetchTitle = 200

func registerJobFormat(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "job_format",
		Description: "Format a raw job posting as Markdown headed '# Company: Title' with a '## Salary' section (Range/Minimum/Maximum). Returns the Markdown plus the structured salary and where it came from: marker, section, source or none.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input JobFormatInput) (*mcp.CallToolResult, *jobs.FormattedJob, error) {
		var out *jobs.FormattedJob
		err := engine.TrackOperation(ctx, "job_format", func(ctx context.Context) error {
			var err error
			out, err = jobs.FormatJobDescription(ctx, input.JobDescription)
			return err
		})
		if err != nil {
			return nil, nil, err
		}
		return nil, out, nil
	})
}

func registerJobFetch(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "job_fetch",
		Description: "Download a job posting page and convert its main content to Markdown. Set format=true to also run job_format and get the structured salary.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input JobFetchInput) (*mcp.CallToolResult, *JobFetchResult, error) {
		rawURL := strings.TrimSpace(input.URL)
		if rawURL == "" {
			return nil, nil, errors.New("url is required")
		}
		u, err := jobs.NormalizeOptionalURL(rawURL, "Job posting URL")
		if err != nil {
			return nil, nil, err
		}

		key := engine.CacheKey("job_fetch", u)
		if input.Refresh {
			engine.CacheDelete(ctx, key)
		}
		page, ok := toolutil.CacheLoadJSON[cachedFetch](ctx, key)
		if !ok {
			title, md, err := engine.FetchJobPosting(ctx, u)
			if err != nil {
				return nil, nil, err
			}
			page = cachedFetch{Title: engine.TruncateAtWord(title, maxFetchTitle), Markdown: md}
			toolutil.CacheStoreJSON(ctx, key, page)
		}

		out := &JobFetchResult{URL: u, Title: page.Title, Markdown: page.Markdown}
		if input.Format {
			if out.Formatted, err = jobs.FormatJobDescription(ctx, page.Markdown); err != nil {
				return nil, nil, err
			}
		}
		return nil, out, nil
	})
}

func registerJobSave(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "job_save",
		Description: "Format a job posting and save it to the user's dashboard. Company and title come from the formatted heading; the salary is stored as min/max/currency/period/range plus hourly_rate for hourly pay. Apply/portal links default to https.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input jobs.SaveJobInput) (*mcp.CallToolResult, *JobView, error) {
		var j *jobs.UserJob
		err := engine.TrackOperation(ctx, "job_save", func(ctx context.Context) error {
			var err error
			j, err = jobs.SaveJob(ctx, input)
			return err
		})
		if err != nil {
			return nil, nil, err
		}
		return nil, jobViewPtr(j), nil
	})
}

func registerJobList(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "job_list",
		Description: "List the user's saved jobs, newest first. Optional query filters by company, title, description, tailored resume or salary label (case-insensitive). total counts all matches before limit.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input JobListInput) (*mcp.CallToolResult, *JobListView, error) {
		if input.Limit < 0 {
			return nil, nil, errors.New("limit must not be negative")
		}
		res, err := jobs.SearchJobs(ctx, input.UserID, input.Query, input.Limit)
		if err != nil {
			return nil, nil, err
		}
		return nil, jobListView(res), nil
	})
}

func registerJobGet(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "job_get",
		Description: "Get one saved job by id, including its salary and tailored resume.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input JobRefInput) (*mcp.CallToolResult, *JobView, error) {
		if strings.TrimSpace(input.ID) == "" {
			return nil, nil, errors.New("id is required")
		}
		j, err := jobs.GetJob(ctx, input.UserID, input.ID)
		if err != nil {
			return nil, nil, err
		}
		return nil, jobViewPtr(j), nil
	})
}

func registerJobUpdate(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "job_update",
		Description: "Edit a saved job's description and/or links. A new description re-derives company and title from its first line; the stored salary is kept. Pass an empty link to clear it.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input jobs.UpdateJobInput) (*mcp.CallToolResult, *JobView, error) {
		j, err := jobs.UpdateJob(ctx, input)
		if err != nil {
			return nil, nil, err
		}
		return nil, jobViewPtr(j), nil
	})
}

func registerJobDelete(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "job_delete",
		Description: "Delete a saved job by id.",
		Annotations: &mcp.ToolAnnotations{DestructiveHint: ptr(true)},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input JobRefInput) (*mcp.CallToolResult, *JobDeleteResult, error) {
		if err := jobs.DeleteJob(ctx, input.UserID, input.ID); err != nil {
			return nil, nil, err
		}
		return nil, &JobDeleteResult{ID: input.ID, Deleted: true}, nil
	})
}

func ptr[T any](v T) *T { return &v }
