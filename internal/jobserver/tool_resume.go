package jobserver

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_tuneit/internal/engine"
	"github.com/anatolykoptev/go_tuneit/internal/engine/jobs"
)

// ResumeFormatInput is the input for resume_format.
type ResumeFormatInput struct {
	Content string `json:"content" jsonschema:"Raw resume notes or text"`
}

// ResumeResult carries resume Markdown.
type ResumeResult struct {
	Markdown string `json:"markdown"`
}

// UserInput names the user for per-user reads.
type UserInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"User id (default: configured user)"`
}

// BaseResumeSaveInput is the input for resume_base_save.
type BaseResumeSaveInput struct {
	UserID  string `json:"user_id,omitempty" jsonschema:"User id (default: configured user)"`
	Content string `json:"content" jsonschema:"Base resume text or Markdown"`
	Format  bool   `json:"format,omitempty" jsonschema:"Polish the content before saving even when a base resume already exists"`
}

// ResumeOptimizeInput is the input for resume_optimize. With job_id the
// stored base resume is tailored to the saved job and the result is kept
// on the job. Without it, base_resume and job_description are used as given.
type ResumeOptimizeInput struct {
	UserID string `json:"user_id,omitempty" jsonschema:"User id (default: configured user)"`
	JobID  string `json:"job_id,omitempty" jsonschema:"Saved job to tailor the stored base resume to"`

	BaseResume     string `json:"base_resume,omitempty" jsonschema:"Base resume Markdown, the only source of facts"`
	JobDescription string `json:"job_description,omitempty" jsonschema:"Target job description Markdown"`
	JobTitle       string `json:"job_title,omitempty" jsonschema:"Target job title used in the summary"`
}

// ResumeOptimizeResult is the output of resume_optimize.
type ResumeOptimizeResult struct {
	Markdown string   `json:"markdown"`
	Job      *JobView `json:"job,omitempty"`
}

// TailoredResumeSaveInput is the input for job_tailored_resume_save.
type TailoredResumeSaveInput struct {
	UserID  string `json:"user_id,omitempty" jsonschema:"User id (default: configured user)"`
	ID      string `json:"id" jsonschema:"Job id from job_list"`
	Content string `json:"content" jsonschema:"Edited tailored resume Markdown"`
}

func registerResumeFormat(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "resume_format",
		Description: "Polish raw resume notes into Markdown with headings and bullets. Uses only the facts provided; nothing is invented.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ResumeFormatInput) (*mcp.CallToolResult, *ResumeResult, error) {
		md, err := jobs.FormatBaseResume(ctx, input.Content)
		if err != nil {
			return nil, nil, err
		}
		return nil, &ResumeResult{Markdown: md}, nil
	})
}

func registerResumeBaseGet(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "resume_base_get",
		Description: "Get the user's saved base resume. Empty when none is saved yet.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input UserInput) (*mcp.CallToolResult, *jobs.BaseResumeResult, error) {
		uid, err := jobs.ResolveUserID(input.UserID)
		if err != nil {
			return nil, nil, err
		}
		resume, err := jobs.GetBaseResume(ctx, uid)
		if err != nil {
			return nil, nil, err
		}
		return nil, &jobs.BaseResumeResult{UserID: uid, BaseResume: resume}, nil
	})
}

func registerResumeBaseSave(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "resume_base_save",
		Description: "Save the user's base resume, the source of truth for tailoring. The first save is polished automatically; later saves are stored as written unless format=true.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input BaseResumeSaveInput) (*mcp.CallToolResult, *jobs.BaseResumeResult, error) {
		res, err := jobs.SaveBaseResume(ctx, input.UserID, input.Content, input.Format)
		if err != nil {
			return nil, nil, err
		}
		return nil, res, nil
	})
}

func registerResumeOptimize(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "resume_optimize",
		Description: "Tailor a resume to a job description without adding facts. Pass job_id to use the saved base resume and job and store the result on the job, or pass base_resume and job_description directly.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ResumeOptimizeInput) (*mcp.CallToolResult, *ResumeOptimizeResult, error) {
		var out *ResumeOptimizeResult
		err := engine.TrackOperation(ctx, "resume_optimize", func(ctx context.Context) error {
			if strings.TrimSpace(input.JobID) != "" {
				j, err := jobs.OptimizeJob(ctx, input.UserID, input.JobID)
				if err != nil {
					return err
				}
				out = &ResumeOptimizeResult{Markdown: j.TailoredResume, Job: jobViewPtr(j)}
				return nil
			}
			if strings.TrimSpace(input.BaseResume) == "" && strings.TrimSpace(input.JobDescription) == "" {
				return errors.New("job_id or base_resume and job_description are required")
			}
			md, err := jobs.OptimizeResume(ctx, jobs.OptimizeInput{
				BaseResume:     input.BaseResume,
				JobDescription: input.JobDescription,
				JobTitle:       input.JobTitle,
			})
			if err != nil {
				return err
			}
			out = &ResumeOptimizeResult{Markdown: md}
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
		return nil, out, nil
	})
}

func registerTailoredResumeSave(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "job_tailored_resume_save",
		Description: "Replace the tailored resume stored on a saved job, e.g. after manual edits.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input TailoredResumeSaveInput) (*mcp.CallToolResult, *JobView, error) {
		j, err := jobs.SaveTailoredResume(ctx, input.UserID, input.ID, input.Content)
		if err != nil {
			return nil, nil, err
		}
		return nil, jobViewPtr(j), nil
	})
}
