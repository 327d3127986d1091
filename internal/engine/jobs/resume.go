package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_tuneit/internal/engine"
)

// --- Base resume formatting ---

const baseResumeSystemPrompt = `You are a resume editor. Turn raw resume notes into polished Markdown with short headings and bullet points.

Rules:
- Use only the facts provided. Never invent employers, titles, dates, skills or metrics.
- Start with a level-one heading holding the candidate's name when it is present, otherwise "Professional Profile".
- Include Summary, Experience, Skills, Education and Certifications sections only when there are details for them, keeping chronological order.
- Respond with Markdown only.`

const baseResumeUserPrompt = `Format this resume content as Markdown using the rules above. Keep every factual detail and do not embellish.

%s`

const defaultResumeHeading = "Professional Profile"

var errEmptyResume = errors.New("Add resume details before formatting.")

// FormatBaseResume polishes raw resume notes into Markdown without adding
// facts. Without an LLM, DevFallback returns the notes under a heading.
func FormatBaseResume(ctx context.Context, raw string) (string, error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(raw, "\r\n", "\n"))
	if trimmed == "" {
		return "", errEmptyResume
	}

	if !engine.LLMAvailable() {
		if !engine.Cfg.DevFallback {
			return "", fmt.Errorf("resume_format: %w", engine.ErrLLMUnavailable)
		}
		slog.Warn("resume_format: no LLM configured, returning local fallback")
		engine.IncrLLMFallbacks()
		return localBaseResumeFallback(trimmed), nil
	}

	return engine.CallLLM(ctx, engine.LLMRequest{
		Op:          "resume_format",
		System:      baseResumeSystemPrompt,
		Prompt:      fmt.Sprintf(baseResumeUserPrompt, engine.TruncateRunes(trimmed, engine.Cfg.MaxContentChars, "")),
		Temperature: 0.3,
		MaxTokens:   1200,
	})
}

func localBaseResumeFallback(text string) string {
	heading := strings.TrimSpace(strings.TrimLeft(engine.FirstLine(text), "# \t"))
	if heading == "" {
		heading = defaultResumeHeading
	}
	return "# " + heading + "\n\n" + text
}

// --- Resume optimization ---

// OptimizeInput is a tailoring request for one job.
type OptimizeInput struct {
	BaseResume     string `json:"base_resume" jsonschema:"Base resume Markdown, the only source of facts"`
	JobDescription string `json:"job_description" jsonschema:"Target job description Markdown"`
	JobTitle       string `json:"job_title,omitempty" jsonschema:"Target job title used in the summary"`
}

const optimizeSystemPrompt = `You are a career coach and a careful fact-checker. Rewrite resumes to fit a target job description using only information already in the base resume.

Rules:
- Do not create or infer employers, titles, dates, technologies, certifications, responsibilities or metrics.
- You may reorder, merge and rephrase, but every statement must trace back to the base resume. Leave a requirement out rather than inventing support for it.
- Use Markdown headers where they help, for example "## Core Skills" and "## Experience".
- Put each role's description on a new line after its location and dates.`

const optimizeUserPrompt = `Base resume (source of truth, add no new facts):
%s

Target job description:
%s

Tailor the resume to this role. Rephrase and reprioritize existing achievements, mirror the job description's terminology where it fits, and keep a professional tone. %sLeave out anything the base resume does not support. Keep my name, contact details and profile links exactly as written, and begin with a level-one heading holding my name as it appears in the base resume.`

var (
	errMissingBaseResume = errors.New("Add your base resume before optimizing.")
	errMissingJob        = errors.New("Select a job description before optimizing a resume.")
)

// OptimizeResume tailors a base resume to one job description. The base
// resume is the only source of facts. Without an LLM, DevFallback returns
// the resume followed by the job description as target-role notes.
func OptimizeResume(ctx context.Context, in OptimizeInput) (string, error) {
	base := strings.TrimSpace(in.BaseResume)
	job := strings.TrimSpace(in.JobDescription)
	title := strings.TrimSpace(in.JobTitle)
	if base == "" {
		return "", errMissingBaseResume
	}
	if job == "" {
		return "", errMissingJob
	}

	if !engine.LLMAvailable() {
		if !engine.Cfg.DevFallback {
			return "", fmt.Errorf("resume_optimize: %w", engine.ErrLLMUnavailable)
		}
		slog.Warn("resume_optimize: no LLM configured, returning local fallback")
		engine.IncrLLMFallbacks()
		return localResumeFallback(base, job, title), nil
	}

	titleHint := "Use the target job title in the summary. "
	if title != "" {
		titleHint = fmt.Sprintf("Use the target job title %q in the summary. ", title)
	}

	out, err := engine.CallLLM(ctx, engine.LLMRequest{
		Op:     "resume_optimize",
		System: optimizeSystemPrompt,
		Prompt: fmt.Sprintf(optimizeUserPrompt,
			engine.TruncateRunes(base, engine.Cfg.MaxContentChars, ""),
			engine.TruncateRunes(job, engine.Cfg.MaxContentChars, ""),
			titleHint),
		Temperature: 1,
		MaxTokens:   4096,
		Optimize:    true,
	})
	if err != nil {
		return "", err
	}
	engine.IncrResumesOptimized()
	return out, nil
}

func localResumeFallback(base, job, title string) string {
	heading := "# Tailored Resume (Dev Fallback)"
	if title != "" {
		heading = "# " + title + " Resume (Dev Fallback)"
	}
	return heading + "\n\n> This resume was generated using the local development fallback.\n\n" +
		base + "\n\n---\n\n## Target Role Notes\n\n" + job
}
