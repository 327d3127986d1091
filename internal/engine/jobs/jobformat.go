package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_tuneit/internal/engine"
	"github.com/anatolykoptev/go_tuneit/internal/salary"
	"github.com/anatolykoptev/go_tuneit/internal/toolutil"
)

// FormattedJob is the output of FormatJobDescription.
type FormattedJob struct {
	Markdown     string              `json:"markdown"`
	Salary       *salary.Details     `json:"salary,omitempty"`
	SalaryLabel  string              `json:"salary_label"`
	SalarySource engine.SalarySource `json:"salary_source"`
	Fallback     bool                `json:"fallback,omitempty"`
}

const jobFormatSystemPrompt = `You format job descriptions for recruiters as polished Markdown with clear section headings, bullet lists and emphasis where it helps. Output Markdown only, with no commentary.

Rules:
- The first line must be a level-one heading of the form "# Company Name: Job Title", using details from the description.
- After every other section, add a "## Salary" section with exactly three bullets labeled Range, Minimum and Maximum. Use compensation figures from the source; write "Not provided" when a figure is missing.
- Right after the Salary section, add one HTML comment in exactly this form:
  <!-- salary_summary: {"range":"$120k - $150k per year","min":120000,"max":150000,"currency":"USD","period":"year"} -->
  min and max are plain numbers without symbols or commas, currency is an ISO 4217 code, period is one of hour, week, month, year. Use null for anything unknown.
- Never wrap the output or the comment in code fences.`

const jobFormatUserPrompt = `Format this job description as Markdown. Do not add details that are not in it, and follow the salary rules above, saying clearly when data is unavailable.

%s`

var errEmptyJobDescription = errors.New("Please provide a job description to format.")

// FormatJobDescription turns a pasted or fetched posting into Markdown with
// a "## Salary" section and the normalized salary details. HTML input is
// converted first. Without an LLM, a local formatter is used when
// DevFallback is enabled.
func FormatJobDescription(ctx context.Context, description string) (*FormattedJob, error) {
	source := strings.TrimSpace(strings.ReplaceAll(description, "\r\n", "\n"))
	if source == "" {
		return nil, errEmptyJobDescription
	}
	if engine.LooksLikeHTML(source) {
		if _, md, err := engine.HTMLToMarkdown(source); err == nil && md != "" {
			source = md
		}
	}

	if !engine.LLMAvailable() {
		if !engine.Cfg.DevFallback {
			return nil, fmt.Errorf("job_format: %w", engine.ErrLLMUnavailable)
		}
		slog.Warn("job_format: no LLM configured, using local formatter")
		engine.IncrLLMFallbacks()
		out := BuildFormattedJob(localMarkdownFallback(source), source)
		out.Fallback = true
		engine.IncrJobFormatted(out.SalarySource)
		return out, nil
	}

	cacheKey := engine.CacheKey("job_format", source)
	if out, ok := toolutil.CacheLoadJSON[FormattedJob](ctx, cacheKey); ok {
		return &out, nil
	}

	raw, err := engine.CallLLM(ctx, engine.LLMRequest{
		Op:          "job_format",
		System:      jobFormatSystemPrompt,
		Prompt:      fmt.Sprintf(jobFormatUserPrompt, engine.TruncateRunes(source, engine.Cfg.MaxContentChars, "")),
		Temperature: 0.3,
		MaxTokens:   2200,
	})
	if err != nil {
		return nil, err
	}

	out := BuildFormattedJob(raw, source)
	engine.IncrJobFormatted(out.SalarySource)
	toolutil.CacheStoreJSON(ctx, cacheKey, *out)
	return out, nil
}

// BuildFormattedJob post-processes formatter output. Salary details come
// from the salary_summary marker, else the "## Salary" bullets, else the
// source posting. The result always has exactly one Salary section and
// never contains the marker.
func BuildFormattedJob(raw, source string) *FormattedJob {
	sc := engine.Salary()
	md, details := extractSalaryMarker(sc, engine.NormalizeMarkdown(raw))
	src := engine.SalaryFromMarker
	if details == nil {
		src = engine.SalaryMissing
	}

	_, hasSection := findSalarySection(md)

	if details == nil && hasSection {
		if derived := deriveSalaryFromSection(sc, md); derived != nil {
			md, details, src = replaceSalarySection(sc, md, derived), derived, engine.SalaryFromSection
		}
	}

	if details == nil && source != "" {
		if extracted := sc.Extract(source); extracted != nil {
			md, details, src = replaceSalarySection(sc, md, extracted), extracted, engine.SalaryFromSource
			hasSection = true
		}
	}

	if !hasSection {
		md = appendSalarySection(sc, md, details)
	}

	return &FormattedJob{
		Markdown:     md,
		Salary:       details,
		SalaryLabel:  sc.Label(details),
		SalarySource: src,
	}
}

var (
	salaryMarkerRe  = regexp.MustCompile(`(?is)<!--\s*salary_summary\s*:(.*?)-->`)
	salaryHeadingRe = regexp.MustCompile(`(?im)^[ \t]*#{2,6}[ \t]*salary\b[^\n]*`)
	nextHeadingRe   = regexp.MustCompile(`\n[ \t]*#{1,6}\s`)
	rangeBulletRe   = bulletRe("Range")
	minBulletRe     = bulletRe("Minimum")
	maxBulletRe     = bulletRe("Maximum")
)

// bulletRe matches "- Label: value" with optional bold around the label.
func bulletRe(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^[ \t]*[-*+][ \t]*(?:\*\*|__)?` + label + `(?:\*\*|__)?[ \t]*:(?:\*\*|__)?[ \t]*(.+)$`)
}

// extractSalaryMarker removes the first salary_summary comment from md and
// returns its normalized payload. A malformed payload is logged and
// dropped.
func extractSalaryMarker(sc *salary.Scanner, md string) (string, *salary.Details) {
	loc := salaryMarkerRe.FindStringSubmatchIndex(md)
	if loc == nil {
		return strings.TrimSpace(md), nil
	}

	payload := strings.TrimSpace(md[loc[2]:loc[3]])
	var details *salary.Details
	if in, err := salary.ParseInput([]byte(payload)); err != nil {
		slog.Warn("job_format: unparseable salary marker", slog.String("payload", engine.TruncateRunes(payload, 200, "...")), slog.Any("error", err))
	} else {
		details = sc.Normalize(in)
	}

	md = md[:loc[0]] + md[loc[1]:]
	return strings.TrimSpace(engine.CollapseBlankLines(md)), details
}

// salarySection locates a Salary heading and the body that follows it, up
// to the next heading or the end of the document.
type salarySection struct {
	start, bodyStart, end int
}

func findSalarySection(md string) (salarySection, bool) {
	loc := salaryHeadingRe.FindStringIndex(md)
	if loc == nil {
		return salarySection{}, false
	}
	s := salarySection{start: loc[0], bodyStart: loc[1], end: len(md)}
	if next := nextHeadingRe.FindStringIndex(md[loc[1]:]); next != nil {
		s.end = loc[1] + next[0]
	}
	return s, true
}

// deriveSalaryFromSection reads the Range, Minimum and Maximum bullets of
// the Salary section.
func deriveSalaryFromSection(sc *salary.Scanner, md string) *salary.Details {
	sec, ok := findSalarySection(md)
	if !ok {
		return nil
	}
	body := strings.TrimSpace(md[sec.bodyStart:sec.end])

	rangeText, hasRange := bulletValue(rangeBulletRe, body)
	minText, hasMin := bulletValue(minBulletRe, body)
	maxText, hasMax := bulletValue(maxBulletRe, body)
	if !hasRange && !hasMin && !hasMax {
		return nil
	}

	var currency string
	for _, text := range []string{rangeText, minText, maxText} {
		if currency = sc.DetectCurrency(text); currency != "" {
			break
		}
	}
	period := sc.DetectPeriod(rangeText)
	if period == "" {
		period = sc.DetectPeriod(body)
	}

	return sc.Normalize(&salary.Input{
		Range:    rangeText,
		Min:      salary.Text(minText),
		Max:      salary.Text(maxText),
		Currency: currency,
		Period:   string(period),
	})
}

func bulletValue(re *regexp.Regexp, body string) (string, bool) {
	m := re.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(strings.Trim(m[1], " *_")), true
}

func removeSalarySection(md string) string {
	sec, ok := findSalarySection(md)
	if !ok {
		return strings.TrimSpace(md)
	}
	return strings.TrimSpace(engine.CollapseBlankLines(md[:sec.start] + md[sec.end:]))
}

func replaceSalarySection(sc *salary.Scanner, md string, d *salary.Details) string {
	return appendSalarySection(sc, removeSalarySection(md), d)
}

// appendSalarySection adds a "## Salary" section for d; nil renders every
// bullet as "Not provided".
func appendSalarySection(sc *salary.Scanner, md string, d *salary.Details) string {
	var currency string
	var lo, hi *float64
	if d != nil {
		currency, lo, hi = d.Currency, d.Min, d.Max
	}
	section := strings.Join([]string{
		"## Salary",
		"- Range: " + sc.Label(d),
		"- Minimum: " + orNotProvided(sc.FormatAmount(lo, currency)),
		"- Maximum: " + orNotProvided(sc.FormatAmount(hi, currency)),
	}, "\n")
	return strings.TrimSpace(strings.TrimSpace(md) + "\n\n" + section)
}

func orNotProvided(s string) string {
	if s == "" {
		return salary.NotProvided
	}
	return s
}

// localMarkdownFallback heads the text with its own first line.
func localMarkdownFallback(text string) string {
	first := strings.TrimLeft(engine.FirstLine(text), "# \t")
	if first == "" {
		first = "Job Description"
	}
	return "# " + first + "\n\n" + text
}
