package jobs

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_tuneit/internal/engine"
	"github.com/anatolykoptev/go_tuneit/internal/salary"
)

func initEngine(t *testing.T, c engine.Config) {
	t.Helper()
	engine.Init(c)
	engine.SetCompleter(nil)
	t.Cleanup(func() {
		engine.SetCompleter(nil)
		engine.Init(engine.Config{})
	})
}

func stubLLM(t *testing.T, reply string) *[]engine.LLMRequest {
	t.Helper()
	var seen []engine.LLMRequest
	engine.SetCompleter(func(_ context.Context, req engine.LLMRequest) (string, error) {
		seen = append(seen, req)
		return reply, nil
	})
	return &seen
}

func fval(t *testing.T, v *float64) float64 {
	t.Helper()
	require.NotNil(t, v)
	return *v
}

func TestBuildFormattedJob_Marker(t *testing.T) {
	initEngine(t, engine.Config{})
	raw := "```markdown\n# Acme: Go Engineer\n\n## Responsibilities\n- Build APIs\n\n## Salary\n" +
		"- Range: $120k - $150k per year\n- Minimum: $120,000\n- Maximum: $150,000\n\n" +
		`<!-- salary_summary: {"range":"$120k - $150k per year","min":120000,"max":150000,"currency":"USD","period":"year"} -->` +
		"\n```"

	out := BuildFormattedJob(raw, "irrelevant source")

	assert.Equal(t, engine.SalaryFromMarker, out.SalarySource)
	require.NotNil(t, out.Salary)
	assert.Equal(t, 120000.0, fval(t, out.Salary.Min))
	assert.Equal(t, 150000.0, fval(t, out.Salary.Max))
	assert.Equal(t, "USD", out.Salary.Currency)
	assert.Equal(t, salary.Year, out.Salary.Period)
	assert.Equal(t, "$120k - $150k per year", out.SalaryLabel)
	assert.NotContains(t, out.Markdown, "salary_summary")
	assert.NotContains(t, out.Markdown, "```")
	assert.Equal(t, 1, strings.Count(out.Markdown, "## Salary"))
	assert.True(t, strings.HasPrefix(out.Markdown, "# Acme: Go Engineer"))
}

func TestBuildFormattedJob_MarkerWithoutSection(t *testing.T) {
	initEngine(t, engine.Config{})
	raw := "# Acme: Go Engineer\n\nBody\n\n" +
		`<!-- salary_summary: {"range":null,"min":"90000","max":110000,"currency":"usd","period":"annually"} -->`

	out := BuildFormattedJob(raw, "")

	assert.Equal(t, engine.SalaryFromMarker, out.SalarySource)
	assert.Equal(t, "USD", out.Salary.Currency)
	assert.Equal(t, salary.Year, out.Salary.Period)
	assert.Contains(t, out.Markdown, "## Salary\n- Range: $90,000 - $110,000 per year\n- Minimum: $90,000\n- Maximum: $110,000")
}

func TestBuildFormattedJob_Section(t *testing.T) {
	initEngine(t, engine.Config{})
	raw := "# Acme: Data Engineer\n\n## Salary\n- Range: £45k–£55k per year\n- Minimum: £45,000\n- Maximum: £55,000\n\n## Benefits\n- Pension"

	out := BuildFormattedJob(raw, "")

	assert.Equal(t, engine.SalaryFromSection, out.SalarySource)
	require.NotNil(t, out.Salary)
	assert.Equal(t, 45000.0, fval(t, out.Salary.Min))
	assert.Equal(t, 55000.0, fval(t, out.Salary.Max))
	assert.Equal(t, "GBP", out.Salary.Currency)
	assert.Equal(t, salary.Year, out.Salary.Period)
	assert.Equal(t, 1, strings.Count(out.Markdown, "## Salary"))
	assert.Contains(t, out.Markdown, "## Benefits\n- Pension")
	assert.True(t, strings.HasSuffix(out.Markdown, "- Maximum: £55,000"))
}

func TestBuildFormattedJob_SectionBoldLabels(t *testing.T) {
	initEngine(t, engine.Config{})
	raw := "# Acme: Barista\n\n## Salary\n- **Range:** $18 - $22 per hour\n- **Minimum:** Not provided\n- **Maximum:** Not provided"

	out := BuildFormattedJob(raw, "")

	assert.Equal(t, engine.SalaryFromSection, out.SalarySource)
	assert.Equal(t, 18.0, fval(t, out.Salary.Min))
	assert.Equal(t, 22.0, fval(t, out.Salary.Max))
	assert.Equal(t, salary.Hour, out.Salary.Period)
}

func TestBuildFormattedJob_SourceFallback(t *testing.T) {
	initEngine(t, engine.Config{})
	raw := "# Acme: Analyst\n\n## Salary\n- Range: Not provided\n- Minimum: Not provided\n- Maximum: Not provided\n\n" +
		"<!-- salary_summary: {broken -->"

	out := BuildFormattedJob(raw, "Analyst role. Compensation: $90,000 - $110,000 per year. Apply now.")

	assert.Equal(t, engine.SalaryFromSource, out.SalarySource)
	assert.Equal(t, 90000.0, fval(t, out.Salary.Min))
	assert.Equal(t, 110000.0, fval(t, out.Salary.Max))
	assert.NotContains(t, out.Markdown, "salary_summary")
	assert.NotContains(t, out.Markdown, "Not provided")
	assert.Contains(t, out.Markdown, "- Minimum: $90,000")
	assert.Contains(t, out.Markdown, "- Maximum: $110,000")
	assert.Equal(t, 1, strings.Count(out.Markdown, "## Salary"))
}

func TestBuildFormattedJob_SingleBoundSource(t *testing.T) {
	initEngine(t, engine.Config{})
	out := BuildFormattedJob("# Acme: Designer\n\nDesign things.", "Designer, up to £55,000 depending on experience")

	assert.Equal(t, engine.SalaryFromSource, out.SalarySource)
	assert.Nil(t, out.Salary.Min)
	assert.Equal(t, 55000.0, fval(t, out.Salary.Max))
	assert.Equal(t, "GBP", out.Salary.Currency)
	assert.Contains(t, out.Markdown, "- Minimum: Not provided\n- Maximum: £55,000")
}

func TestBuildFormattedJob_NoSalary(t *testing.T) {
	initEngine(t, engine.Config{})
	out := BuildFormattedJob("# Acme: Engineer\n\nWe are a fast-growing startup.", "We are a fast-growing startup.")

	assert.Equal(t, engine.SalaryMissing, out.SalarySource)
	assert.Nil(t, out.Salary)
	assert.Equal(t, salary.NotProvided, out.SalaryLabel)
	assert.True(t, strings.HasSuffix(out.Markdown,
		"## Salary\n- Range: Not provided\n- Minimum: Not provided\n- Maximum: Not provided"))
}

func TestBuildFormattedJob_AllNullMarkerKeepsSection(t *testing.T) {
	initEngine(t, engine.Config{})
	raw := "# Acme: Engineer\n\n## Salary\n- Range: Not provided\n- Minimum: Not provided\n- Maximum: Not provided\n\n" +
		`<!-- salary_summary: {"range":null,"min":null,"max":null,"currency":null,"period":null} -->`

	out := BuildFormattedJob(raw, "")

	assert.Nil(t, out.Salary)
	assert.Equal(t, engine.SalaryMissing, out.SalarySource)
	assert.Equal(t, 1, strings.Count(out.Markdown, "## Salary"))
	assert.NotContains(t, out.Markdown, "<!--")
}

func TestLocalMarkdownFallback(t *testing.T) {
	assert.Equal(t, "# Senior Go Engineer\n\n## Senior Go Engineer\nPay $100k",
		localMarkdownFallback("## Senior Go Engineer\nPay $100k"))
	assert.Equal(t, "# Job Description\n\n", localMarkdownFallback(""))
}

func TestFormatJobDescription_Empty(t *testing.T) {
	initEngine(t, engine.Config{DevFallback: true})
	_, err := FormatJobDescription(context.Background(), "  \r\n ")
	require.Error(t, err)
	assert.Equal(t, "Please provide a job description to format.", err.Error())
}

func TestFormatJobDescription_DevFallback(t *testing.T) {
	initEngine(t, engine.Config{DevFallback: true})
	out, err := FormatJobDescription(context.Background(), "Acme: Backend Engineer\r\nPay: $50 - $65 per hour\r\nRemote.")
	require.NoError(t, err)

	assert.True(t, out.Fallback)
	assert.True(t, strings.HasPrefix(out.Markdown, "# Acme: Backend Engineer\n\nAcme: Backend Engineer\nPay"))
	assert.Equal(t, engine.SalaryFromSource, out.SalarySource)
	assert.Equal(t, salary.Hour, out.Salary.Period)
	assert.Equal(t, "USD", out.Salary.Currency)
}

func TestFormatJobDescription_NoLLMWithoutFallback(t *testing.T) {
	initEngine(t, engine.Config{})
	_, err := FormatJobDescription(context.Background(), "Acme: Engineer")
	assert.True(t, errors.Is(err, engine.ErrLLMUnavailable))
}

func TestFormatJobDescription_LLM(t *testing.T) {
	initEngine(t, engine.Config{})
	seen := stubLLM(t, "# Acme: Go Engineer\n\n## Salary\n- Range: $100k - $120k per year\n- Minimum: $100,000\n- Maximum: $120,000\n\n"+
		`<!-- salary_summary: {"range":"$100k - $120k per year","min":100000,"max":120000,"currency":"USD","period":"year"} -->`)

	out, err := FormatJobDescription(context.Background(), `<div class="job-description"><h1>Go Engineer</h1><p>Acme pays well.</p></div>`)
	require.NoError(t, err)

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.Equal(t, "job_format", req.Op)
	assert.Contains(t, req.System, "salary_summary")
	assert.Contains(t, req.Prompt, "# Go Engineer")
	assert.NotContains(t, req.Prompt, "<div")

	assert.False(t, out.Fallback)
	assert.Equal(t, engine.SalaryFromMarker, out.SalarySource)
	assert.Equal(t, 100000.0, fval(t, out.Salary.Min))
}

func TestFormatJobDescription_LLMError(t *testing.T) {
	initEngine(t, engine.Config{DevFallback: true})
	engine.SetCompleter(func(context.Context, engine.LLMRequest) (string, error) {
		return "", errors.New("upstream 500")
	})
	_, err := FormatJobDescription(context.Background(), "Acme: Engineer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream 500")
}
