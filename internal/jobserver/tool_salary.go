package jobserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_tuneit/internal/engine"
	"github.com/anatolykoptev/go_tuneit/internal/salary"
)

// SalaryExtractInput is the input for salary_extract.
type SalaryExtractInput struct {
	Text string `json:"text" jsonschema:"Job posting text, Markdown or HTML"`
}

// SalaryNormalizeInput is the input for salary_normalize. Bounds accept a
// number or text such as "120k" or "$95,000".
type SalaryNormalizeInput struct {
	Range    string `json:"range,omitempty" jsonschema:"Free-text salary range, e.g. $120k - $150k per year"`
	Min      any    `json:"min,omitempty" jsonschema:"Lower bound: number or text"`
	Max      any    `json:"max,omitempty" jsonschema:"Upper bound: number or text"`
	Currency string `json:"currency,omitempty" jsonschema:"Currency code, symbol or word (USD, $, euros)"`
	Period   string `json:"period,omitempty" jsonschema:"Pay cadence: hour, week, month, year or a synonym such as annually"`
}

// SalaryFormatInput is the input for salary_format.
type SalaryFormatInput struct {
	Range    string   `json:"range,omitempty" jsonschema:"Display range, used as the label when present"`
	Min      *float64 `json:"min,omitempty" jsonschema:"Lower bound"`
	Max      *float64 `json:"max,omitempty" jsonschema:"Upper bound"`
	Currency string   `json:"currency,omitempty" jsonschema:"ISO currency code"`
	Period   string   `json:"period,omitempty" jsonschema:"hour, week, month or year"`
}

// SalaryResult is the output of salary_extract and salary_normalize.
type SalaryResult struct {
	Found  bool            `json:"found"`
	Salary *salary.Details `json:"salary,omitempty"`
	Label  string          `json:"label"`
	// Marker is the salary_summary payload with every key present.
	Marker string `json:"marker"`
}

// SalaryFormatResult is the output of salary_format.
type SalaryFormatResult struct {
	Label   string `json:"label"`
	Range   string `json:"range"`
	Minimum string `json:"minimum"`
	Maximum string `json:"maximum"`
}

func salaryResult(sc *salary.Scanner, d *salary.Details) *SalaryResult {
	return &SalaryResult{
		Found:  d != nil,
		Salary: d,
		Label:  sc.Label(d),
		Marker: string(d.MarkerJSON()),
	}
}

// amountOf converts a loosely typed tool argument into a salary amount.
func amountOf(v any) (salary.Amount, error) {
	switch x := v.(type) {
	case nil:
		return salary.Amount{}, nil
	case float64:
		return salary.Num(x), nil
	case string:
		return salary.Text(x), nil
	default:
		return salary.Amount{}, fmt.Errorf("unsupported amount type %T", v)
	}
}

func registerSalaryExtract(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "salary_extract",
		Description: "Find the salary mentioned in a job posting. Recognizes ranges ($120k - $150k per year), single bounds (up to £55,000, from $40/hour) and amounts with a cadence. Returns min, max, currency, period and a display label; found=false when the text has no salary.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, input SalaryExtractInput) (*mcp.CallToolResult, *SalaryResult, error) {
		text := strings.TrimSpace(input.Text)
		if text == "" {
			return nil, nil, errors.New("text is required")
		}
		if engine.LooksLikeHTML(text) {
			text = engine.PlainText(text)
		}
		sc := engine.Salary()
		return nil, salaryResult(sc, sc.Extract(text)), nil
	})
}

func registerSalaryNormalize(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "salary_normalize",
		Description: "Canonicalize loosely typed salary data: bounds given as numbers or text (120k, $95,000), currency codes/symbols/words, cadence synonyms (annually, p/h). Swaps inverted bounds and recovers bounds from the range text. found=false when no bound or range survives.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, input SalaryNormalizeInput) (*mcp.CallToolResult, *SalaryResult, error) {
		lo, err := amountOf(input.Min)
		if err != nil {
			return nil, nil, fmt.Errorf("min: %w", err)
		}
		hi, err := amountOf(input.Max)
		if err != nil {
			return nil, nil, fmt.Errorf("max: %w", err)
		}
		sc := engine.Salary()
		d := sc.Normalize(&salary.Input{
			Range:    input.Range,
			Min:      lo,
			Max:      hi,
			Currency: input.Currency,
			Period:   input.Period,
		})
		return nil, salaryResult(sc, d), nil
	})
}

func registerSalaryFormat(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "salary_format",
		Description: "Render salary bounds for display: thousands separators, currency symbol (or code suffix), 'From'/'Up to' for single bounds and 'per <period>'. Returns the label plus Minimum/Maximum strings as written in a job's ## Salary section.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, input SalaryFormatInput) (*mcp.CallToolResult, *SalaryFormatResult, error) {
		sc := engine.Salary()
		if c := strings.TrimSpace(input.Currency); c != "" && !sc.KnownCurrency(strings.ToUpper(c)) {
			return nil, nil, fmt.Errorf("unknown currency code %q", c)
		}
		in := &salary.Input{Range: input.Range, Currency: input.Currency, Period: input.Period}
		if input.Min != nil {
			in.Min = salary.Num(*input.Min)
		}
		if input.Max != nil {
			in.Max = salary.Num(*input.Max)
		}
		d := sc.Normalize(in)

		out := &SalaryFormatResult{
			Label:   sc.Label(d),
			Minimum: salary.NotProvided,
			Maximum: salary.NotProvided,
		}
		if d != nil {
			out.Range = sc.FormatRange(d)
			if d.Min != nil {
				out.Minimum = sc.FormatAmount(d.Min, d.Currency)
			}
			if d.Max != nil {
				out.Maximum = sc.FormatAmount(d.Max, d.Currency)
			}
		}
		return nil, out, nil
	})
}
