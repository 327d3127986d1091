package salary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Details is a normalized salary record. Empty strings and nil bounds mean
// the value is unknown. A non-nil *Details always carries at least one of
// Min, Max or Range, and Min <= Max when both are set.
type Details struct {
	Range    string   `json:"range,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Currency string   `json:"currency,omitempty"`
	Period   Period   `json:"period,omitempty"`
}

// Amount is a salary bound as received: a number, free text such as
// "120k" or "$95,000", or nothing.
type Amount struct {
	Number *float64
	Text   string
}

// Num returns an Amount holding v.
func Num(v float64) Amount { return Amount{Number: &v} }

// Text returns an Amount holding free text.
func Text(s string) Amount { return Amount{Text: s} }

// UnmarshalJSON accepts numbers, strings and null. Anything else decodes
// as an empty Amount.
func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			a.Text = s
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if v, err := strconv.ParseFloat(string(data), 64); err == nil {
			a.Number = &v
		}
	}
	return nil
}

// Input is loosely-typed salary data from an LLM marker, a Markdown
// section or the extractor.
type Input struct {
	Range    string `json:"range"`
	Min      Amount `json:"min"`
	Max      Amount `json:"max"`
	Currency string `json:"currency"`
	Period   string `json:"period"`
}

// UnmarshalJSON decodes each field on its own so that one badly typed
// value does not discard the rest. Keys match case-insensitively; when a
// payload repeats a field, the exact canonical key beats a case variant,
// which beats an alias ("minimum", "interval").
func (in *Input) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	*in = Input{}
	rank := make(map[string]int)
	for _, key := range keys {
		field, ok := inputKeys[strings.ToLower(key)]
		if !ok {
			continue
		}
		r := 2
		switch {
		case key == field:
			r = 0
		case strings.EqualFold(key, field):
			r = 1
		}
		if prev, seen := rank[field]; seen && prev <= r {
			continue
		}
		rank[field] = r

		raw := fields[key]
		switch field {
		case "range":
			in.Range = stringField(raw)
		case "min":
			_ = in.Min.UnmarshalJSON(raw)
		case "max":
			_ = in.Max.UnmarshalJSON(raw)
		case "currency":
			in.Currency = stringField(raw)
		case "period":
			in.Period = stringField(raw)
		}
	}
	return nil
}

// inputKeys maps lower-cased payload keys to the field they fill.
var inputKeys = map[string]string{
	"range":    "range",
	"min":      "min",
	"minimum":  "min",
	"max":      "max",
	"maximum":  "max",
	"currency": "currency",
	"period":   "period",
	"interval": "period",
}

func stringField(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// ParseInput decodes a JSON object into Input. Only malformed JSON is an
// error; mistyped fields are dropped.
func ParseInput(data []byte) (*Input, error) {
	var in Input
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("salary input: %w", err)
	}
	return &in, nil
}

// Input converts d back into an Input. A nil receiver yields nil.
func (d *Details) Input() *Input {
	if d == nil {
		return nil
	}
	return &Input{
		Range:    d.Range,
		Min:      Amount{Number: d.Min},
		Max:      Amount{Number: d.Max},
		Currency: d.Currency,
		Period:   string(d.Period),
	}
}

// placeholders are range texts that mean no salary was given.
var placeholders = map[string]bool{
	"not provided":  true,
	"not specified": true,
	"not disclosed": true,
	"unknown":       true,
	"n/a":           true,
	"na":            true,
	"none":          true,
	"null":          true,
	"tbd":           true,
	"-":             true,
}

func isPlaceholder(s string) bool {
	return placeholders[strings.ToLower(strings.Trim(s, " .*_"))]
}

// Normalize canonicalizes in. It returns nil when in is nil or carries no
// bound and no range after coercion; currency or cadence alone is not
// salary information.
func (s *Scanner) Normalize(in *Input) *Details {
	return s.normalize(in, true)
}

func (s *Scanner) normalize(in *Input, extract bool) *Details {
	if in == nil {
		return nil
	}

	d := &Details{
		Range:    strings.TrimSpace(in.Range),
		Min:      s.coerce(in.Min),
		Max:      s.coerce(in.Max),
		Currency: s.canonicalCurrency(in.Currency),
		Period:   s.canonicalPeriod(in.Period),
	}
	if isPlaceholder(d.Range) {
		d.Range = ""
	}

	if extract && d.Min == nil && d.Max == nil && d.Range != "" {
		if found := s.Extract(d.Range); found != nil {
			d.Min, d.Max = found.Min, found.Max
			if d.Currency == "" {
				d.Currency = found.Currency
			}
			if d.Period == "" {
				d.Period = found.Period
			}
		}
	}

	if d.Min == nil && d.Max == nil && d.Range == "" {
		return nil
	}
	if d.Min != nil && d.Max != nil && *d.Min > *d.Max {
		d.Min, d.Max = d.Max, d.Min
	}
	if d.Currency == "" {
		d.Currency = s.DetectCurrency(d.Range)
	}
	if d.Period == "" {
		d.Period = s.DetectPeriod(d.Range)
	}
	if d.Range == "" {
		d.Range = s.FormatRange(d)
	}
	return d
}

// coerce turns an Amount into a positive value rounded to cents.
func (s *Scanner) coerce(a Amount) *float64 {
	var v float64
	switch {
	case a.Number != nil:
		v = *a.Number
	case strings.TrimSpace(a.Text) != "":
		p := s.ParseNumber(a.Text)
		if p == nil {
			return nil
		}
		v = *p
	default:
		return nil
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	if v = roundCents(v); v <= 0 {
		return nil
	}
	return &v
}

func (s *Scanner) canonicalCurrency(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if up := strings.ToUpper(v); s.codes[up] {
		return up
	}
	return s.DetectCurrency(v)
}

func (s *Scanner) canonicalPeriod(v string) Period {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	for _, p := range Periods {
		if strings.EqualFold(v, string(p)) {
			return p
		}
	}
	return s.DetectPeriod(v)
}

// Normalize runs the default Scanner's Normalize.
func Normalize(in *Input) *Details { return defaultScanner.Normalize(in) }

// markerPayload is the wire shape of a salary marker: every key present,
// null for unknown values.
type markerPayload struct {
	Range    *string  `json:"range"`
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
	Currency *string  `json:"currency"`
	Period   *string  `json:"period"`
}

// MarkerJSON encodes d with all five keys, using null for unknown values.
// A nil receiver encodes the all-null record.
func (d *Details) MarkerJSON() []byte {
	var p markerPayload
	if d != nil {
		p.Range = optString(d.Range)
		p.Min = d.Min
		p.Max = d.Max
		p.Currency = optString(d.Currency)
		p.Period = optString(string(d.Period))
	}
	data, _ := json.Marshal(p)
	return data
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
