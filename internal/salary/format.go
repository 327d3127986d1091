package salary

import (
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// NotProvided is the label shown when no salary is known.
const NotProvided = "Not provided"

// FormatAmount renders v with thousands separators and the currency's
// symbol, or the code as a suffix when it has no symbol. It returns ""
// for a nil amount.
func (s *Scanner) FormatAmount(v *float64, currency string) string {
	if v == nil {
		return ""
	}
	var num string
	if *v == math.Trunc(*v) && math.Abs(*v) < 1e15 {
		num = humanize.Comma(int64(*v))
	} else {
		num = humanize.FormatFloat("#,###.##", *v)
	}

	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		return num
	}
	if sym, ok := s.display[code]; ok {
		return sym + num
	}
	return num + " " + code
}

// FormatRange renders a display string such as "$120,000 - $150,000 per year".
// A lone lower bound reads "From $X", a lone upper bound "Up to $X". It
// returns "" when d has no bounds.
func (s *Scanner) FormatRange(d *Details) string {
	if d == nil || (d.Min == nil && d.Max == nil) {
		return ""
	}
	lo := s.FormatAmount(d.Min, d.Currency)
	hi := s.FormatAmount(d.Max, d.Currency)

	var out string
	switch {
	case d.Min != nil && d.Max != nil && *d.Min == *d.Max:
		out = lo
	case d.Min != nil && d.Max != nil:
		out = lo + " - " + hi
	case d.Min != nil:
		out = "From " + lo
	default:
		out = "Up to " + hi
	}
	if d.Period != "" {
		out += " per " + string(d.Period)
	}
	return out
}

// Label is the display text for d: its range, a formatted range, or
// NotProvided.
func (s *Scanner) Label(d *Details) string {
	if d == nil {
		return NotProvided
	}
	if r := strings.TrimSpace(d.Range); r != "" {
		return r
	}
	if r := s.FormatRange(d); r != "" {
		return r
	}
	return NotProvided
}

// FormatAmount runs the default Scanner's FormatAmount.
func FormatAmount(v *float64, currency string) string {
	return defaultScanner.FormatAmount(v, currency)
}

// FormatRange runs the default Scanner's FormatRange.
func FormatRange(d *Details) string { return defaultScanner.FormatRange(d) }

// Label runs the default Scanner's Label.
func Label(d *Details) string { return defaultScanner.Label(d) }
