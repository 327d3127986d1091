// Package salary extracts and normalizes salary details from free-form text.
//
// Three layers cooperate:
//   - Scanner answers narrow questions about a string: which currency it
//     mentions, which pay cadence, and the first number it contains.
//   - Extract locates a salary mention (range or single bound) in a larger
//     block of text such as a raw job posting.
//   - Normalize canonicalizes any loosely-typed salary input into Details.
//
// Nothing in this package returns an error for missing or malformed salary
// data: absence is reported as nil or the empty string.
package salary

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Period is the cadence a salary figure represents.
type Period string

const (
	Hour  Period = "hour"
	Week  Period = "week"
	Month Period = "month"
	Year  Period = "year"
)

// Periods lists the known cadences in display order.
var Periods = []Period{Hour, Week, Month, Year}

// Vocabulary is the lookup data a Scanner is built from.
// Keys of Symbols, Words and Fallback are matched case-insensitively.
type Vocabulary struct {
	// Symbols maps unambiguous currency symbols to ISO codes ("£" -> GBP).
	Symbols map[string]string `yaml:"symbols"`
	// Codes is the closed set of accepted ISO-4217 codes.
	Codes []string `yaml:"codes"`
	// Words maps currency names to codes ("euros" -> EUR).
	Words map[string]string `yaml:"words"`
	// Fallback maps ambiguous markers ("$", "dollars") to the code assumed
	// when nothing more specific is present.
	Fallback map[string]string `yaml:"fallback"`
	// Display maps codes to the symbol used when formatting amounts.
	Display map[string]string `yaml:"display"`
	// Cadence maps each period to the keywords that signal it.
	Cadence map[string][]string `yaml:"cadence"`
}

// DefaultVocabulary returns a fresh copy of the built-in vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Symbols: map[string]string{
			"£":   "GBP",
			"€":   "EUR",
			"¥":   "JPY",
			"₹":   "INR",
			"₽":   "RUB",
			"₩":   "KRW",
			"US$": "USD",
			"C$":  "CAD",
			"CA$": "CAD",
			"A$":  "AUD",
			"AU$": "AUD",
			"NZ$": "NZD",
			"S$":  "SGD",
			"HK$": "HKD",
			"R$":  "BRL",
		},
		Codes: []string{
			"USD", "EUR", "GBP", "CAD", "AUD", "NZD", "CHF", "JPY", "CNY", "INR",
			"SGD", "HKD", "SEK", "NOK", "DKK", "PLN", "BRL", "MXN", "ZAR", "RUB", "KRW",
		},
		Words: map[string]string{
			"pound":    "GBP",
			"pounds":   "GBP",
			"sterling": "GBP",
			"euro":     "EUR",
			"euros":    "EUR",
			"rupee":    "INR",
			"rupees":   "INR",
			"yen":      "JPY",
		},
		Fallback: map[string]string{
			"$":       "USD",
			"dollar":  "USD",
			"dollars": "USD",
		},
		Display: map[string]string{
			"USD": "$",
			"GBP": "£",
			"EUR": "€",
			"JPY": "¥",
			"INR": "₹",
			"RUB": "₽",
			"KRW": "₩",
			"CAD": "CA$",
			"AUD": "A$",
			"NZD": "NZ$",
			"SGD": "S$",
			"HKD": "HK$",
			"BRL": "R$",
		},
		Cadence: map[string][]string{
			string(Hour):  {"hour", "hours", "hourly", "hr", "hrs"},
			string(Week):  {"week", "weeks", "weekly", "wk", "wks"},
			string(Month): {"month", "months", "monthly", "mo", "mos"},
			string(Year):  {"year", "years", "yearly", "yr", "yrs", "annual", "annually", "annum"},
		},
	}
}

// LoadVocabulary reads a YAML file and merges it over DefaultVocabulary.
// Map entries are added or replaced individually; lists replace the default.
func LoadVocabulary(path string) (Vocabulary, error) {
	v := DefaultVocabulary()
	data, err := os.ReadFile(path)
	if err != nil {
		return v, fmt.Errorf("salary vocabulary: %w", err)
	}
	if err := yaml.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("salary vocabulary %s: %w", path, err)
	}
	return v, nil
}
