package salary

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Scanner detects currencies, cadences and numbers using a fixed Vocabulary.
// A Scanner is immutable after construction and safe for concurrent use.
type Scanner struct {
	tokens   map[string]string // lowercased marker -> code
	fallback map[string]string
	codes    map[string]bool
	display  map[string]string
	cadence  map[string]Period // lowercased keyword -> period

	currencyRe *regexp.Regexp
	fallbackRe *regexp.Regexp
	periodRe   *regexp.Regexp

	rangeRe  *regexp.Regexp
	upToRe   *regexp.Regexp
	fromRe   *regexp.Regexp
	plusRe   *regexp.Regexp
	singleRe *regexp.Regexp
}

var defaultScanner = NewScanner(DefaultVocabulary())

// Default returns the Scanner built from DefaultVocabulary.
func Default() *Scanner { return defaultScanner }

// NewScanner compiles v into a Scanner.
func NewScanner(v Vocabulary) *Scanner {
	s := &Scanner{
		tokens:   make(map[string]string),
		fallback: make(map[string]string),
		codes:    make(map[string]bool),
		display:  make(map[string]string),
		cadence:  make(map[string]Period),
	}

	var codeList, symbolList, wordList, fallbackList []string
	for _, c := range v.Codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		s.codes[c] = true
		s.tokens[strings.ToLower(c)] = c
		codeList = append(codeList, c)
	}
	for sym, code := range v.Symbols {
		code = strings.ToUpper(code)
		s.codes[code] = true
		s.tokens[strings.ToLower(sym)] = code
		symbolList = append(symbolList, sym)
	}
	for word, code := range v.Words {
		code = strings.ToUpper(code)
		s.codes[code] = true
		s.tokens[strings.ToLower(word)] = code
		wordList = append(wordList, word)
	}
	for tok, code := range v.Fallback {
		code = strings.ToUpper(code)
		s.codes[code] = true
		s.fallback[strings.ToLower(tok)] = code
		fallbackList = append(fallbackList, tok)
	}
	for code, sym := range v.Display {
		s.display[strings.ToUpper(code)] = sym
	}

	var keywords []string
	for _, p := range Periods {
		for _, kw := range v.Cadence[string(p)] {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			s.cadence[kw] = p
			keywords = append(keywords, kw)
		}
	}

	unambiguous := append(append(append([]string{}, symbolList...), codeList...), wordList...)
	s.currencyRe = tokenRegexp(unambiguous)
	s.fallbackRe = tokenRegexp(fallbackList)
	s.periodRe = regexp.MustCompile(`(?i)\b(` + alternation(keywords) + `)\b`)

	s.compileExtractors(symbolList, fallbackList, codeList, wordList, keywords)
	return s
}

// tokenRegexp matches any of tokens. Tokens starting with a letter must
// begin at a word boundary and tokens ending with a letter must not be
// followed by another letter, so "CAD" does not match inside "CADENCE".
func tokenRegexp(tokens []string) *regexp.Regexp {
	if len(tokens) == 0 {
		return regexp.MustCompile(`([^\x00-\x{10FFFF}])`)
	}
	return regexp.MustCompile(`(?i)(` + markerAlternation(tokens) + `)(?:[^\p{L}]|$)`)
}

// markerAlternation joins tokens longest first, anchoring letter-initial
// tokens at a word boundary.
func markerAlternation(tokens []string) string {
	sorted := sortByLength(tokens)
	parts := make([]string, 0, len(sorted))
	for _, t := range sorted {
		p := regexp.QuoteMeta(t)
		if startsWithLetter(t) {
			p = `\b` + p
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, "|")
}

func alternation(tokens []string) string {
	sorted := sortByLength(tokens)
	parts := make([]string, 0, len(sorted))
	for _, t := range sorted {
		parts = append(parts, regexp.QuoteMeta(t))
	}
	return strings.Join(parts, "|")
}

func sortByLength(tokens []string) []string {
	out := append([]string{}, tokens...)
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

func startsWithLetter(s string) bool {
	for _, r := range s {
		return unicode.IsLetter(r)
	}
	return false
}

// DetectCurrency returns the ISO code of the earliest unambiguous currency
// marker in text. Bare "$" and "dollar" count only when nothing else is found.
func (s *Scanner) DetectCurrency(text string) string {
	if text == "" {
		return ""
	}
	if m := s.currencyRe.FindStringSubmatch(text); m != nil {
		if code, ok := s.tokens[strings.ToLower(m[1])]; ok {
			return code
		}
	}
	if m := s.fallbackRe.FindStringSubmatch(text); m != nil {
		return s.fallback[strings.ToLower(m[1])]
	}
	return ""
}

// DetectPeriod returns the cadence named by the earliest whole-word keyword in text.
func (s *Scanner) DetectPeriod(text string) Period {
	if text == "" {
		return ""
	}
	m := s.periodRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return s.cadence[strings.ToLower(m[1])]
}

// KnownCurrency reports whether code is in the closed currency set.
func (s *Scanner) KnownCurrency(code string) bool {
	return s.codes[strings.ToUpper(code)]
}

// numberRe accepts comma grouping ("95,000.50"), dot grouping ("50.000")
// and plain decimals.
var numberRe = regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d{1,3}(?:\.\d{3})+\b|\d+(?:\.\d+)?|\.\d+)(?:\s?(mm|k|m|thousand|million)\b)?`)

var dotGroupedRe = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+$`)

// ParseNumber returns the first numeric value in text with thousands
// separators removed and k/m shorthand expanded. It returns nil when text
// holds no number.
func (s *Scanner) ParseNumber(text string) *float64 {
	v, _, ok := parseAmount(text)
	if !ok {
		return nil
	}
	return &v
}

// parseAmount returns the first number in text, the multiplier its suffix
// implied (1 when none) and whether a number was found.
func parseAmount(text string) (float64, float64, bool) {
	m := numberRe.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	digits := m[1]
	if dotGroupedRe.MatchString(digits) {
		digits = strings.ReplaceAll(digits, ".", "")
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", ""), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, 0, false
	}
	mult := suffixMultiplier(m[2])
	return roundCents(v * mult), mult, true
}

func suffixMultiplier(suffix string) float64 {
	switch strings.ToLower(suffix) {
	case "k", "thousand":
		return 1e3
	case "m", "mm", "million":
		return 1e6
	}
	return 1
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// DetectCurrency runs the default Scanner's DetectCurrency.
func DetectCurrency(text string) string { return defaultScanner.DetectCurrency(text) }

// DetectPeriod runs the default Scanner's DetectPeriod.
func DetectPeriod(text string) Period { return defaultScanner.DetectPeriod(text) }

// ParseNumber runs the default Scanner's ParseNumber.
func ParseNumber(text string) *float64 { return defaultScanner.ParseNumber(text) }
