package salary

import (
	"regexp"
	"strings"
)

const (
	numberPattern     = `(?:\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d{1,3}(?:\.\d{3})+\b|\d+(?:\.\d+)?)`
	multiplierPattern = `(?:\s?(?:mm|k|m|thousand|million)\b)?`
	separatorPattern  = `(?:\s*[-–—]\s*|\s+to\s+)`
)

// compileExtractors builds the salary-mention patterns. An amount is an
// optional leading marker ("$", "£", "USD "), a number and an optional k/m
// suffix. A trailing currency ("EUR", "euros") and cadence ("per year",
// "/hr", "hourly") may follow the last amount.
func (s *Scanner) compileExtractors(symbols, fallback, codes, words, keywords []string) {
	var prefix, suffix []string
	prefix = append(prefix, symbols...)
	prefix = append(prefix, codes...)
	suffix = append(suffix, codes...)
	suffix = append(suffix, words...)
	for _, f := range fallback {
		if startsWithLetter(f) {
			suffix = append(suffix, f)
		} else {
			prefix = append(prefix, f)
		}
	}

	amount := numberPattern + multiplierPattern
	if len(prefix) > 0 {
		amount = `(?:(?:` + markerAlternation(prefix) + `)\s?)?` + amount
	}
	trailingCurrency := ""
	if len(suffix) > 0 {
		trailingCurrency = `(?:\s*(?:` + markerAlternation(suffix) + `)\b)?`
	}

	var adverbs []string
	for _, kw := range keywords {
		if strings.HasSuffix(kw, "ly") || strings.HasPrefix(kw, "annual") {
			adverbs = append(adverbs, kw)
		}
	}
	cadence := `(?:\s*(?:/|\bper\b|\ban?\b|\beach\b)\s*(?:` + alternation(keywords) + `)\b`
	if len(adverbs) > 0 {
		cadence += `|\s+(?:` + alternation(adverbs) + `)\b`
	}
	cadence += `)`
	tail := trailingCurrency + cadence + `?`

	s.rangeRe = regexp.MustCompile(`(?i)(` + amount + `)` + separatorPattern + `(` + amount + `)` + tail)
	s.upToRe = regexp.MustCompile(`(?i)\bup\s+to\s+(` + amount + `)` + tail)
	s.fromRe = regexp.MustCompile(`(?i)\b(?:starting\s+(?:at|from)|starts\s+at|from|at\s+least|minimum(?:\s+of)?)\s+(` + amount + `)` + tail)
	s.plusRe = regexp.MustCompile(`(?i)(` + amount + `)\+` + tail)
	s.singleRe = regexp.MustCompile(`(?i)(` + amount + `)` + trailingCurrency + cadence)
}

type bound int

const (
	lowerBound bound = iota
	upperBound
)

// Extract locates the first salary mention in text and returns it
// normalized, or nil when text mentions no salary. Ranges win over single
// bounds, which win over a lone amount with an explicit cadence; within
// each kind the earliest mention wins. A candidate must name a currency or
// a cadence, so "3-5 years" is never read as pay.
func (s *Scanner) Extract(text string) *Details {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if d := s.extractRange(text); d != nil {
		return d
	}
	if d := s.extractBound(text); d != nil {
		return d
	}
	return s.extractSingle(text)
}

func (s *Scanner) extractRange(text string) *Details {
	for _, loc := range s.rangeRe.FindAllStringSubmatchIndex(text, -1) {
		match := text[loc[0]:loc[1]]
		if !s.salaryLike(match, false) {
			continue
		}
		lo, loMult, okLo := parseAmount(text[loc[2]:loc[3]])
		hi, hiMult, okHi := parseAmount(text[loc[4]:loc[5]])
		if !okLo || !okHi {
			continue
		}
		// "$45-55k" carries the suffix on the upper figure only; "$800-1.2k"
		// is already complete on the left.
		if loMult == 1 && hiMult > 1 && lo*hiMult <= hi {
			lo = roundCents(lo * hiMult)
		}
		if !plausibleSpread(lo, hi) {
			continue
		}
		return s.fromMatch(match, &lo, &hi)
	}
	return nil
}

func (s *Scanner) extractBound(text string) *Details {
	type candidate struct {
		start, end  int
		amountStart int
		amountEnd   int
		which       bound
	}
	var best *candidate
	consider := func(re *regexp.Regexp, which bound) {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			if best != nil && loc[0] >= best.start {
				return
			}
			if !s.salaryLike(text[loc[0]:loc[1]], false) {
				continue
			}
			best = &candidate{start: loc[0], end: loc[1], amountStart: loc[2], amountEnd: loc[3], which: which}
			return
		}
	}
	consider(s.upToRe, upperBound)
	consider(s.fromRe, lowerBound)
	consider(s.plusRe, lowerBound)
	if best == nil {
		return nil
	}

	v, _, ok := parseAmount(text[best.amountStart:best.amountEnd])
	if !ok {
		return nil
	}
	match := text[best.start:best.end]
	if best.which == upperBound {
		return s.fromMatch(match, nil, &v)
	}
	return s.fromMatch(match, &v, nil)
}

func (s *Scanner) extractSingle(text string) *Details {
	for _, loc := range s.singleRe.FindAllStringSubmatchIndex(text, -1) {
		match := text[loc[0]:loc[1]]
		if !s.salaryLike(match, true) {
			continue
		}
		v, _, ok := parseAmount(text[loc[2]:loc[3]])
		if !ok {
			continue
		}
		lo, hi := v, v
		return s.fromMatch(match, &lo, &hi)
	}
	return nil
}

// maxSpread bounds how far apart the two figures of a range may be.
const maxSpread = 100

// plausibleSpread rejects ranges such as "2010 - $5M" whose figures are
// unrelated numbers rather than two ends of one pay band.
func plausibleSpread(a, b float64) bool {
	lo, hi := min(a, b), max(a, b)
	return lo > 0 && hi <= lo*maxSpread
}

// salaryLike reports whether a candidate names a currency or a cadence.
// With both set, it must name the two.
func (s *Scanner) salaryLike(match string, both bool) bool {
	hasCurrency := s.DetectCurrency(match) != ""
	hasPeriod := s.DetectPeriod(match) != ""
	if both {
		return hasCurrency && hasPeriod
	}
	return hasCurrency || hasPeriod
}

func (s *Scanner) fromMatch(match string, lo, hi *float64) *Details {
	in := &Input{
		Range:    strings.TrimSpace(match),
		Min:      Amount{Number: lo},
		Max:      Amount{Number: hi},
		Currency: s.DetectCurrency(match),
		Period:   string(s.DetectPeriod(match)),
	}
	return s.normalize(in, false)
}

// Extract runs the default Scanner's Extract.
func Extract(text string) *Details { return defaultScanner.Extract(text) }
