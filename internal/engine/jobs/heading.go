package jobs

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_tuneit/internal/engine"
)

const (
	unknownCompany = "Unknown Company"
	untitledRole   = "Untitled Role"
	untitledJob    = "Untitled Job"

	maxHeadingPart = 100
)

var (
	headingMarksRe = regexp.MustCompile(`^#+\s*`)
	schemeRe       = regexp.MustCompile(`(?i)^(https?:)?//`)
)

// DeriveCompanyAndTitle reads a "# Company: Title" heading from the first
// non-blank line of a formatted job description. Both parts fall back to
// placeholders and are capped at 100 characters.
func DeriveCompanyAndTitle(markdown string) (company, title string) {
	company, title = unknownCompany, untitledRole

	heading := strings.TrimSpace(headingMarksRe.ReplaceAllString(engine.FirstLine(markdown), ""))
	if heading == "" {
		return company, title
	}

	companyPart, titlePart, _ := strings.Cut(heading, ":")
	if c := strings.TrimSpace(companyPart); c != "" {
		company = c
	}
	if t := strings.TrimSpace(titlePart); t != "" {
		title = t
	}
	return engine.TruncateRunes(company, maxHeadingPart, ""), engine.TruncateRunes(title, maxHeadingPart, "")
}

// JobTitle returns the display title of a job description: its first
// non-image line with heading marks removed.
func JobTitle(markdown string) string {
	var first string
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if first == "" {
			first = line
		}
		if !strings.HasPrefix(line, "![") {
			first = line
			break
		}
	}
	if t := headingMarksRe.ReplaceAllString(first, ""); t != "" {
		return t
	}
	return untitledJob
}

// NormalizeOptionalURL validates an optional link typed by a user. Blank
// input yields "". A missing scheme defaults to https. label prefixes the
// error message, e.g. "Job apply URL".
func NormalizeOptionalURL(value, label string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", nil
	}
	if label == "" {
		label = "URL"
	}

	candidate := trimmed
	if !schemeRe.MatchString(trimmed) {
		candidate = "https://" + trimmed
	}

	u, err := url.Parse(candidate)
	if err != nil || (u.Scheme != "" && u.Host == "") {
		return "", fmt.Errorf("%s must be a valid URL (example: https://company.com/apply).", label)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%s must start with http:// or https://.", label)
	}
	return candidate, nil
}
