package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

const maxBodyBytes = 5 << 20

// User-Agent sent when fetching job postings.
const UserAgentChrome = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

var (
	htmlTagRe    = regexp.MustCompile(`(?i)<(html|body|div|p|ul|ol|li|br|h[1-6]|span|table|strong|em|section|article)\b[^>]*>`)
	whitespaceRe = regexp.MustCompile(`[ \t\f\v]+`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
)

// Page chrome removed before conversion.
var removeSelectors = []string{
	"script", "style", "noscript", "iframe", "svg", "form", "button",
	"header", "footer", "nav", "aside",
	".advertisement", ".ad", ".sidebar", ".comments", ".cookie-banner",
	"[role=navigation]", "[role=banner]", "[role=contentinfo]",
}

// Containers that usually hold the posting body, in preference order.
var contentSelectors = []string{
	"[data-automation=jobDescription]",
	".job-description", "#job-description", ".jobsearch-JobComponent-description",
	".posting-page", ".description__text", "#content .job",
	"article", "main", ".content", "#content",
}

// LooksLikeHTML reports whether s contains common block-level HTML tags.
func LooksLikeHTML(s string) bool {
	return htmlTagRe.MatchString(s)
}

// FetchJobPosting downloads a job posting page and returns its title and
// body converted to Markdown.
func FetchJobPosting(ctx context.Context, rawURL string) (title, markdown string, err error) {
	metrics.FetchRequests.Add(1)
	defer func() {
		if err != nil {
			metrics.FetchErrors.Add(1)
		}
	}()

	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", "", fmt.Errorf("fetch: invalid URL %q", rawURL)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()

	resp, err := RetryHTTP(ctx, DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", UserAgentChrome)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")
		return cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return "", "", fmt.Errorf("fetch %s: %w", u.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("fetch %s: status %d", u.Host, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", "", fmt.Errorf("fetch %s: read body: %w", u.Host, err)
	}

	title, markdown, err = HTMLToMarkdown(string(body))
	if err != nil {
		return "", "", fmt.Errorf("fetch %s: %w", u.Host, err)
	}
	return title, TruncateRunes(markdown, cfg.MaxContentChars, "..."), nil
}

// HTMLToMarkdown strips page chrome from an HTML document and converts the
// main content to Markdown.
func HTMLToMarkdown(html string) (title, markdown string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", fmt.Errorf("parse html: %w", err)
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())
	if og, ok := doc.Find("meta[property='og:title']").Attr("content"); ok && title == "" {
		title = strings.TrimSpace(og)
	}

	doc.Find(strings.Join(removeSelectors, ", ")).Remove()

	content := doc.Find("body")
	for _, sel := range contentSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 && strings.TrimSpace(s.Text()) != "" {
			content = s
			break
		}
	}
	if content.Length() == 0 {
		content = doc.Selection
	}

	inner, err := content.Html()
	if err != nil {
		return title, "", fmt.Errorf("render html: %w", err)
	}
	md, err := htmltomarkdown.ConvertString(inner)
	if err != nil {
		text := PlainText(inner)
		if text == "" {
			return title, "", fmt.Errorf("convert html: %w", err)
		}
		return title, text, nil
	}
	md = blankLinesRe.ReplaceAllString(strings.TrimSpace(md), "\n\n")
	if md == "" {
		return title, "", errors.New("no readable content")
	}
	return title, md, nil
}

// PlainText returns the visible text of an HTML fragment with runs of
// whitespace collapsed and blank lines removed.
func PlainText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript").Remove()
	doc.Find("br, p, div, li, h1, h2, h3, h4, h5, h6, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		line = strings.TrimSpace(whitespaceRe.ReplaceAllString(line, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
