package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/anatolykoptev/go-kit/llm"
	"golang.org/x/time/rate"
)

// ErrLLMUnavailable is returned when no LLM client is configured.
var ErrLLMUnavailable = errors.New("llm: no API key configured")

// LLMRequest is a single chat completion.
type LLMRequest struct {
	Op          string // metrics and error prefix
	System      string
	Prompt      string
	Temperature float64 // 0 = configured default
	MaxTokens   int     // 0 = configured default
	Optimize    bool    // route to the resume-tailoring model
}

// CompleteFunc performs a chat completion and returns the raw response text.
type CompleteFunc func(ctx context.Context, req LLMRequest) (string, error)

var (
	completeMu sync.RWMutex
	complete   CompleteFunc = clientComplete
	overridden bool

	limiter *rate.Limiter
)

// SetCompleter replaces the completion backend. Passing nil restores the
// configured go-kit client.
func SetCompleter(fn CompleteFunc) {
	completeMu.Lock()
	defer completeMu.Unlock()
	if fn == nil {
		complete, overridden = clientComplete, false
		return
	}
	complete, overridden = fn, true
}

// LLMAvailable reports whether CallLLM can reach a model.
func LLMAvailable() bool {
	completeMu.RLock()
	defer completeMu.RUnlock()
	return overridden || (cfg.LLMAPIKey != "" && cfg.LLMClient != nil)
}

func initLimiter(perSec float64) {
	if perSec <= 0 {
		limiter = nil
		return
	}
	burst := int(perSec)
	if burst < 1 {
		burst = 1
	}
	limiter = rate.NewLimiter(rate.Limit(perSec), burst)
}

// CallLLM sends req and returns the response with code fences removed.
func CallLLM(ctx context.Context, req LLMRequest) (string, error) {
	if !LLMAvailable() {
		return "", ErrLLMUnavailable
	}
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%s: rate limit: %w", req.Op, err)
		}
	}

	completeMu.RLock()
	fn := complete
	completeMu.RUnlock()

	metrics.LLMCalls.Add(1)
	resp, err := fn(ctx, req)
	if err != nil {
		metrics.LLMErrors.Add(1)
		return "", fmt.Errorf("%s LLM: %w", req.Op, err)
	}
	out := NormalizeMarkdown(resp)
	if out == "" {
		metrics.LLMErrors.Add(1)
		return "", fmt.Errorf("%s LLM: empty response", req.Op)
	}
	return out, nil
}

func clientComplete(ctx context.Context, req LLMRequest) (string, error) {
	client := cfg.LLMClient
	if req.Optimize && cfg.OptimizeClient != nil {
		client = cfg.OptimizeClient
	}
	if client == nil {
		return "", ErrLLMUnavailable
	}
	temp := req.Temperature
	if temp == 0 {
		temp = cfg.LLMTemperature
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = cfg.LLMMaxTokens
	}
	return client.Complete(ctx, req.System, req.Prompt,
		llm.WithChatTemperature(temp),
		llm.WithChatMaxTokens(maxTokens),
	)
}

// stripFences removes a wrapping markdown code fence from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.Contains(s[:nl], " ") {
		s = s[nl+1:] // language tag: markdown, md, json
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// NormalizeMarkdown converts CRLF line endings, strips a wrapping code
// fence and trims surrounding whitespace.
func NormalizeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return stripFences(s)
}
