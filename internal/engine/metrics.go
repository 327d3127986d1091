package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	LLMCalls          atomic.Int64
	LLMErrors         atomic.Int64
	LLMFallbacks      atomic.Int64
	FetchRequests     atomic.Int64
	FetchErrors       atomic.Int64
	JobsFormatted     atomic.Int64
	SalaryFromMarker  atomic.Int64
	SalaryFromSection atomic.Int64
	SalaryFromSource  atomic.Int64
	SalaryMissing     atomic.Int64
	ResumesOptimized  atomic.Int64
	EventsPublished   atomic.Int64
}

// SalarySource names where a job's salary details were found.
type SalarySource string

const (
	SalaryFromMarker  SalarySource = "marker"
	SalaryFromSection SalarySource = "section"
	SalaryFromSource  SalarySource = "source"
	SalaryMissing     SalarySource = "none"
)

var metricKeys = []string{
	"llm_calls", "llm_errors", "llm_fallbacks",
	"fetch_requests", "fetch_errors",
	"jobs_formatted",
	"salary_from_marker", "salary_from_section", "salary_from_source", "salary_missing",
	"resumes_optimized", "events_published",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"llm_calls":           metrics.LLMCalls.Load(),
		"llm_errors":          metrics.LLMErrors.Load(),
		"llm_fallbacks":       metrics.LLMFallbacks.Load(),
		"fetch_requests":      metrics.FetchRequests.Load(),
		"fetch_errors":        metrics.FetchErrors.Load(),
		"jobs_formatted":      metrics.JobsFormatted.Load(),
		"salary_from_marker":  metrics.SalaryFromMarker.Load(),
		"salary_from_section": metrics.SalaryFromSection.Load(),
		"salary_from_source":  metrics.SalaryFromSource.Load(),
		"salary_missing":      metrics.SalaryMissing.Load(),
		"resumes_optimized":   metrics.ResumesOptimized.Load(),
		"events_published":    metrics.EventsPublished.Load(),
		"cache_hits":          hits,
		"cache_misses":        misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the jobs sub-package.
func IncrLLMFallbacks()     { metrics.LLMFallbacks.Add(1) }
func IncrResumesOptimized() { metrics.ResumesOptimized.Add(1) }

// IncrJobFormatted counts a formatted job description by where its salary came from.
func IncrJobFormatted(src SalarySource) {
	metrics.JobsFormatted.Add(1)
	switch src {
	case SalaryFromMarker:
		metrics.SalaryFromMarker.Add(1)
	case SalaryFromSection:
		metrics.SalaryFromSection.Add(1)
	case SalaryFromSource:
		metrics.SalaryFromSource.Add(1)
	default:
		metrics.SalaryMissing.Add(1)
	}
}

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
