// go_tuneit: salary extraction, job-description formatting and resume
// tailoring MCP server.
//
// Exposes salary_*, job_* and resume_* MCP tools over HTTP. Jobs and base
// resumes live in SQLite by default, or Postgres when DATABASE_URL is set.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_tuneit/internal/engine"
	"github.com/anatolykoptev/go_tuneit/internal/engine/jobs"
	"github.com/anatolykoptev/go_tuneit/internal/jobserver"
	"github.com/anatolykoptev/go_tuneit/internal/salary"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	initEngine()
	store := initStore()
	if store != nil {
		defer store.Close()
	}

	slog.Info("starting go_tuneit",
		slog.String("port", mcpPort),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_tuneit",
		Version: version,
	}, nil)

	jobserver.RegisterTools(server)
	slog.Info("tools registered", slog.Int("count", jobserver.ToolCount))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_tuneit",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 300 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	c := engine.Config{
		LLMAPIKey:            env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks:   env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:           env.Str("LLM_API_BASE", "https://api.openai.com/v1"),
		LLMModel:             env.Str("LLM_MODEL", "gpt-4o-mini"),
		LLMOptimizeModel:     env.Str("LLM_OPTIMIZE_MODEL", "gpt-5-mini"),
		LLMTemperature:       env.Float("LLM_TEMPERATURE", 0.3),
		LLMMaxTokens:         env.Int("LLM_MAX_TOKENS", 4096),
		LLMRatePerSec:        env.Float("LLM_RATE_PER_SEC", 0),
		MaxContentChars:      env.Int("MAX_CONTENT_CHARS", 12000),
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", 15*time.Second),
		DatabaseURL:          env.Str("DATABASE_URL", ""),
		TrackerDBPath:        env.Str("TRACKER_DB_PATH", jobs.DefaultSQLitePath()),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		DevFallback:          envBool("DEV_FALLBACK", true),
		DefaultUserID:        env.Str("DEFAULT_USER_ID", ""),
		HTTPClient: &http.Client{
			Timeout: 20 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	if path := env.Str("SALARY_VOCAB_FILE", ""); path != "" {
		v, err := salary.LoadVocabulary(path)
		if err != nil {
			slog.Warn("salary vocabulary load failed, using defaults", slog.String("path", path), slog.Any("error", err))
		} else {
			c.Salary = salary.NewScanner(v)
			slog.Info("salary vocabulary loaded", slog.String("path", path))
		}
	}

	if c.LLMAPIKey != "" {
		httpClient := &http.Client{Timeout: 120 * time.Second}
		c.LLMClient = llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
			llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
			llm.WithMaxTokens(c.LLMMaxTokens),
			llm.WithTemperature(c.LLMTemperature),
			llm.WithHTTPClient(httpClient),
		)
		if c.LLMOptimizeModel != "" && c.LLMOptimizeModel != c.LLMModel {
			c.OptimizeClient = llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMOptimizeModel,
				llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
				llm.WithMaxTokens(c.LLMMaxTokens),
				llm.WithTemperature(c.LLMTemperature),
				llm.WithHTTPClient(httpClient),
			)
		}
	} else if c.DevFallback {
		slog.Warn("LLM_API_KEY not set, formatting and tailoring use local fallbacks")
	}

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 15*time.Minute)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}

// initStore opens Postgres when DATABASE_URL is set, otherwise the local
// SQLite file. A Postgres failure falls back to SQLite.
func initStore() jobs.Store {
	if url := engine.Cfg.DatabaseURL; url != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		pg, err := jobs.ConnectPostgresStore(ctx, url)
		if err == nil {
			jobs.SetStore(pg)
			return pg
		}
		slog.Warn("postgres store init failed, falling back to sqlite", slog.Any("error", err))
	}

	s, err := jobs.OpenSQLiteStore(engine.Cfg.TrackerDBPath)
	if err != nil {
		slog.Error("sqlite store init failed, job tools disabled", slog.Any("error", err))
		return nil
	}
	jobs.SetStore(s)
	slog.Info("job store initialized", slog.String("path", engine.Cfg.TrackerDBPath))
	return s
}

func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(env.Str(key, strconv.FormatBool(def)))
	if err != nil {
		return def
	}
	return v
}
