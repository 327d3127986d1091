package engine

import (
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/llm"

	"github.com/anatolykoptev/go_tuneit/internal/salary"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	LLMAPIKey            string
	LLMAPIKeyFallbacks   []string
	LLMAPIBase           string
	LLMModel             string // job and base-resume formatting
	LLMOptimizeModel     string // resume tailoring
	LLMTemperature       float64
	LLMMaxTokens         int
	LLMRatePerSec        float64 // 0 = unlimited
	MaxContentChars      int
	FetchTimeout         time.Duration
	DatabaseURL          string // empty = SQLite store
	TrackerDBPath        string
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	DevFallback          bool   // local formatting when no LLM key is set
	DefaultUserID        string // used when a tool call omits user_id
	HTTPClient           *http.Client
	LLMClient            *llm.Client
	OptimizeClient       *llm.Client     // nil = LLMClient
	Salary               *salary.Scanner // nil = salary.Default()
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages.
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.Salary == nil {
		c.Salary = salary.Default()
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.MaxContentChars <= 0 {
		c.MaxContentChars = 12000
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 15 * time.Second
	}
	cfg = c
	Cfg = &cfg
	initLimiter(c.LLMRatePerSec)
}

// Salary returns the configured salary scanner.
func Salary() *salary.Scanner {
	if cfg.Salary == nil {
		return salary.Default()
	}
	return cfg.Salary
}
