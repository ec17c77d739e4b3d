package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the runtime configuration shared by every subcommand.
type Config struct {
	ServerAddr     string        `yaml:"server_addr"`
	CorpusPath     string        `yaml:"corpus_path"`
	CorpusDoc      string        `yaml:"corpus_doc"`
	PgConn         string        `yaml:"pg_conn"`
	Provider       string        `yaml:"provider"`
	ChatModel      string        `yaml:"chat_model"`
	LMBaseURL      string        `yaml:"lm_base_url"`
	GeminiBaseURL  string        `yaml:"gemini_base_url"`
	APIKey         string        `yaml:"api_key"`
	ContextWindow  int           `yaml:"context_window"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	LogLevel       string        `yaml:"log_level"`
}

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

func defaults() *Config {
	return &Config{
		ServerAddr:     ":8080",
		CorpusPath:     "pol.txt",
		Provider:       ProviderGemini,
		ContextWindow:  300,
		RequestTimeout: 60 * time.Second,
		LogLevel:       "info",
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment, in increasing priority. A .env file in the working
// directory is read first. An empty path falls back to CONFIG_FILE.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := readFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.ServerAddr = getenv("SERVER_ADDR", cfg.ServerAddr)
	cfg.CorpusPath = getenv("CORPUS_PATH", cfg.CorpusPath)
	cfg.CorpusDoc = getenv("CORPUS_DOC", cfg.CorpusDoc)
	cfg.PgConn = getenv("PG_CONN", cfg.PgConn)
	cfg.Provider = getenv("AI_PROVIDER", cfg.Provider)
	cfg.ChatModel = getenv("LLM_MODEL", cfg.ChatModel)
	cfg.LMBaseURL = getenv("LMSTUDIO_BASE_URL", cfg.LMBaseURL)
	cfg.GeminiBaseURL = getenv("GEMINI_BASE_URL", cfg.GeminiBaseURL)
	cfg.APIKey = getenv("AI_API_KEY", cfg.APIKey)
	cfg.LogLevel = getenv("LOG_LEVEL", cfg.LogLevel)

	var err error
	if cfg.ContextWindow, err = getenvInt("CONTEXT_WINDOW", cfg.ContextWindow); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getenvDuration("REQUEST_TIMEOUT", cfg.RequestTimeout); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown provider %q (want %s or %s)", c.Provider, ProviderGemini, ProviderOpenAI)
	}
	if c.ContextWindow <= 0 {
		return errors.New("context_window must be positive")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}
	if c.CorpusDoc != "" && c.PgConn == "" {
		return errors.New("corpus_doc requires pg_conn")
	}
	return nil
}

// UseDatabase reports whether the corpus is read from Postgres.
func (c *Config) UseDatabase() bool {
	return c.CorpusDoc != ""
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

func getenvDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}
