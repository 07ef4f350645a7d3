package common

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment" validate:"omitempty,oneof=development production"`
	Server      ServerConfig  `toml:"server"`
	Logging     LoggingConfig `toml:"logging"`
	Storage     StorageConfig `toml:"storage"`
	LLM         LLMConfig     `toml:"llm"`
	Claude      ClaudeConfig  `toml:"claude"`
	Gemini      GeminiConfig  `toml:"gemini"`
	Chat        ChatConfig    `toml:"chat"`
	Session     SessionConfig `toml:"session"`
	Search      SearchConfig  `toml:"search"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gt=0,lte=65535"`
	Host string `toml:"host" validate:"required"`
}

type LoggingConfig struct {
	Level      string   `toml:"level" validate:"oneof=debug info warn error"`
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

// LLMConfig selects the chat-completion provider
type LLMConfig struct {
	Provider string `toml:"provider" validate:"oneof=claude gemini"` // "claude" or "gemini"
}

// ClaudeConfig contains Anthropic Claude API settings
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"` // ANTHROPIC_API_KEY env or config
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float64 `toml:"temperature"`
	Timeout     string  `toml:"timeout"`    // e.g., "2m"
	RateLimit   string  `toml:"rate_limit"` // Minimum interval between API calls, e.g., "1s"
}

// GeminiConfig contains Google Gemini API settings
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"` // GEMINI_API_KEY env or config
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float64 `toml:"temperature"`
	Timeout     string  `toml:"timeout"`
	RateLimit   string  `toml:"rate_limit"` // Default 4s (15 RPM) for free tier
}

// ChatConfig controls the tool-augmented generation protocol
type ChatConfig struct {
	MaxRounds int `toml:"max_rounds" validate:"gte=1"` // Tool-calling rounds before tools are revoked
}

// SessionConfig controls per-session conversation retention
type SessionConfig struct {
	MaxHistory int `toml:"max_history" validate:"gte=0"` // Exchanges retained per session (FIFO)
}

// SearchConfig contains configuration for chunk retrieval
type SearchConfig struct {
	MaxResults int `toml:"max_results" validate:"gte=1"` // Chunks returned per content search
}

// NewDefaultConfig returns the default configuration
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8000,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:      "info",             // Info level for production (debug|info|warn|error)
			Output:     []string{"stdout"}, // Console only by default
			TimeFormat: "15:04:05",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/doceo",
				ResetOnStartup: false,
			},
		},
		LLM: LLMConfig{
			Provider: "claude",
		},
		Claude: ClaudeConfig{
			APIKey:      "", // User must provide API key (ANTHROPIC_API_KEY or config)
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   800,
			Temperature: 0, // Deterministic answers over course material
			Timeout:     "2m",
			RateLimit:   "1s",
		},
		Gemini: GeminiConfig{
			APIKey:      "", // User must provide API key (GEMINI_API_KEY or config)
			Model:       "gemini-2.0-flash",
			MaxTokens:   800,
			Temperature: 0,
			Timeout:     "2m",
			RateLimit:   "4s", // 15 RPM free tier
		},
		Chat: ChatConfig{
			MaxRounds: 2, // One tool round plus one chained follow-up
		},
		Session: SessionConfig{
			MaxHistory: 2, // Last 2 exchanges per session
		},
		Search: SearchConfig{
			MaxResults: 5,
		},
	}
}

// LoadFromFile loads configuration from a single TOML file
func LoadFromFile(path string) (*Config, error) {
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration with layered precedence:
// defaults -> file1 -> file2 -> ... -> environment variables.
// Later files override earlier ones; missing files are an error.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("DOCEO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("DOCEO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("DOCEO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if level := os.Getenv("DOCEO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if badgerPath := os.Getenv("DOCEO_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if provider := os.Getenv("DOCEO_LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = provider
	}

	// API keys follow the provider conventions first, DOCEO_* second
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if key := os.Getenv("DOCEO_CLAUDE_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("DOCEO_GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}

	if rounds := os.Getenv("DOCEO_CHAT_MAX_ROUNDS"); rounds != "" {
		if r, err := strconv.Atoi(rounds); err == nil {
			config.Chat.MaxRounds = r
		}
	}
	if history := os.Getenv("DOCEO_SESSION_MAX_HISTORY"); history != "" {
		if h, err := strconv.Atoi(history); err == nil {
			config.Session.MaxHistory = h
		}
	}
}

// Validate checks the configuration against the struct validation tags
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
