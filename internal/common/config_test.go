package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, 8000, config.Server.Port)
	assert.Equal(t, "claude", config.LLM.Provider)
	assert.Equal(t, 2, config.Chat.MaxRounds)
	assert.Equal(t, 2, config.Session.MaxHistory)
	assert.Equal(t, 5, config.Search.MaxResults)
	assert.Equal(t, 800, config.Claude.MaxTokens)
	assert.Equal(t, float64(0), config.Claude.Temperature)

	require.NoError(t, config.Validate())
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doceo.toml")
	content := `
environment = "production"

[server]
port = 9000
host = "0.0.0.0"

[llm]
provider = "gemini"

[chat]
max_rounds = 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "production", config.Environment)
	assert.Equal(t, 9000, config.Server.Port)
	assert.Equal(t, "gemini", config.LLM.Provider)
	assert.Equal(t, 3, config.Chat.MaxRounds)

	// Untouched sections keep their defaults
	assert.Equal(t, 2, config.Session.MaxHistory)
	assert.Equal(t, "claude-sonnet-4-20250514", config.Claude.Model)
}

func TestLoadFromFileMissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DOCEO_SERVER_PORT", "7777")
	t.Setenv("DOCEO_LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("DOCEO_CHAT_MAX_ROUNDS", "4")

	config := NewDefaultConfig()
	applyEnvOverrides(config)

	assert.Equal(t, 7777, config.Server.Port)
	assert.Equal(t, "gemini", config.LLM.Provider)
	assert.Equal(t, "test-key", config.Gemini.APIKey)
	assert.Equal(t, 4, config.Chat.MaxRounds)
}

func TestValidateRejectsBadValues(t *testing.T) {
	config := NewDefaultConfig()
	config.LLM.Provider = "openai"
	assert.Error(t, config.Validate())

	config = NewDefaultConfig()
	config.Server.Port = 0
	assert.Error(t, config.Validate())

	config = NewDefaultConfig()
	config.Chat.MaxRounds = 0
	assert.Error(t, config.Validate())
}
