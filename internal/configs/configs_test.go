package configs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	config := Default()

	assert.Equal(t, 8000, config.Server.Port)
	assert.Equal(t, "base", config.Moralis.Chain)
	assert.Equal(t, "https://api.groq.com/openai/v1", config.AIConfig.BaseURL)
	assert.True(t, config.Scrape.Headless)
	assert.Equal(t, 5, config.Scrape.StallBudget)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  host: "127.0.0.1"
  port: 9090
moralis:
  api_key: "file-key"
  chain: "eth"
ai_config:
  model_type: "deepseek-chat"
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	t.Setenv("MORALIS_API_KEY", "")

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", config.Server.Host)
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, "file-key", config.Moralis.APIKey)
	assert.Equal(t, "eth", config.Moralis.Chain)
	assert.Equal(t, "deepseek-chat", config.AIConfig.ModelType)
	// 未覆盖的字段保持默认值
	assert.Equal(t, float32(0.3), config.AIConfig.Temperature)
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	raw := `{"server":{"port":7070},"twitter":{"username":"alice","password":"secret"}}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, "alice", config.Twitter.Username)
	assert.Equal(t, "secret", config.Twitter.Password)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`moralis: {api_key: "file-key"}`), 0o644))

	t.Setenv("MORALIS_API_KEY", "env-key")
	t.Setenv("AI_API_KEY", "env-ai-key")
	t.Setenv("TWITTER_USERNAME", "env-user")

	config, err := Load(path)
	require.NoError(t, err)

	// 环境变量优先于配置文件
	assert.Equal(t, "env-key", config.Moralis.APIKey)
	assert.Equal(t, "env-ai-key", config.AIConfig.APIKey)
	assert.Equal(t, "env-user", config.Twitter.Username)
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("MORALIS_API_KEY", "env-only")

	config, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-only", config.Moralis.APIKey)
	assert.Equal(t, 8000, config.Server.Port)
}

func TestMissingKeyError(t *testing.T) {
	err := &MissingKeyError{Key: "MORALIS_API_KEY"}
	assert.Contains(t, err.Error(), "MORALIS_API_KEY")
}
