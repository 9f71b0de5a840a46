package configs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `json:"server" yaml:"server"`

	// 数据源配置
	Moralis MoralisConfig `json:"moralis" yaml:"moralis"`
	Twitter TwitterConfig `json:"twitter" yaml:"twitter"`

	// AI 模型参数
	AIConfig AIConfig `json:"ai_config" yaml:"ai_config"`

	// 浏览器抓取配置
	Scrape ScrapeConfig `json:"scrape" yaml:"scrape"`

	Proxy string `json:"proxy" yaml:"proxy"` // 出站代理地址
}

type ServerConfig struct {
	Host         string        `json:"host" yaml:"host"`
	Port         int           `json:"port" yaml:"port"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
}

type MoralisConfig struct {
	APIKey string `json:"api_key" yaml:"api_key"` // Moralis deep-index API密钥
	Chain  string `json:"chain" yaml:"chain"`     // 默认链 (base, eth, bsc...)
}

type TwitterConfig struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
}

type AIConfig struct {
	APIKey      string  `json:"api_key" yaml:"api_key"`           // AI服务API密钥
	BaseURL     string  `json:"base_url" yaml:"base_url"`         // OpenAI兼容端点 (Groq/DeepSeek)
	ModelType   string  `json:"model_type" yaml:"model_type"`     // AI模型类型
	Temperature float32 `json:"temperature" yaml:"temperature"`   // 生成温度
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens"`     // 最大生成token数
}

type ScrapeConfig struct {
	Headless    bool          `json:"headless" yaml:"headless"`
	WaitTimeout time.Duration `json:"wait_timeout" yaml:"wait_timeout"` // 元素等待超时
	StallBudget int           `json:"stall_budget" yaml:"stall_budget"` // 滚动停滞重试预算
}

// MissingKeyError reports a required credential or key that was not
// configured. Surfaced to clients as a configuration error, never a panic.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", e.Key)
}

// Default returns a config with workable defaults; credentials still have to
// come from the file or environment.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8000,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 120 * time.Second,
		},
		Moralis: MoralisConfig{Chain: "base"},
		AIConfig: AIConfig{
			BaseURL:     "https://api.groq.com/openai/v1",
			ModelType:   "llama-3.3-70b-versatile",
			Temperature: 0.3,
			MaxTokens:   1024,
		},
		Scrape: ScrapeConfig{
			Headless:    true,
			WaitTimeout: 20 * time.Second,
			StallBudget: 5,
		},
	}
}

// Load reads the config file (yaml or json by extension), then applies
// environment variable overrides for credentials.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		switch filepath.Ext(path) {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(raw, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		default:
			if err := json.Unmarshal(raw, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	config.applyEnv()
	return config, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("MORALIS_API_KEY"); v != "" {
		c.Moralis.APIKey = v
	}
	if v := os.Getenv("AI_API_KEY"); v != "" {
		c.AIConfig.APIKey = v
	}
	if v := os.Getenv("TWITTER_USERNAME"); v != "" {
		c.Twitter.Username = v
	}
	if v := os.Getenv("TWITTER_PASSWORD"); v != "" {
		c.Twitter.Password = v
	}
	if v := os.Getenv("HTTP_PROXY"); v != "" && c.Proxy == "" {
		c.Proxy = v
	}
}
