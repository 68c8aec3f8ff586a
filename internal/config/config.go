package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pkg/errors"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Storage StorageConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, errors.Wrap(err, "read environment")
	}

	addr, err := normalizeAddr(cfg.Server.Port)
	if err != nil {
		return nil, err
	}
	cfg.Server.Addr = addr

	if err := cfg.AI.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Port      string `env:"PORT" env-default:"3000"`
	LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
	StaticDir string `env:"STATIC_DIR"`

	// Addr 由 Port 推导而来。
	Addr string
}

// normalizeAddr 解析服务器监听地址。
func normalizeAddr(port string) (string, error) {
	port = strings.TrimSpace(port)
	if port == "" {
		port = "3000"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return port, nil
	}

	if strings.Contains(port, " ") {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}

	return ":" + port, nil
}

// AIConfig 描述大模型相关配置。每个提供方只有在配置了密钥时才会启用。
type AIConfig struct {
	DefaultModel string `env:"DEFAULT_MODEL" env-default:"deepseek-chat"`

	DeepSeekAPIKey  string   `env:"DEEPSEEK_API_KEY"`
	DeepSeekBaseURL string   `env:"DEEPSEEK_BASE_URL" env-default:"https://api.deepseek.com"`
	DeepSeekModels  []string `env:"DEEPSEEK_MODELS" env-separator:"," env-default:"deepseek-chat,deepseek-reasoner"`

	OpenAIAPIKey  string   `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string   `env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
	OpenAIModels  []string `env:"OPENAI_MODELS" env-separator:"," env-default:"gpt-4o-mini,gpt-4o"`

	ArkAPIKey    string   `env:"ARK_API_KEY"`
	ArkAccessKey string   `env:"ARK_ACCESS_KEY"`
	ArkSecretKey string   `env:"ARK_SECRET_KEY"`
	ArkBaseURL   string   `env:"ARK_BASE_URL" env-default:"https://ark.cn-beijing.volces.com/api/v3"`
	ArkRegion    string   `env:"ARK_REGION" env-default:"cn-beijing"`
	ArkModels    []string `env:"ARK_MODELS" env-separator:","`

	AnthropicAPIKey string   `env:"ANTHROPIC_API_KEY"`
	AnthropicModels []string `env:"ANTHROPIC_MODELS" env-separator:"," env-default:"claude-3-5-haiku-latest,claude-3-7-sonnet-latest"`

	Temperature       float32 `env:"TEMPERATURE" env-default:"0.7"`
	MaxTokens         int     `env:"MAX_TOKENS" env-default:"512"`
	HistoryTokenLimit int     `env:"HISTORY_TOKEN_LIMIT" env-default:"3500"`
}

// StorageConfig 描述会话记录的存储方式。REDIS_ADDR 为空时使用内存存储。
type StorageConfig struct {
	RedisAddr          string        `env:"REDIS_ADDR"`
	RedisPassword      string        `env:"REDIS_PASSWORD"`
	RedisDB            int           `env:"REDIS_DB" env-default:"0"`
	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" env-default:"30m"`
}

// UseRedis reports whether transcripts go to Redis.
func (c StorageConfig) UseRedis() bool {
	return strings.TrimSpace(c.RedisAddr) != ""
}

// DeepSeekEnabled 表示是否提供了 DeepSeek 密钥。
func (c AIConfig) DeepSeekEnabled() bool {
	return c.DeepSeekAPIKey != ""
}

// OpenAIEnabled 表示是否提供了 OpenAI 密钥。
func (c AIConfig) OpenAIEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// ArkEnabled 表示是否提供了 Ark 所需的密钥。
func (c AIConfig) ArkEnabled() bool {
	return c.ArkAPIKey != "" || (c.ArkAccessKey != "" && c.ArkSecretKey != "")
}

// AnthropicEnabled 表示是否提供了 Anthropic 密钥。
func (c AIConfig) AnthropicEnabled() bool {
	return c.AnthropicAPIKey != ""
}

// Enabled 表示至少有一个提供方可用，对应健康检查中的 hasApiKey。
func (c AIConfig) Enabled() bool {
	return c.DeepSeekEnabled() || c.OpenAIEnabled() || c.ArkEnabled() || c.AnthropicEnabled()
}

// NewArkModel 使用配置创建一个 Ark 模型实例。
func (c AIConfig) NewArkModel(ctx context.Context, modelName string) (model.BaseChatModel, error) {
	if !c.ArkEnabled() {
		return nil, errors.New("Ark 凭证缺失，至少提供 ARK_API_KEY 或 AK/SK 组合")
	}
	if modelName == "" {
		return nil, errors.New("ark model name is required")
	}

	temperature := c.Temperature
	var maxTokens *int
	if c.MaxTokens > 0 {
		val := c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.ArkBaseURL,
		Region:      c.ArkRegion,
		APIKey:      c.ArkAPIKey,
		AccessKey:   c.ArkAccessKey,
		SecretKey:   c.ArkSecretKey,
		Model:       modelName,
		MaxTokens:   maxTokens,
		Temperature: &temperature,
	}

	chatModel, err := ark.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "create ark chat model")
	}
	return chatModel, nil
}

func (c AIConfig) validate() error {
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("invalid TEMPERATURE value %v: must be within [0, 2]", c.Temperature)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("invalid MAX_TOKENS value %d", c.MaxTokens)
	}
	if c.HistoryTokenLimit < 1 {
		return fmt.Errorf("invalid HISTORY_TOKEN_LIMIT value %d", c.HistoryTokenLimit)
	}
	return nil
}
