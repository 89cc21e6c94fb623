package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/kelseyhightower/envconfig"
	"github.com/samber/lo"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	Log     LogConfig
	Storage StorageConfig
	Auth    AuthConfig
	AI      AIConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	var cfg Config

	sections := []struct {
		name   string
		target any
	}{
		{"server", &cfg.Server},
		{"log", &cfg.Log},
		{"storage", &cfg.Storage},
		{"auth", &cfg.Auth},
		{"ai", &cfg.AI},
	}
	for _, section := range sections {
		if err := envconfig.Process("", section.target); err != nil {
			return nil, fmt.Errorf("invalid %s configuration: %w", section.name, err)
		}
	}

	addr, err := normalizeAddr(cfg.Server.Port)
	if err != nil {
		return nil, err
	}
	cfg.Server.Addr = addr

	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
	Addr string `ignored:"true"`
}

// normalizeAddr 解析服务器监听地址。
func normalizeAddr(port string) (string, error) {
	port = strings.TrimSpace(port)
	if port == "" {
		port = "8080"
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

// LogConfig 描述日志输出。
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverBadger = "badger"
)

// StorageConfig 描述消息存储。
type StorageConfig struct {
	Driver       string   `envconfig:"STORAGE_DRIVER" default:"memory"`
	BadgerPath   string   `envconfig:"BADGER_PATH" default:"data/badger"`
	SeedAccounts []string `envconfig:"SEED_ACCOUNTS"`
}

func (c *StorageConfig) validate() error {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	if c.Driver != DriverMemory && c.Driver != DriverBadger {
		return fmt.Errorf("invalid STORAGE_DRIVER value %q: want %s or %s", c.Driver, DriverMemory, DriverBadger)
	}
	c.SeedAccounts = lo.Uniq(lo.Compact(lo.Map(c.SeedAccounts, func(h string, _ int) string {
		return strings.TrimSpace(h)
	})))
	return nil
}

// AuthConfig 描述账户所有者令牌校验。
type AuthConfig struct {
	JWTSecret string        `envconfig:"AUTH_JWT_SECRET"`
	Issuer    string        `envconfig:"AUTH_TOKEN_ISSUER" default:"feedbackhub"`
	TokenTTL  time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"24h"`
}

// Enabled 表示是否可以校验所有者令牌。
func (c AuthConfig) Enabled() bool {
	return strings.TrimSpace(c.JWTSecret) != ""
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	APIKey            string        `envconfig:"ARK_API_KEY"`
	AccessKey         string        `envconfig:"ARK_ACCESS_KEY"`
	SecretKey         string        `envconfig:"ARK_SECRET_KEY"`
	Model             string        `envconfig:"ARK_MODEL"`
	BaseURL           string        `envconfig:"ARK_BASE_URL" default:"https://ark.cn-beijing.volces.com/api/v3"`
	Region            string        `envconfig:"ARK_REGION" default:"cn-beijing"`
	Temperature       *float32      `envconfig:"ARK_TEMPERATURE"`
	TopP              *float32      `envconfig:"ARK_TOP_P"`
	MaxTokens         *int          `envconfig:"ARK_MAX_TOKENS"`
	SuggestionTimeout time.Duration `envconfig:"SUGGESTION_TIMEOUT" default:"30s"`
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + ARK_MODEL 或 AK/SK 组合")
	}

	return ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		TopP:        c.TopP,
	})
}
