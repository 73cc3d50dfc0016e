package config

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// ProviderKind names a supported analysis backend
type ProviderKind string

const (
	ProviderMock    ProviderKind = "mock"
	ProviderGemini  ProviderKind = "gemini"
	ProviderOpenAI  ProviderKind = "openai"
	ProviderBedrock ProviderKind = "bedrock"
)

// ParseProviderKind validates a provider name
func ParseProviderKind(name string) (ProviderKind, error) {
	switch kind := ProviderKind(strings.ToLower(strings.TrimSpace(name))); kind {
	case ProviderMock, ProviderGemini, ProviderOpenAI, ProviderBedrock:
		return kind, nil
	default:
		return "", fmt.Errorf("unsupported LLM provider: %q", name)
	}
}

// LLMConfig represents the provider-independent analysis settings
type LLMConfig struct {
	Provider      string
	Timeout       time.Duration
	PreviewLength int
}

// MockConfig holds the scores reported by the offline analyzer
type MockConfig struct {
	ScamScore       int
	SuspiciousScore int
	SafeScore       int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// CacheConfig selects the fingerprint cache backing store
type CacheConfig struct {
	Type       string
	Path       string
	SQLitePath string
	MySQLDSN   string
}

// HistoryConfig selects the history ledger backing store
type HistoryConfig struct {
	Type       string
	Path       string
	SQLitePath string
}

// ServerConfig represents the HTTP server settings
type ServerConfig struct {
	ListenAddress   string
	MaxBodyBytes    int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider:      c.GetString("llm.provider"),
		Timeout:       c.durationOr("llm.timeout", 30*time.Second),
		PreviewLength: c.GetInt("llm.preview_length"),
	}
}

// GetMock returns the mock analyzer configuration
func (c *Config) GetMock() MockConfig {
	return MockConfig{
		ScamScore:       c.GetInt("mock.scam_score"),
		SuspiciousScore: c.GetInt("mock.suspicious_score"),
		SafeScore:       c.GetInt("mock.safe_score"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		BaseURL:     c.GetString("openai.base_url"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
	}
}

// GetCache returns the cache store configuration
func (c *Config) GetCache() CacheConfig {
	return CacheConfig{
		Type:       c.GetString("cache.type"),
		Path:       c.GetString("cache.path"),
		SQLitePath: c.GetString("cache.sqlite_path"),
		MySQLDSN:   c.GetString("cache.mysql_dsn"),
	}
}

// GetHistory returns the history ledger configuration
func (c *Config) GetHistory() HistoryConfig {
	return HistoryConfig{
		Type:       c.GetString("history.type"),
		Path:       c.GetString("history.path"),
		SQLitePath: c.GetString("history.sqlite_path"),
	}
}

// GetServer returns the HTTP server configuration. A bare port setting
// replaces the port of the listen address.
func (c *Config) GetServer() ServerConfig {
	addr := c.GetString("server.listen_address")
	if port := c.GetString("server.port"); port != "" {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = "0.0.0.0"
		}
		addr = net.JoinHostPort(host, port)
	}

	return ServerConfig{
		ListenAddress:   addr,
		MaxBodyBytes:    c.GetInt64("server.max_body_bytes"),
		ReadTimeout:     c.durationOr("server.read_timeout", 15*time.Second),
		WriteTimeout:    c.durationOr("server.write_timeout", 60*time.Second),
		ShutdownTimeout: c.durationOr("server.shutdown_timeout", 10*time.Second),
	}
}

func (c *Config) durationOr(key string, fallback time.Duration) time.Duration {
	d, err := c.GetDuration(key)
	if err != nil {
		return fallback
	}
	return d
}
