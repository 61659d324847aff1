package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort   string
	Host         string
	LogLevel     string
	HomeDir      string
	PapersRoot   string
	DatabasePath string

	OpenAIKey     string
	AnthropicKey  string
	GeminiKey     string
	OllamaBaseURL string

	SupabaseURL string
	SupabaseKey string
	JWTSecret   string

	ContextTokenThreshold int
	ContextTopK           int
	ContextChunkWords     int
	TextCacheSize         int
	ChatRatePerMinute     int
	AllowedOrigins        []string
}

// NewConfig creates a new configuration instance from the environment
func NewConfig() *AppConfig {
	home := getEnvOrDefault("HOME_DIR", userHomeDir())

	return &AppConfig{
		ServerPort:   getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8000")),
		Host:         getEnvOrDefault("HOST", "127.0.0.1"),
		LogLevel:     getEnvOrDefault("LOG_LEVEL", "info"),
		HomeDir:      home,
		PapersRoot:   getEnvOrDefault("PAPERS_ROOT", filepath.Join(home, "Documents")),
		DatabasePath: getEnvOrDefault("DATABASE_PATH", "./data/papers.db"),

		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		AnthropicKey:  os.Getenv("ANTHROPIC_API_KEY"),
		GeminiKey:     os.Getenv("GEMINI_API_KEY"),
		OllamaBaseURL: strings.TrimRight(getEnvOrDefault("OLLAMA_BASE_URL", "http://localhost:11434"), "/"),

		SupabaseURL: os.Getenv("SUPABASE_URL"),
		SupabaseKey: os.Getenv("SUPABASE_SERVICE_KEY"),
		JWTSecret:   os.Getenv("SUPABASE_JWT_SECRET"),

		ContextTokenThreshold: getEnvIntOrDefault("CONTEXT_TOKEN_THRESHOLD", 30_000),
		ContextTopK:           getEnvIntOrDefault("CONTEXT_TOP_K", 15),
		ContextChunkWords:     getEnvIntOrDefault("CONTEXT_CHUNK_WORDS", 1000),
		TextCacheSize:         getEnvIntOrDefault("TEXT_CACHE_SIZE", 32),
		ChatRatePerMinute:     getEnvIntOrDefault("CHAT_RATE_PER_MINUTE", 30),
		AllowedOrigins:        splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
	}
}

func (c *AppConfig) GetServerPort() string { return c.ServerPort }
func (c *AppConfig) GetHost() string { return c.Host }
func (c *AppConfig) GetLogLevel() string { return c.LogLevel }
func (c *AppConfig) GetHomeDir() string { return c.HomeDir }
func (c *AppConfig) GetPapersRoot() string { return c.PapersRoot }
func (c *AppConfig) GetDatabasePath() string { return c.DatabasePath }

func (c *AppConfig) GetOpenAIKey() string { return c.OpenAIKey }
func (c *AppConfig) GetAnthropicKey() string { return c.AnthropicKey }
func (c *AppConfig) GetGeminiKey() string { return c.GeminiKey }
func (c *AppConfig) GetOllamaBaseURL() string { return c.OllamaBaseURL }

// GetSupabaseURL returns the Supabase project URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase service-role key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetJWTSecret returns the secret used to verify Supabase access tokens
func (c *AppConfig) GetJWTSecret() string {
	return c.JWTSecret
}

func (c *AppConfig) GetContextTokenThreshold() int { return c.ContextTokenThreshold }
func (c *AppConfig) GetContextTopK() int { return c.ContextTopK }
func (c *AppConfig) GetContextChunkWords() int { return c.ContextChunkWords }
func (c *AppConfig) GetTextCacheSize() int { return c.TextCacheSize }
func (c *AppConfig) GetChatRatePerMinute() int { return c.ChatRatePerMinute }
func (c *AppConfig) GetAllowedOrigins() []string { return c.AllowedOrigins }

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func userHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "/"
	}
	return home
}
