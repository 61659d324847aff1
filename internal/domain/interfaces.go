package domain

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetHost() string
	GetLogLevel() string
	GetHomeDir() string
	GetPapersRoot() string
	GetDatabasePath() string

	GetOpenAIKey() string
	GetAnthropicKey() string
	GetGeminiKey() string
	GetOllamaBaseURL() string

	GetSupabaseURL() string
	GetSupabaseKey() string
	GetJWTSecret() string

	GetContextTokenThreshold() int
	GetContextTopK() int
	GetContextChunkWords() int
	GetTextCacheSize() int
	GetChatRatePerMinute() int
	GetAllowedOrigins() []string
}
