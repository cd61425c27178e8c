package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Backend selects the responder implementation behind the chat endpoint.
const (
	BackendMock    = "mock"
	BackendRuntime = "runtime"
	BackendOpenAI  = "openai"
)

type Config struct {
	Port          string
	AllowedOrigin string
	// Backend is one of mock, runtime, openai
	Backend string
	// Hosted agent runtime
	AgentID      string
	AgentAliasID string
	Region       string
	AgentToken   string
	// OpenAI fallback backend
	OpenAIAPIKey string
	OpenAIModel  string
	// Persistence: first non-empty of DatabaseURL, SQLitePath, SessionsFile wins
	DatabaseURL  string
	SQLitePath   string
	SessionsFile string
	// Security settings YAML
	SettingsFile string
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Port:          getEnvDefault("PORT", "8080"),
		AllowedOrigin: getEnvDefault("ALLOWED_ORIGIN", "*"),
		Backend:       strings.ToLower(getEnvDefault("AGENT_BACKEND", BackendMock)),
		AgentID:       os.Getenv("AGENT_ID"),
		AgentAliasID:  os.Getenv("AGENT_ALIAS_ID"),
		Region:        getEnvDefault("AGENT_REGION", "us-east-1"),
		AgentToken:    os.Getenv("AGENT_TOKEN"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		DatabaseURL:   os.Getenv("DB_URL"),
		SQLitePath:    os.Getenv("SQLITE_PATH"),
		SessionsFile:  getEnvDefault("SESSIONS_FILE", "data/sessions.json"),
		SettingsFile:  getEnvDefault("SETTINGS_FILE", "settings.yaml"),
	}
	switch cfg.Backend {
	case BackendMock, BackendRuntime, BackendOpenAI:
	default:
		log.Printf("warning: unknown AGENT_BACKEND %q, falling back to mock", cfg.Backend)
		cfg.Backend = BackendMock
	}
	return cfg
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
