package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"ragbench/internal/llm"
)

// Search backends.
const (
	SearchBackendAzure  = "azure"
	SearchBackendQdrant = "qdrant"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds all configuration for the application.
type Config struct {
	OpenAIEndpoint      string
	OpenAIKey           string
	OpenAIAPIVersion    string
	EmbeddingDeployment string
	ChatDeployment      string
	EvaluationModel     string

	SearchBackend    string
	SearchEndpoint   string
	SearchIndex      string
	SearchKey        string
	SearchAPIVersion string
	VectorField      string

	QdrantURL        string
	QdrantCollection string
	// QdrantVectorSize is only required by ingest. Zero means unset.
	QdrantVectorSize int

	CustomPrompt     string
	SystemPrompt     string
	SystemPromptMode string

	APIPort   string
	LogLevel  slog.Level
	LogFormat string

	Routes RoutingTable
}

// Load reads configuration from environment variables and returns a Config struct.
// If a .env file exists in the current directory or a parent, it is loaded first.
// Environment variables already set take precedence over .env file values.
// Missing credentials are not an error here; see Missing.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		OpenAIEndpoint:      getEnv("OPENAI_ENDPOINT", ""),
		OpenAIKey:           firstEnv("AZURE_OPENAI_API_KEY", "OPENAI_KEY"),
		OpenAIAPIVersion:    getEnv("OPENAI_API_VERSION", llm.DefaultAPIVersion),
		EmbeddingDeployment: getEnv("EMBEDDING_DEPLOYMENT", ""),
		ChatDeployment:      getEnv("CHAT_DEPLOYMENT", ""),
		SearchBackend:       strings.ToLower(getEnv("SEARCH_BACKEND", SearchBackendAzure)),
		SearchEndpoint:      getEnv("SEARCH_ENDPOINT", ""),
		SearchIndex:         getEnv("SEARCH_INDEX", ""),
		SearchKey:           getEnv("SEARCH_KEY", ""),
		SearchAPIVersion:    getEnv("SEARCH_API_VERSION", ""),
		VectorField:         getEnv("VECTOR_FIELD", ""),
		QdrantURL:           getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:    getEnv("QDRANT_COLLECTION", "documents"),
		CustomPrompt:        os.Getenv("CUSTOM_PROMPT"),
		SystemPrompt:        os.Getenv("SYSTEM_PROMPT"),
		SystemPromptMode:    getEnv("SYSTEM_PROMPT_MODE", "Append"),
		APIPort:             getEnv("API_PORT", "5005"),
		LogFormat:           strings.ToLower(getEnv("LOG_FORMAT", LogFormatText)),
		Routes:              routesFromEnv(),
	}
	cfg.EvaluationModel = getEnv("EVALUATION_MODEL", cfg.ChatDeployment)

	if cfg.SearchBackend != SearchBackendAzure && cfg.SearchBackend != SearchBackendQdrant {
		return nil, fmt.Errorf("SEARCH_BACKEND must be %q or %q, got %q", SearchBackendAzure, SearchBackendQdrant, cfg.SearchBackend)
	}
	if cfg.SystemPromptMode != "Append" && cfg.SystemPromptMode != "Override" {
		return nil, fmt.Errorf("SYSTEM_PROMPT_MODE must be Append or Override, got %q", cfg.SystemPromptMode)
	}
	if cfg.LogFormat != LogFormatText && cfg.LogFormat != LogFormatJSON {
		return nil, fmt.Errorf("LOG_FORMAT must be %q or %q, got %q", LogFormatText, LogFormatJSON, cfg.LogFormat)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "INFO"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}

	// This must match the output size of the embedding deployment; the Qdrant
	// collection has to be recreated when it changes.
	if vectorSizeStr := getEnv("QDRANT_VECTOR_SIZE", ""); vectorSizeStr != "" {
		vectorSize, err := strconv.Atoi(vectorSizeStr)
		if err != nil {
			return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be a valid integer: %w", err)
		}
		if vectorSize <= 0 {
			return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0")
		}
		cfg.QdrantVectorSize = vectorSize
	}

	return cfg, nil
}

// Missing lists the chat credentials the assistant cannot answer without.
func (c *Config) Missing() []string {
	var missing []string
	if c.OpenAIEndpoint == "" {
		missing = append(missing, "OPENAI_ENDPOINT")
	}
	if c.OpenAIKey == "" {
		missing = append(missing, "AZURE_OPENAI_API_KEY")
	}
	if c.ChatDeployment == "" {
		missing = append(missing, "CHAT_DEPLOYMENT")
	}
	return missing
}

// RetrievalMissing lists absent embedding and search settings. Retrieval then fails
// soft and answers are produced without context.
func (c *Config) RetrievalMissing() []string {
	var missing []string
	if c.EmbeddingDeployment == "" {
		missing = append(missing, "EMBEDDING_DEPLOYMENT")
	}
	switch c.SearchBackend {
	case SearchBackendAzure:
		if c.SearchEndpoint == "" {
			missing = append(missing, "SEARCH_ENDPOINT")
		}
		if c.SearchKey == "" {
			missing = append(missing, "SEARCH_KEY")
		}
		if c.SearchIndex == "" {
			missing = append(missing, "SEARCH_INDEX")
		}
	case SearchBackendQdrant:
		if c.QdrantURL == "" {
			missing = append(missing, "QDRANT_URL")
		}
	}
	return missing
}

// ChatCredentials returns the instance-level chat credentials.
func (c *Config) ChatCredentials() llm.Credentials {
	return llm.Credentials{
		Endpoint:   c.OpenAIEndpoint,
		APIKey:     c.OpenAIKey,
		APIVersion: c.OpenAIAPIVersion,
		Deployment: c.ChatDeployment,
	}
}

// EmbeddingCredentials returns the credentials for the embedding deployment.
func (c *Config) EmbeddingCredentials() llm.Credentials {
	creds := c.ChatCredentials()
	creds.Deployment = c.EmbeddingDeployment
	return creds
}

// EvaluationCredentials returns the routed credentials for the evaluation model.
func (c *Config) EvaluationCredentials() llm.Credentials {
	base := c.ChatCredentials()
	if c.EvaluationModel != "" {
		base.Deployment = c.EvaluationModel
	}
	return c.Routes.Resolve(c.EvaluationModel, base)
}

// loadDotEnv loads the first .env found walking up from the working directory.
func loadDotEnv() {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// firstEnv returns the first non-empty value among keys.
func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}
