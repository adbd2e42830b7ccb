package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"carton/backend/internal/constants"
	apperrors "carton/backend/pkg/errors"
)

// Config holds all application configuration. It is built once at startup and
// passed explicitly to every component that needs it.
type Config struct {
	// App
	Port string `yaml:"port"`
	Env  string `yaml:"env"`

	// Neo4j
	Neo4jURI      string `yaml:"neo4j_uri"`
	Neo4jUser     string `yaml:"neo4j_user"`
	Neo4jPassword string `yaml:"neo4j_password"`
	Neo4jDatabase string `yaml:"neo4j_database"`

	// Document store
	BasePath string `yaml:"base_path"`

	// Version control
	GitEnabled bool   `yaml:"git_enabled"`
	RepoURL    string `yaml:"repo_url"`
	Branch     string `yaml:"branch"`

	// Consistency engine
	SuggestionCutoff   float64 `yaml:"suggestion_cutoff"`
	MaxSuggestions     int     `yaml:"max_suggestions"`
	DuplicateThreshold float64 `yaml:"duplicate_threshold"`
}

// Load reads configuration from .env, environment variables and, when
// CARTON_CONFIG names a file, a YAML overlay on top of those.
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		Neo4jURI:           getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:          getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:      getEnv("NEO4J_PASSWORD", "password"),
		Neo4jDatabase:      getEnv("NEO4J_DATABASE", "neo4j"),
		BasePath:           getEnv("BASE_PATH", defaultBasePath()),
		GitEnabled:         getEnvBool("GIT_ENABLED", false),
		RepoURL:            getEnv("REPO_URL", ""),
		Branch:             getEnv("BRANCH", "main"),
		SuggestionCutoff:   getEnvFloat("SUGGESTION_CUTOFF", constants.DefaultSuggestionCutoff),
		MaxSuggestions:     getEnvInt("MAX_SUGGESTIONS", constants.DefaultMaxSuggestions),
		DuplicateThreshold: getEnvFloat("DUPLICATE_THRESHOLD", constants.DefaultDuplicateThreshold),
	}

	if path := os.Getenv("CARTON_CONFIG"); path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// MergeFile overlays the values present in a YAML file onto c
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return apperrors.NewConfigValidationFailed("CARTON_CONFIG", err.Error())
	}
	return nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Neo4jURI == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_URI")
	}
	if c.Neo4jUser == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_USER")
	}
	if c.Neo4jPassword == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_PASSWORD")
	}
	if c.BasePath == "" {
		return apperrors.NewConfigMissingRequired("BASE_PATH")
	}
	if c.GitEnabled && c.RepoURL == "" {
		return apperrors.NewConfigValidationFailed("REPO_URL", "required when GIT_ENABLED is set")
	}
	if c.SuggestionCutoff < 0 || c.SuggestionCutoff > 1 {
		return apperrors.NewConfigValidationFailed("SUGGESTION_CUTOFF", "must be between 0 and 1")
	}
	if c.DuplicateThreshold < 0 || c.DuplicateThreshold > 1 {
		return apperrors.NewConfigValidationFailed("DUPLICATE_THRESHOLD", "must be between 0 and 1")
	}
	if c.MaxSuggestions < 0 {
		return apperrors.NewConfigValidationFailed("MAX_SUGGESTIONS", "must not be negative")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func defaultBasePath() string {
	dataDir := getEnv("HEAVEN_DATA_DIR", filepath.Join(os.TempDir(), "heaven_data"))
	return filepath.Join(dataDir, "wiki")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%f", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True", "yes":
		return true
	case "0", "false", "FALSE", "False", "no":
		return false
	}
	return defaultValue
}
