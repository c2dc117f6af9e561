// file: internal/config/config.go
// version: 1.3.0
// guid: 3884f1ac-c259-413d-b281-c431b848c304

package config

import (
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	DatabasePath string
	DatabaseType string // "pebble" (default) or "sqlite"
	EnableSQLite bool   // Must be true to use SQLite (safety flag)
	SeedFile     string // optional YAML/JSON record seed file
	WatchSeed    bool   // reimport the seed file on change in serve mode

	APIKeys struct {
		OpenAI string
	}
	AIEnabled bool

	// AdminTokenHash is the bcrypt hash of the token required by
	// mutating record endpoints. Empty disables the guard.
	AdminTokenHash string

	Matcher struct {
		MinRelevance  float64
		MaxResults    int
		FuzzyCutoff   int
		MinConfidence float64
	}
}

var AppConfig Config

// InitConfig initializes the application configuration
func InitConfig() {
	// Set defaults
	viper.SetDefault("database_type", "pebble")
	viper.SetDefault("enable_sqlite3_i_know_the_risks", false)
	viper.SetDefault("watch_seed", false)
	viper.SetDefault("ai_enabled", false)
	viper.SetDefault("matcher.min_relevance", 0.1)
	viper.SetDefault("matcher.max_results", 10)
	viper.SetDefault("matcher.fuzzy_cutoff", 2)
	viper.SetDefault("matcher.min_confidence", 0.0)

	AppConfig = Config{
		DatabasePath:   viper.GetString("database_path"),
		DatabaseType:   viper.GetString("database_type"),
		EnableSQLite:   viper.GetBool("enable_sqlite3_i_know_the_risks"),
		SeedFile:       viper.GetString("seed_file"),
		WatchSeed:      viper.GetBool("watch_seed"),
		AIEnabled:      viper.GetBool("ai_enabled"),
		AdminTokenHash: viper.GetString("admin_token_hash"),
	}

	// API Keys
	AppConfig.APIKeys.OpenAI = viper.GetString("api_keys.openai")

	// Matcher tuning
	AppConfig.Matcher.MinRelevance = viper.GetFloat64("matcher.min_relevance")
	AppConfig.Matcher.MaxResults = viper.GetInt("matcher.max_results")
	AppConfig.Matcher.FuzzyCutoff = viper.GetInt("matcher.fuzzy_cutoff")
	AppConfig.Matcher.MinConfidence = viper.GetFloat64("matcher.min_confidence")

	// Normalize database type
	if AppConfig.DatabaseType == "sqlite3" {
		AppConfig.DatabaseType = "sqlite"
	}
	if AppConfig.DatabaseType == "" {
		AppConfig.DatabaseType = "pebble"
	}
	if AppConfig.Matcher.MaxResults <= 0 {
		AppConfig.Matcher.MaxResults = 10
	}
	if AppConfig.Matcher.FuzzyCutoff < 0 {
		AppConfig.Matcher.FuzzyCutoff = 0
	}
}
