// Package config loads application configuration from config files,
// environment variables and .env files, in that order of precedence
// below command-line flags.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/factline/registry/pkg/match"
	"github.com/factline/registry/pkg/sources"
)

// SourceConfig locates one upstream feed and bounds how hard the
// adapter may hit it. Path wins over URL when both are set.
type SourceConfig struct {
	URL    string
	Path   string
	APIKey string
	Budget sources.Budget
}

// Config holds the application configuration.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	Output  string

	// Config file actually used, when one was found.
	ConfigFile string

	// DBPath is the SQLite snapshot database. Empty disables
	// persistence; the registry then lives only for the process.
	DBPath string
	// DataDir holds YAML snapshot exports.
	DataDir string

	// MatchThreshold is the fuzzy match acceptance floor.
	MatchThreshold float64
	// Workers caps concurrent source fetches during a sync run.
	Workers int
	// SourceTimeout bounds one adapter's run.
	SourceTimeout time.Duration

	Sources map[sources.ID]SourceConfig

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// Load reads configuration from all sources in order of precedence:
// flags (bound by cobra), environment variables, .env files, the
// config file, then defaults.
func Load() (*Config, error) {
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("FACTLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".factline")
	}
	_ = viper.ReadInConfig()

	setDefaults()

	cfg := &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),
		Output:  viper.GetString("output"),

		ConfigFile: viper.ConfigFileUsed(),

		DBPath:  viper.GetString("db_path"),
		DataDir: viper.GetString("data_dir"),

		MatchThreshold: viper.GetFloat64("match_threshold"),
		Workers:        viper.GetInt("sync_workers"),
		SourceTimeout:  viper.GetDuration("source_timeout"),

		Sources: make(map[sources.ID]SourceConfig, len(sources.IDs())),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	for _, id := range sources.IDs() {
		key := "sources." + strings.ReplaceAll(id.String(), "-", "_")
		budget := sources.DefaultBudget
		if rps := viper.GetFloat64(key + ".requests_per_second"); rps > 0 {
			budget.RequestsPerSecond = rps
		}
		if burst := viper.GetInt(key + ".burst"); burst > 0 {
			budget.Burst = burst
		}
		cfg.Sources[id] = SourceConfig{
			URL:    viper.GetString(key + ".url"),
			Path:   viper.GetString(key + ".path"),
			APIKey: viper.GetString(key + ".api_key"),
			Budget: budget,
		}
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("db_path", "factline.db")
	viper.SetDefault("match_threshold", match.DefaultThreshold)
	viper.SetDefault("sync_workers", 4)
	viper.SetDefault("source_timeout", 5*time.Minute)
}

// Source returns the configuration for one source id.
func (c *Config) Source(id sources.ID) SourceConfig {
	return c.Sources[id]
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the
// default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
