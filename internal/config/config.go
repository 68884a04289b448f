package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// IMAPConfig holds the mailbox connection settings.
type IMAPConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`

	// Folder is the mailbox folder polled for new messages.
	Folder string `mapstructure:"folder" yaml:"folder"`
}

// DatabaseConfig holds the SQLite database settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// OpenAIConfig holds settings for the structured-extraction capability.
type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key" yaml:"api_key"`
	Model  string `mapstructure:"model" yaml:"model"`
}

// IngestConfig holds pipeline tuning knobs.
type IngestConfig struct {
	// FetchLimit caps how many mailbox references one run pulls.
	FetchLimit int `mapstructure:"fetch_limit" yaml:"fetch_limit"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// Config is the top-level application configuration.
type Config struct {
	IMAP     IMAPConfig     `mapstructure:"imap" yaml:"imap"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	OpenAI   OpenAIConfig   `mapstructure:"openai" yaml:"openai"`
	Ingest   IngestConfig   `mapstructure:"ingest" yaml:"ingest"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

func defaultConfig() *Config {
	return &Config{
		IMAP: IMAPConfig{
			Port:   993,
			Folder: "INBOX",
		},
		Database: DatabaseConfig{
			Path: "towndigest.db",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-5-mini",
		},
		Ingest: IngestConfig{
			FetchLimit: 100,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the given YAML file using Viper,
// applying TOWNDIGEST_* environment overrides. A missing file is not an
// error; defaults plus environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("imap.port", 993)
	v.SetDefault("imap.folder", "INBOX")
	v.SetDefault("database.path", "towndigest.db")
	v.SetDefault("openai.model", "gpt-5-mini")
	v.SetDefault("ingest.fetch_limit", 100)
	v.SetDefault("log.level", "info")

	bindEnv(v, "imap.host", "TOWNDIGEST_IMAP_HOST")
	bindEnv(v, "imap.port", "TOWNDIGEST_IMAP_PORT")
	bindEnv(v, "imap.username", "TOWNDIGEST_IMAP_USERNAME")
	bindEnv(v, "imap.password", "TOWNDIGEST_IMAP_PASSWORD")
	bindEnv(v, "imap.folder", "TOWNDIGEST_IMAP_FOLDER")
	bindEnv(v, "database.path", "TOWNDIGEST_DATABASE_PATH")
	bindEnv(v, "openai.api_key", "TOWNDIGEST_OPENAI_API_KEY", "OPENAI_API_KEY")
	bindEnv(v, "openai.model", "TOWNDIGEST_OPENAI_MODEL", "OPENAI_MODEL")
	bindEnv(v, "ingest.fetch_limit", "TOWNDIGEST_FETCH_LIMIT")
	bindEnv(v, "log.level", "TOWNDIGEST_LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); !ok {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	cfg := defaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

func bindEnv(v *viper.Viper, key string, envVars ...string) {
	input := append([]string{key}, envVars...)
	_ = v.BindEnv(input...)
}
