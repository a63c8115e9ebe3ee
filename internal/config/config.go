package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Config holds application configuration loaded from files, flags and environment variables.
type Config struct {
	Env              string `mapstructure:"env"`       // current application environment (local, dev, production etc)
	LogLevel         string `mapstructure:"log_level"` // minimum zap level
	TelegramAPIToken string `mapstructure:"-"`         // Telegram API token loaded from environment
	Server           Server `mapstructure:"server"`    // nihonngo server section
	Exam             Exam   `mapstructure:"exam"`      // exam session section
	DB               DB     `mapstructure:"database"`  // database configuration section
}

// Server describes where the nihonngo server lives.
type Server struct {
	BaseURL      string        `mapstructure:"base_url"`
	QuestionPath string        `mapstructure:"question_path"`
	AnswerPath   string        `mapstructure:"answer_path"`
	SignInPath   string        `mapstructure:"signin_path"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// Exam contains the terminal session settings.
type Exam struct {
	AdvanceDelay time.Duration `mapstructure:"advance_delay"` // pause between a revealed answer and the next fetch
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	Remember     bool          `mapstructure:"remember"`
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Enabled reports whether a database is configured.
func (db DB) Enabled() bool {
	return db.URL != ""
}

// RequireTelegram fails when the bot token is not set.
func (c *Config) RequireTelegram() error {
	if c.TelegramAPIToken == "" {
		return fmt.Errorf("%w: TELEGRAM_API_TOKEN", ErrMissingEnvironmentVariables)
	}
	return nil
}

// RequireCredentials fails when the exam account is not set.
func (c *Config) RequireCredentials() error {
	if c.Exam.Username == "" || c.Exam.Password == "" {
		return fmt.Errorf("%w: EXAM_USERNAME, EXAM_PASSWORD", ErrMissingEnvironmentVariables)
	}
	return nil
}

// BindFlags registers the command-line overrides understood by Load.
func BindFlags(flags *pflag.FlagSet) {
	flags.String("server", "", "nihonngo server base URL")
	flags.StringP("user", "u", "", "account name")
	flags.StringP("password", "p", "", "account password")
	flags.Bool("remember", false, "ask the server for a remember-me token")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
}

var flagKeys = map[string]string{
	"server":    "server.base_url",
	"user":      "exam.username",
	"password":  "exam.password",
	"remember":  "exam.remember",
	"log-level": "log_level",
}

// Load reads configuration from .env, config files, environment variables
// and, when flags is not nil, the flags registered by BindFlags.
func Load(flags *pflag.FlagSet) (*Config, error) {
	// Values already in the environment win over .env.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("log_level", "info")
	v.SetDefault("server.base_url", "http://localhost:8000")
	v.SetDefault("server.question_path", "/nihonngo/exam/question/get/")
	v.SetDefault("server.answer_path", "/nihonngo/exam/question/answer/")
	v.SetDefault("server.signin_path", "/nihonngo/signin/")
	v.SetDefault("server.timeout", "30s")
	v.SetDefault("exam.advance_delay", "1s")
	v.SetDefault("exam.username", "")
	v.SetDefault("exam.password", "")
	v.SetDefault("exam.remember", false)
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("env", "APP_ENV")
	_ = v.BindEnv("exam.username", "EXAM_USERNAME")
	_ = v.BindEnv("exam.password", "EXAM_PASSWORD")

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("error binding flag %s: %w", name, err)
				}
			}
		}
	}

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	cfg.DB.URL = v.GetString("database_url")

	return &cfg, nil
}
