// Package config loads the bot settings. Later sources override earlier
// ones: defaults, the YAML file, the environment (.env included), then
// flags given on the command line.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"scristobal/commandbot/commands"
	"scristobal/commandbot/logger"
)

const (
	FallbackReply  = "reply"
	FallbackOpenAI = "openai"
)

type Config struct {
	BotToken      string `yaml:"-" env:"BOT_TOKEN"`
	LoggingLevel  int    `yaml:"logging_level" env:"LOGGING_LEVEL"`
	HelpPreamble  string `yaml:"help_preamble" env:"HELP_PREAMBLE"`
	StorePath     string `yaml:"store_path" env:"STORE_PATH"`
	Port          string `yaml:"port" env:"PORT"`
	Fallback      string `yaml:"fallback" env:"FALLBACK"`
	FallbackText  string `yaml:"fallback_text" env:"FALLBACK_TEXT"`
	OpenAIToken   string `yaml:"-" env:"OPENAI_TOKEN"`
	OpenAIModel   string `yaml:"openai_model" env:"OPENAI_MODEL"`
	OpenAIBaseURL string `yaml:"openai_base_url" env:"OPENAI_BASE_URL"`
}

func Default() Config {
	return Config{
		LoggingLevel: int(logger.Normal),
		HelpPreamble: commands.DefaultPreamble,
		Port:         "8080",
		Fallback:     FallbackReply,
		FallbackText: commands.DefaultFallbackText,
	}
}

// Load reads the YAML file at path (optional) and the environment, after
// loading envFile into it when present.
func Load(path, envFile string) (Config, error) {

	cfg := Default()

	if path != "" {

		content, err := os.ReadFile(path)

		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}

		err = yaml.Unmarshal(content, &cfg)

		if err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if envFile == "" {
		envFile = ".env"
	}

	err := godotenv.Load(envFile)

	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
		log.Printf("Failed to load %s file, fallback on env vars", envFile)
	}

	err = env.Parse(&cfg)

	if err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

// BindFlags declares the flags ApplyFlags reads.
func BindFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "path to a YAML config file")
	flags.String("env-file", ".env", "path to a .env file")
	flags.Int("log-level", int(logger.Normal), "0 errors only, 1 normal, 2 verbose")
	flags.String("store", "", "SQLite database path, empty keeps records in memory")
	flags.String("port", "8080", "port of the health check server")
}

// ApplyFlags overrides cfg with the flags set explicitly on the command line.
func (cfg *Config) ApplyFlags(flags *pflag.FlagSet) error {

	var err error

	if flags.Changed("log-level") {
		if cfg.LoggingLevel, err = flags.GetInt("log-level"); err != nil {
			return err
		}
	}

	if flags.Changed("store") {
		if cfg.StorePath, err = flags.GetString("store"); err != nil {
			return err
		}
	}

	if flags.Changed("port") {
		if cfg.Port, err = flags.GetString("port"); err != nil {
			return err
		}
	}

	return nil
}

func (cfg Config) Validate() error {

	if cfg.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN not found")
	}

	if cfg.LoggingLevel < int(logger.Error) || cfg.LoggingLevel > int(logger.Verbose) {
		return fmt.Errorf("logging level %d out of range, use 0, 1 or 2", cfg.LoggingLevel)
	}

	switch cfg.Fallback {
	case FallbackReply:
	case FallbackOpenAI:
		if cfg.OpenAIToken == "" {
			return fmt.Errorf("OPENAI_TOKEN not found, get a token or set FALLBACK=%s", FallbackReply)
		}
	default:
		return fmt.Errorf("unknown fallback %q, use %s or %s", cfg.Fallback, FallbackReply, FallbackOpenAI)
	}

	return nil
}
