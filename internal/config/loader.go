package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "TEACHEVAL_"
	envConfigFile = "TEACHEVAL_CONFIG"
	envDotFile    = "TEACHEVAL_ENV_FILE"
	defaultDotEnv = ".env"
)

// Keys whose env values are comma separated lists.
var listKeys = map[string]bool{
	"evaluation_patterns": true,
	"allowed_origins":     true,
}

var supportedEncodings = map[string]bool{
	"latin-1":      true,
	"iso-8859-1":   true,
	"windows-1252": true,
	"utf-8":        true,
}

// Load builds a Config by layering defaults, .env, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. dotenv file (TEACHEVAL_ENV_FILE, or ./.env when present); never overrides the real environment
//  3. file (YAML) if TEACHEVAL_CONFIG is set
//  4. env (prefix TEACHEVAL_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if path := os.Getenv(envConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// TEACHEVAL_DATA_DIR -> data_dir; list keys split on commas.
	envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(envPrefix))
		if key == "config" || key == "env_file" {
			return "", nil
		}
		if listKeys[key] {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	for key := range listKeys {
		if k.Exists(key) {
			// Decoding into a populated slice would keep trailing defaults.
			switch key {
			case "evaluation_patterns":
				cfg.EvaluationPatterns = nil
			case "allowed_origins":
				cfg.AllowedOrigins = nil
			}
		}
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(ctx); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv() error {
	path := os.Getenv(envDotFile)
	if path == "" {
		if _, err := os.Stat(defaultDotEnv); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
		path = defaultDotEnv
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: dotenv %s: %w", ErrLoadConfig, path, err)
	}
	return nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the values a running service depends on.
func (c *Config) Validate(_ context.Context) error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	}
	if c.QuestionsFile == "" {
		return fmt.Errorf("%w: questions_file must not be empty", ErrInvalidConfig)
	}
	if len(c.EvaluationPatterns) == 0 {
		return fmt.Errorf("%w: evaluation_patterns must not be empty", ErrInvalidConfig)
	}
	if utf8.RuneCountInString(c.CSVDelimiter) != 1 {
		return fmt.Errorf("%w: csv_delimiter must be a single character, got %q", ErrInvalidConfig, c.CSVDelimiter)
	}
	if !supportedEncodings[strings.ToLower(c.CSVEncoding)] {
		return fmt.Errorf("%w: unsupported csv_encoding %q", ErrInvalidConfig, c.CSVEncoding)
	}
	if c.APIPrefix != "" && (!strings.HasPrefix(c.APIPrefix, "/") || strings.HasSuffix(c.APIPrefix, "/")) {
		return fmt.Errorf("%w: api_prefix must start and not end with '/', got %q", ErrInvalidConfig, c.APIPrefix)
	}
	if c.ReportWorkers <= 0 {
		return fmt.Errorf("%w: report_workers must be positive", ErrInvalidConfig)
	}
	if c.ReportQueueSize <= 0 {
		return fmt.Errorf("%w: report_queue_size must be positive", ErrInvalidConfig)
	}
	if c.ImprovementThreshold <= 1 || c.ImprovementThreshold > 5 {
		return fmt.Errorf("%w: improvement_threshold must be in (1, 5], got %v", ErrInvalidConfig, c.ImprovementThreshold)
	}
	return nil
}
