// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - Provide New(ctx) to build a Config with defaults, Load(ctx) to layer sources.
//   - All functions accept context.Context as the first parameter.
//   - Validation failures wrap ErrInvalidConfig; source failures wrap ErrLoadConfig.
package config

import (
	"context"
	"path/filepath"
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// APIPrefix is prepended to every data endpoint.
	APIPrefix string `koanf:"api_prefix"`

	// DataDir holds the question catalog and the evaluation exports.
	DataDir string `koanf:"data_dir"`

	// QuestionsFile is the question catalog; relative paths resolve against DataDir.
	QuestionsFile string `koanf:"questions_file"`

	// EvaluationPatterns are glob patterns, relative to DataDir, for evaluation exports.
	EvaluationPatterns []string `koanf:"evaluation_patterns"`

	// CSVDelimiter separates fields in every source file.
	CSVDelimiter string `koanf:"csv_delimiter"`

	// CSVEncoding names the source text encoding: latin-1, windows-1252 or utf-8.
	CSVEncoding string `koanf:"csv_encoding"`

	// AllowedOrigins lists CORS origins; "*" allows any.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// ReportWorkers sets the number of report rendering workers.
	ReportWorkers int `koanf:"report_workers"`

	// ReportQueueSize bounds the report job queue.
	ReportQueueSize int `koanf:"report_queue_size"`

	// ImprovementThreshold is the mean below which categories and questions need work.
	ImprovementThreshold float64 `koanf:"improvement_threshold"`
}

// New returns a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":8000",
		APIPrefix:          "/api/v1",
		DataDir:            "data",
		QuestionsFile:      "preguntas.csv",
		EvaluationPatterns: []string{"Evaluacion*.csv", "evaluacion*.csv"},
		CSVDelimiter:       ";",
		CSVEncoding:        "latin-1",
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://localhost:5174",
			"http://localhost:3000",
			"http://127.0.0.1:5173",
			"http://127.0.0.1:5174",
		},
		ReportWorkers:        runtime.NumCPU(),
		ReportQueueSize:      1024,
		ImprovementThreshold: 4.0,
	}
}

// QuestionsPath resolves QuestionsFile against DataDir.
func (c *Config) QuestionsPath() string {
	if filepath.IsAbs(c.QuestionsFile) {
		return c.QuestionsFile
	}
	return filepath.Join(c.DataDir, c.QuestionsFile)
}

// Delimiter returns the CSV delimiter as a rune. Load guarantees a single rune.
func (c *Config) Delimiter() rune {
	for _, r := range c.CSVDelimiter {
		return r
	}
	return ';'
}
