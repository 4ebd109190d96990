// Package reportcli prints teacher evaluation summaries on the terminal and
// exports the report archive without starting the HTTP server.
package reportcli

import (
	"fmt"
	"runtime"
	"unicode/utf8"
)

// Config holds the options of one CLI run.
type Config struct {
	DataDir       string // Directory holding the question catalog and exports
	QuestionsFile string // Question catalog, relative to DataDir unless absolute
	Encoding      string // Source text encoding
	Delimiter     string // Single-character field separator
	Teacher       string // Document of the teacher to describe; empty lists everyone
	Period        string // YYYY-1 or YYYY-2; empty covers every period
	Output        string // ZIP destination; a directory receives the default name
	Workers       int    // Report rendering workers
	Threshold     float64
	NoColor       bool
	Verbose       bool
}

// DefaultConfig returns the options used when no flag is given.
func DefaultConfig() Config {
	return Config{
		DataDir:       "data",
		QuestionsFile: "preguntas.csv",
		Encoding:      "latin-1",
		Delimiter:     ";",
		Workers:       runtime.NumCPU(),
		Threshold:     4.0,
	}
}

func (c Config) validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("%w: data dir is required", ErrUsage)
	}
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return fmt.Errorf("%w: delimiter must be one character, got %q", ErrUsage, c.Delimiter)
	}
	return nil
}

func (c Config) delimiter() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}
