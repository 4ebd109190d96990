package reportcli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/okian/teacheval/pkg/logger"
)

// ErrUsage reports invalid command line options.
var ErrUsage = errors.New("invalid usage")

// SetupLogging sends logs to stderr so tables on stdout stay clean.
func SetupLogging(verbose bool) error {
	if err := logger.InitWithWriter(os.Stderr, logger.FormatText); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logger.SetLevelString(level)
}

// ShowHelp prints usage information for the report tool.
func ShowHelp(w io.Writer) {
	_, _ = color.New(color.FgCyan, color.Bold).Fprintln(w, "Teacher Evaluation Report Tool")
	_, _ = io.WriteString(w, `
Loads the question catalog and the evaluation exports of a data directory and
prints teacher statistics, or writes the ZIP archive of every teacher report.

Usage:
  go run ./cmd/report [options]

Options:
  -data string
        Directory with the question catalog and evaluation exports (default "data")
  -questions string
        Question catalog file, relative to -data (default "preguntas.csv")
  -encoding string
        Source encoding: latin-1, windows-1252 or utf-8 (default "latin-1")
  -delimiter string
        Field separator (default ";")
  -teacher string
        Document of one teacher; prints averages and the improvement plan
  -period string
        Restrict to a period, YYYY-1 or YYYY-2
  -output string
        Write the ZIP export to this file or directory
  -workers int
        Report rendering workers (default CPU cores)
  -threshold float
        Improvement threshold (default 4)
  -no-color
        Disable colored headings
  -verbose
        Log ingestion details to stderr
  -help
        Show this help message

Examples:
  # Summary of every teacher
  go run ./cmd/report -data ./data

  # One teacher in one period
  go run ./cmd/report -teacher 1234567 -period 2024-1

  # Export every report of a period
  go run ./cmd/report -period 2024-2 -output ./exports/
`)
}
