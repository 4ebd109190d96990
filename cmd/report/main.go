package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/teacheval/internal/reportcli"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	defaults := reportcli.DefaultConfig()
	var (
		dataDir   = flag.String("data", defaults.DataDir, "Directory with the question catalog and evaluation exports")
		questions = flag.String("questions", defaults.QuestionsFile, "Question catalog file, relative to -data")
		encoding  = flag.String("encoding", defaults.Encoding, "Source encoding: latin-1, windows-1252 or utf-8")
		delimiter = flag.String("delimiter", defaults.Delimiter, "Field separator")
		teacher   = flag.String("teacher", "", "Document of one teacher")
		period    = flag.String("period", "", "Restrict to a period, YYYY-1 or YYYY-2")
		output    = flag.String("output", "", "Write the ZIP export to this file or directory")
		workers   = flag.Int("workers", defaults.Workers, "Report rendering workers")
		threshold = flag.Float64("threshold", defaults.Threshold, "Improvement threshold")
		noColor   = flag.Bool("no-color", false, "Disable colored headings")
		verbose   = flag.Bool("verbose", false, "Log ingestion details to stderr")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		reportcli.ShowHelp(os.Stdout)
		return
	}

	if err := reportcli.SetupLogging(*verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	cfg := reportcli.Config{
		DataDir:       *dataDir,
		QuestionsFile: *questions,
		Encoding:      *encoding,
		Delimiter:     *delimiter,
		Teacher:       *teacher,
		Period:        *period,
		Output:        *output,
		Workers:       *workers,
		Threshold:     *threshold,
		NoColor:       *noColor,
		Verbose:       *verbose,
	}
	if err := reportcli.Run(ctx, cfg, os.Stdout); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		stop()
		cancel()
		os.Exit(1)
	}
}
