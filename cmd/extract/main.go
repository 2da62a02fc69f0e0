package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joseph-ayodele/lease-extractor/internal/common"
	"github.com/joseph-ayodele/lease-extractor/internal/extract"
	"github.com/joseph-ayodele/lease-extractor/internal/llm/providers"
	"github.com/joseph-ayodele/lease-extractor/internal/logging"
)

func main() {
	showOutcome := flag.Bool("outcome", false, "also print parse mode, model and raw model output to stderr")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: extract [-outcome] [file]   (reads stdin when file is omitted or \"-\")")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := common.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg := common.LoadConfig()

	// stdout carries the record; logs go to stderr.
	logger, closeLog, err := logging.New(cfg.Log, cfg.AppName, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	slog.SetDefault(logger)
	// Flush the async Fluent client on every exit path.
	exit := func(code int) {
		_ = closeLog()
		os.Exit(code)
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", common.PublicMessage(err))
		exit(2)
	}

	text, err := readInput(flag.Arg(0))
	if err != nil {
		logger.Error("read input", "error", err)
		exit(2)
	}
	if strings.TrimSpace(text) == "" {
		logger.Error("empty text provided")
		exit(2)
	}

	completer, err := providers.NewCompleter(cfg.LLM, logger)
	if err != nil {
		logger.Error("build completion client", "error", err)
		exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.LLM.Timeout+5*time.Second)
	defer cancel()

	rec, out := extract.NewExtractor(completer, logger).ExtractWithOutcome(ctx, text)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		logger.Error("encode record", "error", err)
		exit(1)
	}

	if *showOutcome {
		fmt.Fprintf(os.Stderr, "mode=%s provider=%s model=%s elapsed=%s\n", out.Mode, out.Provider, out.Model, out.Elapsed)
		if out.Err != nil {
			fmt.Fprintf(os.Stderr, "error=%v\n", out.Err)
		}
		if out.RawOutput != "" {
			fmt.Fprintf(os.Stderr, "--- raw output ---\n%s\n", out.RawOutput)
		}
	}
	cancel()
	exit(0)
}

func readInput(path string) (string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}
