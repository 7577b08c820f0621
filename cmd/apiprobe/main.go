package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sophialabs/apiprobe/internal/app"
)

func main() {
	cfg := app.DefaultConfig()
	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database file")
	flag.StringVar(&cfg.CollectionsDir, "collections", cfg.CollectionsDir, "directory of YAML request-config collections (optional)")
	flag.IntVar(&cfg.HistorySize, "history-size", cfg.HistorySize, "number of run history entries to keep")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flag.StringVar(&cfg.DefaultEngine, "default-engine", cfg.DefaultEngine, "prompt template engine (jinja2, expr)")
	flag.DurationVar(&cfg.UpstreamTimeout, "upstream-timeout", cfg.UpstreamTimeout, "timeout of one outbound test call")
	flag.Float64Var(&cfg.BatchRate, "batch-rate", cfg.BatchRate, "batch run calls per second per upstream host")
	flag.IntVar(&cfg.BatchBurst, "batch-burst", cfg.BatchBurst, "batch run burst per upstream host")
	flag.Parse()

	a, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize: %v\n", err)
		os.Exit(1)
	}

	if err := a.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
