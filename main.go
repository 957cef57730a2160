package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/adrg/xdg"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/NamanBalaji/fetchr/internal/config"
	"github.com/NamanBalaji/fetchr/internal/fetch"
	"github.com/NamanBalaji/fetchr/internal/logger"
	"github.com/NamanBalaji/fetchr/internal/repository"
	"github.com/NamanBalaji/fetchr/pkg/session"
)

func main() {
	debug := flag.Bool("debug", false, "Enable debug logging")
	configPath := flag.String("config", "", "Path to the configuration file (default $XDG_CONFIG_HOME/fetchr)")
	retries := flag.Int("retries", -1, "Network retries for http(s) URLs (default from config, else 3)")
	outDir := flag.String("o", "", "Save each body into this directory instead of writing to stdout")
	parallel := flag.Int("parallel", 4, "Maximum number of concurrent fetches")
	metricsFile := flag.String("metrics", "", "Write Prometheus metrics to this file on exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] URL...\n\nURL may be http://, https://, file:// or s3://.\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	err := logger.InitLogging(*debug, filepath.Join(xdg.StateHome, "fetchr", "fetchr.log"))
	if err != nil {
		log.Fatalf("Warning: Failed to initialize logging: %v\n", err)
	}

	code := run(*configPath, *retries, *outDir, *parallel, *metricsFile, flag.Args())
	logger.Close()
	os.Exit(code)
}

func run(configPath string, retries int, outDir string, parallel int, metricsFile string, urls []string) int {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.GetConfig()
	}
	if err != nil {
		log.Printf("Error loading config: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []session.Option{session.WithConfig(cfg)}
	if retries >= 0 {
		opts = append(opts, session.WithRetries(retries))
	}

	repo, err := repository.NewBboltRepository(cfg.LedgerPath)
	if err != nil {
		logger.Warnf("Temp file ledger unavailable, orphans will not be swept: %v", err)
	} else {
		defer func() {
			if err := repo.Close(); err != nil {
				logger.Warnf("Error closing ledger: %v", err)
			}
		}()
		opts = append(opts, session.WithLedger(repo))
	}

	sess, err := session.New(ctx, opts...)
	if err != nil {
		log.Printf("Error creating session: %v\n", err)
		return 1
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Warnf("Error closing session: %v", err)
		}
	}()

	logger.Debugf("User-Agent: %s", sess.UserAgent())

	fetchOpts := []fetch.Option{fetch.WithParallel(parallel)}
	if outDir != "" {
		fetchOpts = append(fetchOpts, fetch.WithOutputDir(outDir))
	}

	results, err := fetch.New(sess, os.Stdout, fetchOpts...).Run(ctx, urls)
	for _, r := range results {
		if r.Path != "" {
			fmt.Fprintf(os.Stderr, "%s -> %s (%d bytes)\n", r.URL, r.Path, r.Bytes)
		}
	}

	if metricsFile != "" {
		if err := prometheus.WriteToTextfile(metricsFile, prometheus.DefaultGatherer); err != nil {
			logger.Warnf("Failed to write metrics: %v", err)
		}
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "fetchr: %v\n", err)
		return 1
	}

	return 0
}
