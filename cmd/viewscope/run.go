package main

import (
	"context"
	_ "embed"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"viewscope/internal/config"
	"viewscope/internal/host"
	"viewscope/internal/layoutfile"
	"viewscope/internal/logger"
	"viewscope/internal/tui"
)

//go:embed demo.yaml
var demoLayout []byte

func runMain(root rootArgs, args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	var overrides overrideList
	fs.Var(&overrides, "c", "Override config value key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parse run args: %v", err)
	}

	cfg, err := loadConfig(root, overrides)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	closeLog := setupLogging(cfg)
	defer closeLog()

	layout, err := resolveLayout(fs.Arg(0), cfg)
	if err != nil {
		log.Fatalf("load layout: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := host.New(hostOptions(cfg, 80, 24))
	if err := tui.Run(ctx, tui.Options{Host: h, Layout: layout}); err != nil {
		log.Fatalf("tui: %v", err)
	}
}

// setupLogging sends logs to the configured file, since the terminal
// belongs to the TUI.
func setupLogging(cfg config.Config) func() {
	closer, path, err := logger.SetupFile(cfg.Log.Path)
	if err != nil {
		logger.Discard()
		return func() {}
	}
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		log.WithField("option", "log.level").WithField("value", cfg.Log.Level).Warn("invalid log level, using info")
	}
	log.WithField("path", path).Info("viewscope starting")
	return func() { _ = closer.Close() }
}

// resolveLayout picks the argument, then the configured layout, then the
// built-in demo.
func resolveLayout(arg string, cfg config.Config) (*layoutfile.Layout, error) {
	path := strings.TrimSpace(arg)
	if path == "" {
		path = strings.TrimSpace(cfg.Layout)
	}
	if path == "" {
		return layoutfile.Parse(demoLayout, "yaml")
	}
	return layoutfile.Load(path)
}
