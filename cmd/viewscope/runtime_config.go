package main

import (
	"time"

	"viewscope/internal/config"
	"viewscope/internal/host"
	"viewscope/internal/inspector"
	"viewscope/internal/popup"
)

// loadConfig reads the config file and applies -c overrides in order.
func loadConfig(root rootArgs, extra []string) (config.Config, error) {
	cfg, err := config.Load(root.cfgPath)
	if err != nil {
		return cfg, err
	}
	return config.ApplyKVOverrides(cfg, prependOverrides(root.overrides, extra)), nil
}

func hostOptions(cfg config.Config, width, height int) host.Options {
	return host.Options{
		Width:  width,
		Height: height,
		Inspector: inspector.Config{
			SyncDebounce: millis(cfg.Inspector.SyncDebounceMs),
			SyncInterval: millis(cfg.Inspector.SyncIntervalMs),
			HideDelay:    millis(cfg.Inspector.HideDelayMs),
			QuickKey:     cfg.Inspector.QuickKey,
			CancelKey:    cfg.Inspector.CancelKey,
		},
		Popup: popup.Config{
			HoverHideDelay: millis(cfg.Popup.HoverHideDelayMs),
			PointerMargin:  cfg.Popup.PointerMargin,
		},
	}
}

func millis(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
