package config

import (
	"strconv"
	"strings"

	"viewscope/internal/logger"
)

// ApplyKVOverrides applies free-form -c key=value overrides. Unknown keys
// and malformed values are logged and skipped.
func ApplyKVOverrides(cfg Config, overrides []string) Config {
	if len(overrides) == 0 {
		return cfg
	}
	log := logger.Named("config")
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			log.WithField("override", raw).Warn("override is not key=value")
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])

		var target *int
		switch key {
		case "layout":
			cfg.Layout = val
		case "inspector.quick_key":
			cfg.Inspector.QuickKey = val
		case "inspector.cancel_key":
			cfg.Inspector.CancelKey = val
		case "log.path":
			cfg.Log.Path = val
		case "log.level":
			cfg.Log.Level = val
		case "inspector.sync_debounce_ms":
			target = &cfg.Inspector.SyncDebounceMs
		case "inspector.sync_interval_ms":
			target = &cfg.Inspector.SyncIntervalMs
		case "inspector.hide_delay_ms":
			target = &cfg.Inspector.HideDelayMs
		case "popup.hover_hide_delay_ms":
			target = &cfg.Popup.HoverHideDelayMs
		case "popup.pointer_margin":
			target = &cfg.Popup.PointerMargin
		default:
			log.WithField("key", key).Warn("unknown config key")
		}
		if target == nil {
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil || n < 0 {
			log.WithField("key", key).WithField("value", val).Warn("expected a non-negative integer")
			continue
		}
		*target = n
	}
	return cfg
}
