package config

import (
	"fmt"
	"strings"
)

// Validate checks the config for required fields and sane ranges. All
// problems are reported together.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Dataset.Path == "" {
		errs = append(errs, "dataset.path is required")
	}
	if cfg.Network.LaplaceCount < 0 {
		errs = append(errs, fmt.Sprintf("network.laplace_count must not be negative (got %d)", cfg.Network.LaplaceCount))
	}
	if cfg.Network.RebuildWorkers < 1 {
		errs = append(errs, fmt.Sprintf("network.rebuild_workers must be at least 1 (got %d)", cfg.Network.RebuildWorkers))
	}
	if cfg.Server.Addr == "" {
		errs = append(errs, "server.addr is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
