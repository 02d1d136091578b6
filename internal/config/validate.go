package config

import (
	"fmt"
	"net/url"
	"strings"
)

var knownBuildPlates = map[string]struct{}{
	"cool_plate":   {},
	"engineering":  {},
	"high_temp":    {},
	"textured_pei": {},
	"smooth_pei":   {},
	"supertack":    {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePrinter(); err != nil {
		return err
	}
	if err := c.validateSlicer(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePrinter() error {
	if c.Printer.BaseURL == "" {
		return nil
	}
	parsed, err := url.Parse(c.Printer.BaseURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("printer.base_url: %q is not a valid http(s) URL", c.Printer.BaseURL)
	}
	return nil
}

func (c *Config) validateSlicer() error {
	if strings.ContainsAny(c.Slicer.Binary, " \t") {
		return fmt.Errorf("slicer.binary: %q must be a bare executable name or path", c.Slicer.Binary)
	}
	if _, ok := knownBuildPlates[c.Slicer.DefaultBuildPlate]; !ok {
		return fmt.Errorf("slicer.default_build_plate: unknown plate type %q", c.Slicer.DefaultBuildPlate)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.QueuePollInterval <= 0 {
		return fmt.Errorf("workflow.queue_poll_interval must be positive, got %d", c.Workflow.QueuePollInterval)
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		return fmt.Errorf("workflow.error_retry_interval must be positive, got %d", c.Workflow.ErrorRetryInterval)
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		return fmt.Errorf("workflow.heartbeat_interval must be positive, got %d", c.Workflow.HeartbeatInterval)
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return fmt.Errorf("workflow.heartbeat_timeout (%d) must exceed heartbeat_interval (%d)",
			c.Workflow.HeartbeatTimeout, c.Workflow.HeartbeatInterval)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
