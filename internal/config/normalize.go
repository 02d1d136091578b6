package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePrinter()
	c.normalizeSlicer()
	c.normalizeDownload()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePrinter() {
	c.Printer.BaseURL = strings.TrimRight(strings.TrimSpace(c.Printer.BaseURL), "/")
	c.Printer.APIKey = strings.TrimSpace(c.Printer.APIKey)
	if c.Printer.RequestTimeout <= 0 {
		c.Printer.RequestTimeout = defaultPrinterRequestTimeout
	}
	if c.Printer.UploadTimeout <= 0 {
		c.Printer.UploadTimeout = defaultPrinterUploadTimeout
	}
}

func (c *Config) normalizeSlicer() {
	c.Slicer.Binary = strings.TrimSpace(c.Slicer.Binary)
	if c.Slicer.Binary == "" {
		c.Slicer.Binary = defaultSlicerBinary
	}
	if c.Slicer.Timeout <= 0 {
		c.Slicer.Timeout = defaultSlicerTimeout
	}
	c.Slicer.DefaultBuildPlate = strings.ToLower(strings.TrimSpace(c.Slicer.DefaultBuildPlate))
	if c.Slicer.DefaultBuildPlate == "" {
		c.Slicer.DefaultBuildPlate = defaultBuildPlate
	}
}

func (c *Config) normalizeDownload() {
	if c.Download.RequestTimeout <= 0 {
		c.Download.RequestTimeout = defaultDownloadRequestTimeout
	}
	if c.Download.MaxSizeMiB <= 0 {
		c.Download.MaxSizeMiB = defaultDownloadMaxSizeMiB
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
