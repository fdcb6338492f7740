package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeEngine(); err != nil {
		return err
	}
	if err := c.normalizeFetchMetaNet(); err != nil {
		return err
	}
	if err := c.normalizeThumbnail(); err != nil {
		return err
	}
	if err := c.normalizeAudit(); err != nil {
		return err
	}
	if err := c.normalizeDaemon(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeEngine() error {
	if c.Engine.MaxParserThreads <= 0 {
		c.Engine.MaxParserThreads = defaultMaxParserThreads
	}
	if c.Engine.MaxThumbnailerThreads <= 0 {
		c.Engine.MaxThumbnailerThreads = defaultMaxThumbnailerThreads
	}
	if c.Engine.TimeoutSeconds < 0 {
		c.Engine.TimeoutSeconds = 0
	}
	if len(c.Engine.Types) == 0 {
		c.Engine.Types = append([]string{}, Default().Engine.Types...)
	}
	return nil
}

func (c *Config) normalizeFetchMetaNet() error {
	c.FetchMetaNet.Endpoint = strings.TrimSpace(c.FetchMetaNet.Endpoint)
	if c.FetchMetaNet.Token == "" {
		if value, ok := os.LookupEnv("PREPARSER_FETCHMETA_NET_TOKEN"); ok {
			c.FetchMetaNet.Token = strings.TrimSpace(value)
		}
	}
	if c.FetchMetaNet.TimeoutSeconds <= 0 {
		c.FetchMetaNet.TimeoutSeconds = defaultFetchMetaNetTimeout
	}
	return nil
}

func (c *Config) normalizeThumbnail() error {
	var err error
	if strings.TrimSpace(c.Thumbnail.ScratchDir) == "" {
		c.Thumbnail.ScratchDir = defaultThumbnailScratchDir
	}
	if c.Thumbnail.ScratchDir, err = expandPath(c.Thumbnail.ScratchDir); err != nil {
		return fmt.Errorf("thumbnail.scratch_dir: %w", err)
	}
	if c.Thumbnail.MinFreeBytes <= 0 {
		c.Thumbnail.MinFreeBytes = defaultThumbnailMinFreeBytes
	}
	if c.Thumbnail.Width <= 0 {
		c.Thumbnail.Width = defaultThumbnailWidth
	}
	if c.Thumbnail.Height <= 0 {
		c.Thumbnail.Height = defaultThumbnailHeight
	}
	if c.Thumbnail.PreciseExtraMS < 0 {
		c.Thumbnail.PreciseExtraMS = 0
	}
	return nil
}

func (c *Config) normalizeAudit() error {
	if strings.TrimSpace(c.Audit.Path) == "" {
		return nil
	}
	expanded, err := expandPath(c.Audit.Path)
	if err != nil {
		return fmt.Errorf("audit.path: %w", err)
	}
	c.Audit.Path = expanded
	return nil
}

func (c *Config) normalizeDaemon() error {
	var err error
	if strings.TrimSpace(c.Daemon.LockPath) == "" {
		c.Daemon.LockPath = defaultDaemonLockPath
	}
	if c.Daemon.LockPath, err = expandPath(c.Daemon.LockPath); err != nil {
		return fmt.Errorf("daemon.lock_path: %w", err)
	}
	if strings.TrimSpace(c.Daemon.SocketPath) == "" {
		c.Daemon.SocketPath = defaultDaemonSocketPath
	}
	if c.Daemon.SocketPath, err = expandPath(c.Daemon.SocketPath); err != nil {
		return fmt.Errorf("daemon.socket_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "":
		c.Logging.Format = defaultLogFormat
	case "console", "json":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.Dir) == "" {
		c.Logging.Dir = defaultLogDir
	}
	if expanded, err := expandPath(c.Logging.Dir); err == nil {
		c.Logging.Dir = expanded
	}
}
