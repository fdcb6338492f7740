package config

import (
	"errors"
	"fmt"
	"strings"
)

var validDomainNames = map[string]struct{}{
	"parse":           {},
	"fetchmeta_local": {},
	"fetchmeta_net":   {},
	"thumbnail":       {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateFetchMetaNet(); err != nil {
		return err
	}
	if err := c.validateThumbnail(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEngine() error {
	if len(c.Engine.Types) == 0 {
		return errors.New("engine.types must not be empty")
	}
	seen := map[string]struct{}{}
	for _, name := range c.Engine.Types {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if _, ok := validDomainNames[normalized]; !ok {
			return fmt.Errorf("engine.types: unknown domain %q", name)
		}
		if _, dup := seen[normalized]; dup {
			return fmt.Errorf("engine.types: domain %q listed more than once", name)
		}
		seen[normalized] = struct{}{}
	}
	if c.Engine.MaxParserThreads <= 0 {
		return errors.New("engine.max_parser_threads must be positive")
	}
	if c.Engine.MaxThumbnailerThreads <= 0 {
		return errors.New("engine.max_thumbnailer_threads must be positive")
	}
	return nil
}

func (c *Config) validateFetchMetaNet() error {
	if c.FetchMetaNet.TimeoutSeconds <= 0 {
		return errors.New("fetchmeta_net.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateThumbnail() error {
	if c.Thumbnail.MinFreeBytes <= 0 {
		return errors.New("thumbnail.min_free_bytes must be positive")
	}
	if c.Thumbnail.Width <= 0 || c.Thumbnail.Height <= 0 {
		return errors.New("thumbnail.width and thumbnail.height must be positive")
	}
	return nil
}
