package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"preparser/internal/engine"
)

//go:embed sample_config.toml
var sampleConfig string

// Engine configures which domain executors to instantiate, their thread
// widths, and the engine-wide timeout.
type Engine struct {
	Types                 []string `toml:"types"`
	MaxParserThreads      int      `toml:"max_parser_threads"`
	MaxThumbnailerThreads int      `toml:"max_thumbnailer_threads"`
	TimeoutSeconds        int      `toml:"timeout_seconds"`
}

// FetchMetaNet configures the network metadata domain worker's HTTP
// collaborator.
type FetchMetaNet struct {
	Endpoint       string `toml:"endpoint"`
	Token          string `toml:"token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Thumbnail configures the thumbnail domain worker and its preflight check.
type Thumbnail struct {
	ScratchDir     string `toml:"scratch_dir"`
	MinFreeBytes   int64  `toml:"min_free_bytes"`
	Width          int    `toml:"width"`
	Height         int    `toml:"height"`
	PreciseExtraMS int    `toml:"precise_extra_ms"`
}

// Audit configures the completion audit journal. An empty Path disables the
// journal entirely.
type Audit struct {
	Path string `toml:"path"`
}

// Daemon configures the process shell around the engine.
type Daemon struct {
	LockPath   string `toml:"lock_path"`
	SocketPath string `toml:"socket_path"`
}

// Logging configures structured log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Dir    string `toml:"dir"`
}

// Config encapsulates all configuration values for the preparser.
type Config struct {
	Engine       Engine       `toml:"engine"`
	FetchMetaNet FetchMetaNet `toml:"fetchmeta_net"`
	Thumbnail    Thumbnail    `toml:"thumbnail"`
	Audit        Audit        `toml:"audit"`
	Daemon       Daemon       `toml:"daemon"`
	Logging      Logging      `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/preparser/config.toml")
}

// Load locates, parses, normalizes, and validates a configuration file. The
// returned config has all path fields expanded to absolute paths.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/preparser/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("preparser.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// TypesMask parses Engine.Types into the engine's domain bitmask. Unknown
// domain names are ignored; callers should validate first.
func (c *Config) TypesMask() engine.Mask {
	var m engine.Mask
	for _, name := range c.Engine.Types {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "parse":
			m |= engine.Mask(engine.DomainParse)
		case "fetchmeta_local":
			m |= engine.Mask(engine.DomainFetchMetaLocal)
		case "fetchmeta_net":
			m |= engine.Mask(engine.DomainFetchMetaNet)
		case "thumbnail":
			m |= engine.Mask(engine.DomainThumbnail)
		}
	}
	return m
}

// ParseDomainNames maps an arbitrary list of domain names (as accepted on
// the CLI's --domains flag) into an engine.Mask, rejecting unknown names.
// Unlike TypesMask, which is used for the configured executor set, this
// validates every entry since it describes a single request's domain set.
func ParseDomainNames(names []string) (engine.Mask, error) {
	var m engine.Mask
	for _, name := range names {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if _, ok := validDomainNames[normalized]; !ok {
			return 0, fmt.Errorf("unknown domain %q", name)
		}
		switch normalized {
		case "parse":
			m |= engine.Mask(engine.DomainParse)
		case "fetchmeta_local":
			m |= engine.Mask(engine.DomainFetchMetaLocal)
		case "fetchmeta_net":
			m |= engine.Mask(engine.DomainFetchMetaNet)
		case "thumbnail":
			m |= engine.Mask(engine.DomainThumbnail)
		}
	}
	return m, nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
