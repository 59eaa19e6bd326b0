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
)

//go:embed sample_config.toml
var sampleConfig string

// Tools holds the command names or paths of the external binaries the
// pipeline invokes. Bare names are resolved against PATH at startup.
type Tools struct {
	FFprobe  string `toml:"ffprobe"`
	FFmpeg   string `toml:"ffmpeg"`
	Packager string `toml:"packager"`
	B2       string `toml:"b2"`
}

// Media describes the accepted input container and the delivery codecs.
type Media struct {
	AcceptedFormat    string `toml:"accepted_format"`
	AcceptedExtension string `toml:"accepted_extension"`
	VideoCodec        string `toml:"video_codec"`
	AudioCodec        string `toml:"audio_codec"`
	VideoEncoder      string `toml:"video_encoder"`
	AudioEncoder      string `toml:"audio_encoder"`
}

// S3 contains settings for the S3-compatible upload backend.
type S3 struct {
	Endpoint        string `toml:"endpoint"`
	Region          string `toml:"region"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	PathStyle       bool   `toml:"path_style"`
}

// Publish contains configuration for uploading packaged artifacts.
type Publish struct {
	// Backend selects the uploader: "b2" shells out to the b2 CLI, "s3" uses
	// the S3 API directly.
	Backend string `toml:"backend"`
	// BaseURL is the manifest base URL template. {bucket} and {prefix} are
	// substituted before packaging.
	BaseURL     string `toml:"base_url"`
	Concurrency int    `toml:"concurrency"`
	LockPrefix  bool   `toml:"lock_prefix"`
	EnvFile     string `toml:"env_file"`
	S3          S3     `toml:"s3"`
}

// Paths contains directory configuration.
type Paths struct {
	WorkRoot string `toml:"work_root"`
	StateDir string `toml:"state_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Metrics contains configuration for run metrics export.
type Metrics struct {
	TextfilePath string `toml:"textfile_path"`
}

// Config encapsulates all configuration values for bideorai.
//
// Configuration sections by subsystem:
//   - Tools: external binaries (ffprobe, ffmpeg, packager, b2)
//   - Media: accepted container and target codecs
//   - Publish: upload backend, manifest base URL, concurrency
//   - Paths: working directory root and state directory
//   - Logging: log format, level, and optional file
//   - Metrics: Prometheus textfile export
type Config struct {
	Tools   Tools   `toml:"tools"`
	Media   Media   `toml:"media"`
	Publish Publish `toml:"publish"`
	Paths   Paths   `toml:"paths"`
	Logging Logging `toml:"logging"`
	Metrics Metrics `toml:"metrics"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/bideorai/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
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
		decoder.DisallowUnknownFields()
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

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("bideorai.toml")
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

// EnsureDirectories creates the directories a packaging run writes to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkRoot, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LedgerPath returns the run ledger database location, or "" when no state
// directory is configured.
func (c *Config) LedgerPath() string {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.StateDir, "runs.db")
}

// LockDir returns the directory holding per-prefix publish locks.
func (c *Config) LockDir() string {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.StateDir, "locks")
}

// UsesUploadTool reports whether the configured backend shells out to the b2 CLI.
func (c *Config) UsesUploadTool() bool {
	return c.Publish.Backend == BackendB2
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
