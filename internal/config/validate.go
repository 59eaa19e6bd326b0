package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validatePublish(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTools() error {
	required := map[string]string{
		"tools.ffprobe":  c.Tools.FFprobe,
		"tools.ffmpeg":   c.Tools.FFmpeg,
		"tools.packager": c.Tools.Packager,
	}
	if c.UsesUploadTool() {
		required["tools.b2"] = c.Tools.B2
	}
	return ensureNonEmptyMap(required)
}

func (c *Config) validateMedia() error {
	if err := ensureNonEmptyMap(map[string]string{
		"media.accepted_format":    c.Media.AcceptedFormat,
		"media.accepted_extension": c.Media.AcceptedExtension,
		"media.video_codec":        c.Media.VideoCodec,
		"media.audio_codec":        c.Media.AudioCodec,
		"media.video_encoder":      c.Media.VideoEncoder,
		"media.audio_encoder":      c.Media.AudioEncoder,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePublish() error {
	switch c.Publish.Backend {
	case BackendB2, BackendS3:
	default:
		return fmt.Errorf("publish.backend must be %q or %q, got %q", BackendB2, BackendS3, c.Publish.Backend)
	}
	if c.Publish.BaseURL == "" {
		return errors.New("publish.base_url must be set")
	}
	if !strings.Contains(c.Publish.BaseURL, "{prefix}") {
		return errors.New("publish.base_url must contain the {prefix} placeholder")
	}
	if c.Publish.Concurrency < 1 {
		return errors.New("publish.concurrency must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format must be auto, console, or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func ensureNonEmptyMap(values map[string]string) error {
	for key, value := range values {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must be set", key)
		}
	}
	return nil
}
