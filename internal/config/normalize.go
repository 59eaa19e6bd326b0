package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeMedia()
	if err := c.normalizePublish(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkRoot) == "" {
		c.Paths.WorkRoot = os.TempDir()
	}
	if c.Paths.WorkRoot, err = expandPath(c.Paths.WorkRoot); err != nil {
		return fmt.Errorf("paths.work_root: %w", err)
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Metrics.TextfilePath, err = expandPath(strings.TrimSpace(c.Metrics.TextfilePath)); err != nil {
		return fmt.Errorf("metrics.textfile_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	c.Tools.Packager = strings.TrimSpace(c.Tools.Packager)
	c.Tools.B2 = strings.TrimSpace(c.Tools.B2)
}

func (c *Config) normalizeMedia() {
	c.Media.AcceptedFormat = strings.TrimSpace(c.Media.AcceptedFormat)
	ext := strings.ToLower(strings.TrimSpace(c.Media.AcceptedExtension))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	c.Media.AcceptedExtension = ext
	c.Media.VideoCodec = strings.ToLower(strings.TrimSpace(c.Media.VideoCodec))
	c.Media.AudioCodec = strings.ToLower(strings.TrimSpace(c.Media.AudioCodec))
	c.Media.VideoEncoder = strings.TrimSpace(c.Media.VideoEncoder)
	c.Media.AudioEncoder = strings.TrimSpace(c.Media.AudioEncoder)
}

func (c *Config) normalizePublish() error {
	c.Publish.Backend = strings.ToLower(strings.TrimSpace(c.Publish.Backend))
	c.Publish.BaseURL = strings.TrimSpace(c.Publish.BaseURL)
	if c.Publish.BaseURL != "" && !strings.HasSuffix(c.Publish.BaseURL, "/") {
		c.Publish.BaseURL += "/"
	}

	if env := strings.TrimSpace(c.Publish.EnvFile); env != "" {
		expanded, err := expandPath(env)
		if err != nil {
			return fmt.Errorf("publish.env_file: %w", err)
		}
		c.Publish.EnvFile = expanded
		// Existing environment variables win over the file.
		if err := godotenv.Load(expanded); err != nil {
			return fmt.Errorf("publish.env_file: load %s: %w", expanded, err)
		}
	}

	s3 := &c.Publish.S3
	s3.Endpoint = strings.TrimRight(strings.TrimSpace(s3.Endpoint), "/")
	s3.Region = strings.TrimSpace(s3.Region)
	if s3.Region == "" {
		s3.Region = firstEnv("AWS_REGION")
	}
	if s3.Region == "" {
		s3.Region = defaultS3Region
	}
	if strings.TrimSpace(s3.AccessKeyID) == "" {
		s3.AccessKeyID = firstEnv("AWS_ACCESS_KEY_ID", "B2_APPLICATION_KEY_ID")
	}
	if strings.TrimSpace(s3.SecretAccessKey) == "" {
		s3.SecretAccessKey = firstEnv("AWS_SECRET_ACCESS_KEY", "B2_APPLICATION_KEY")
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
