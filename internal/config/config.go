// Package config handles configuration for the upload pipeline,
// including defaults, an optional YAML file, and environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

const (
	defaultMaxFiles      = 10
	defaultMaxImageBytes = 10 << 20  // 10 MiB
	defaultMaxVideoBytes = 100 << 20 // 100 MiB
	defaultDirectLimit   = 80 << 20  // 80 MiB, above this uploads go segmented
	defaultPartSize      = 16 << 20
)

// Config holds runtime settings for the upload pipeline.
type Config struct {
	Limits   Limits   `yaml:"limits"`
	Storage  Storage  `yaml:"storage"`
	Previews Previews `yaml:"previews"`
	DBPath   string   `yaml:"db_path"`
}

// Limits bounds intake and strategy selection.
type Limits struct {
	MaxFiles      int   `yaml:"max_files"`
	MaxImageBytes int64 `yaml:"max_image_bytes"`
	MaxVideoBytes int64 `yaml:"max_video_bytes"`
	DirectLimit   int64 `yaml:"direct_limit"`
	PartSize      int64 `yaml:"part_size"`
}

// Storage points at the S3-compatible backend.
type Storage struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	PublicURL string `yaml:"public_url"`
}

// Previews controls local preview generation.
type Previews struct {
	Dir         string `yaml:"dir"`
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
	NativeHEIC  bool   `yaml:"native_heic"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: the storage credentials are insecure and must be overridden.
func (c *Config) LoadDefaults() {
	c.Limits.MaxFiles = defaultMaxFiles
	c.Limits.MaxImageBytes = defaultMaxImageBytes
	c.Limits.MaxVideoBytes = defaultMaxVideoBytes
	c.Limits.DirectLimit = defaultDirectLimit
	c.Limits.PartSize = defaultPartSize
	c.Storage.Endpoint = "http://127.0.0.1:9000/"
	c.Storage.Region = "us-east-1"
	c.Storage.Bucket = "media"
	c.Storage.AccessKey = "admin"
	c.Storage.SecretKey = "secretpassword"
	c.Previews.FFmpegPath = "ffmpeg"
	c.Previews.FFprobePath = "ffprobe"
	c.DBPath = "mediaup.db"
}

// Load builds a Config by applying defaults, then overlaying values from
// an optional YAML file and finally from MEDIAUP_* environment variables.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setStr := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setStr("MEDIAUP_S3_ENDPOINT", &c.Storage.Endpoint)
	setStr("MEDIAUP_S3_REGION", &c.Storage.Region)
	setStr("MEDIAUP_S3_BUCKET", &c.Storage.Bucket)
	setStr("MEDIAUP_S3_ACCESS_KEY", &c.Storage.AccessKey)
	setStr("MEDIAUP_S3_SECRET_KEY", &c.Storage.SecretKey)
	setStr("MEDIAUP_S3_PUBLIC_URL", &c.Storage.PublicURL)
	setStr("MEDIAUP_DB_PATH", &c.DBPath)
	setStr("MEDIAUP_PREVIEW_DIR", &c.Previews.Dir)

	if v, ok := os.LookupEnv("MEDIAUP_MAX_FILES"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Limits.MaxFiles = n
		}
	}
	if v, ok := os.LookupEnv("MEDIAUP_NATIVE_HEIC"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Previews.NativeHEIC = b
		}
	}
}
