package config

import (
	"os"
	"path/filepath"

	"github.com/binary-install/grd/pkg/httpclient"
	"github.com/binary-install/grd/pkg/repository"
	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

// Default config file locations, relative to the working directory or one of its parents.
var DefaultPaths = []string{
	filepath.Join(".config", "grd.yml"),
	filepath.Join(".config", "grd.yaml"),
}

// ErrNotFound is returned by Discover when no default config file exists.
var ErrNotFound = errors.New("no grd config found")

// Config holds defaults applied underneath the command line flags.
type Config struct {
	// Headers are sent with every request, before the ones given with --header.
	Headers []string `yaml:"headers"`
	// IPFamily is used when --ip is not given.
	IPFamily httpclient.IPFamily `yaml:"ip_family"`
	// WebsiteType is used when --website-type is not given and cannot be guessed.
	WebsiteType repository.Platform `yaml:"website_type"`
	// UserAgent replaces the default user agent.
	UserAgent string `yaml:"user_agent"`
}

// Validate checks the enumerated fields and normalizes their case.
func (c *Config) Validate() error {
	if c.IPFamily != "" {
		var family httpclient.IPFamily
		if err := family.Set(string(c.IPFamily)); err != nil {
			return errors.Wrap(err, "ip_family")
		}
		c.IPFamily = family
	}
	if c.WebsiteType != "" {
		platform, err := repository.ParsePlatform(string(c.WebsiteType))
		if err != nil {
			return errors.Wrap(err, "website_type")
		}
		c.WebsiteType = platform
	}
	if _, err := httpclient.ParseHeaders(c.Headers); err != nil {
		return errors.Wrap(err, "headers")
	}
	return nil
}

// Load reads and parses a grd config file from the given path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file: %s", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file: %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config file: %s", path)
	}

	return &cfg, nil
}

// Discover searches for a default config file in the current directory
// and its parents.
func Discover() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "failed to get current directory")
	}

	for {
		for _, candidate := range DefaultPaths {
			configPath := filepath.Join(dir, candidate)
			if _, err := os.Stat(configPath); err == nil {
				return configPath, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrNotFound
}

// LoadOrDiscover loads the config at configPath, or a discovered default one
// if configPath is empty. Having no default config is not an error: an empty
// Config and an empty path are returned.
func LoadOrDiscover(configPath string) (*Config, string, error) {
	path := configPath
	if path == "" {
		discovered, err := Discover()
		if errors.Is(err, ErrNotFound) {
			return &Config{}, "", nil
		}
		if err != nil {
			return nil, "", err
		}
		path = discovered
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}
