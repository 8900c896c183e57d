package bot

import (
	"errors"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"
)

// Config is the bot-side configuration read from lintbridge.toml in the
// repository under review. It controls which linters run for this repo and
// which paths are ignored entirely. It is independent of the owner's custom
// style configuration, which lives in a separate repository.
type Config struct {
	Linters     map[string]bool `toml:"linters"`
	Ignore      []string        `toml:"ignore"`
	Style       *Style          `toml:"style"`
	Enforcement *Enforcement    `toml:"enforcement"`
}

// Style points at the owner's external style repository. When Enabled is
// false or Repo is empty, linters run with their default configuration.
type Style struct {
	Enabled bool   `toml:"enabled"`
	Repo    string `toml:"repo"`
}

type Enforcement struct {
	FailCheck bool `toml:"fail_check"`
}

// ReadConfig loads lintbridge.toml from path. A missing or unreadable file
// yields the default configuration; a parse error also yields the default
// configuration along with the error so the caller can warn.
func ReadConfig(path string) (*Config, error) {
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}

	defaultConfig := &Config{
		Linters:     map[string]bool{},
		Ignore:      []string{},
		Style:       &Style{Enabled: false, Repo: ""},
		Enforcement: &Enforcement{FailCheck: false},
	}

	fileName := path + "lintbridge.toml"
	if _, err := os.Stat(fileName); errors.Is(err, os.ErrNotExist) {
		return defaultConfig, nil
	}
	file, err := os.ReadFile(fileName)
	if err != nil {
		return defaultConfig, err
	}
	// Unmarshal into a fresh struct so a parse error cannot leave partial
	// values in the returned default.
	config := &Config{}
	err = toml.Unmarshal(file, config)
	if err != nil {
		return defaultConfig, err
	}
	if config.Linters == nil {
		config.Linters = map[string]bool{}
	}
	if config.Ignore == nil {
		config.Ignore = []string{}
	}
	if config.Style == nil {
		config.Style = defaultConfig.Style
	}
	if config.Enforcement == nil {
		config.Enforcement = defaultConfig.Enforcement
	}
	return config, nil
}

// LinterEnabled reports whether the named linter should run for this repo.
// Linters are on unless the config explicitly turns them off.
func (c *Config) LinterEnabled(name string) bool {
	enabled, found := c.Linters[name]
	if !found {
		return true
	}
	return enabled
}

// Ignored reports whether path matches any of the configured ignore globs.
// Invalid patterns are skipped rather than failing the review.
func (c *Config) Ignored(path string) bool {
	for _, pattern := range c.Ignore {
		match, err := doublestar.Match(pattern, path)
		if err != nil {
			continue
		}
		if match {
			return true
		}
	}
	return false
}
