package webhelper

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the helper configuration, as it appears in the YAML file:
//
//	url: http://localhost:8000
//	browser: chromium
//	waitTimeout: 2s
//	windowSize: 1280x720
//	capabilities:
//	  lang: [en-GB]
type Config struct {
	URL          string              `yaml:"url"`
	Browser      string              `yaml:"browser,omitempty"`
	Remote       string              `yaml:"remote,omitempty"`
	WaitTimeout  time.Duration       `yaml:"waitTimeout,omitempty"`
	Capabilities map[string][]string `yaml:"capabilities,omitempty"`
	Headless     *bool               `yaml:"headless,omitempty"`
	WindowSize   string              `yaml:"windowSize,omitempty"`
	UserAgent    string              `yaml:"userAgent,omitempty"`
	Restart      bool                `yaml:"restart,omitempty"`
	Output       string              `yaml:"output,omitempty"`
}

var errNoURL = errors.New("url is not set")

// LoadConfig reads the YAML configuration from r.
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.URL == "" {
		return errNoURL
	}
	if _, err := parseBaseURL(c.URL); err != nil {
		return err
	}
	if c.WindowSize != "" {
		if _, _, err := parseWindowSize(c.WindowSize); err != nil {
			return err
		}
	}
	return nil
}

// Options returns the helper options for the configuration.
func (c *Config) Options() []Option {
	opts := []Option{
		WithBrowser(c.Browser),
		WithRemote(c.Remote),
		WithWaitTimeout(c.WaitTimeout),
		WithUserAgent(c.UserAgent),
		WithRestart(c.Restart),
		WithOutputDir(c.Output),
	}
	if c.Headless != nil {
		opts = append(opts, WithHeadless(*c.Headless))
	}
	if w, h, err := parseWindowSize(c.WindowSize); err == nil {
		opts = append(opts, WithWindowSize(w, h))
	}
	for name, values := range c.Capabilities {
		opts = append(opts, WithCapability(name, values...))
	}
	return opts
}

// parseWindowSize parses the "WIDTHxHEIGHT" string.
func parseWindowSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid window size %q, want WIDTHxHEIGHT", s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(ws))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid window width: %w", err)
	}
	h, err := strconv.Atoi(strings.TrimSpace(hs))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid window height: %w", err)
	}
	return w, h, nil
}
