package config

import (
	"os"
	"strings"
	"time"

	"httpkit/application/http/client"
	"httpkit/application/http/semantic"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	EnvUserAgent = "HTTPKIT_USER_AGENT"
	EnvTimeout   = "HTTPKIT_TIMEOUT"
)

type Header struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// Config is the CLI configuration. Zero fields fall back to the client defaults.
type Config struct {
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
	Headers   []Header      `yaml:"headers"`
	Merge     string        `yaml:"merge"`

	UseReceivedReasonPhrase bool `yaml:"use_received_reason_phrase"`
	// MaxBodySize in bytes. Zero keeps the client default.
	MaxBodySize uint `yaml:"max_body_size"`
}

var ErrInvalidMerge = errors.New("merge must be defaults-first or request-first")

// Load reads the YAML file at path, if any, then applies environment overrides.
// A .env file in the working directory is loaded first.
func Load(path string) (*Config, error) {
	if err := loadEnvFile(".env"); err != nil {
		return nil, errors.Wrap(err, "loading .env")
	}

	cfg := &Config{}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "reading config file")
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, errors.Wrapf(err, "parsing %s", path)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if _, err := cfg.mergePolicy(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadEnvFile(name string) error {
	if _, err := os.Stat(name); err == nil {
		return godotenv.Load(name)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvUserAgent); ok && v != "" {
		c.UserAgent = v
	}

	if v, ok := os.LookupEnv(EnvTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrapf(err, "parsing %s", EnvTimeout)
		}
		c.Timeout = d
	}

	return nil
}

func (c *Config) mergePolicy() (client.MergePolicy, error) {
	switch strings.ToLower(c.Merge) {
	case "", client.MergeDefaultsFirst.String():
		return client.MergeDefaultsFirst, nil
	case client.MergeRequestFirst.String():
		return client.MergeRequestFirst, nil
	}
	return 0, errors.Wrapf(ErrInvalidMerge, "got %q", c.Merge)
}

// ClientOptions converts the configuration for [client.New].
func (c *Config) ClientOptions() (client.Options, error) {
	merge, err := c.mergePolicy()
	if err != nil {
		return client.Options{}, err
	}

	opts := client.Options{
		UserAgent: c.UserAgent,
		Timeout:   c.Timeout,
		Merge:     merge,

		UseReceivedReasonPhrase: c.UseReceivedReasonPhrase,
	}

	if len(c.Headers) > 0 {
		headers := semantic.NewHeaders()
		for _, h := range c.Headers {
			headers.Add(h.Name, h.Value)
		}
		opts.DefaultHeaders = headers
	}

	return opts, nil
}

// WireOptions returns [client.DefaultWireOptions] with the configured body limit.
func (c *Config) WireOptions() client.WireOptions {
	opts := client.DefaultWireOptions
	if c.MaxBodySize > 0 {
		opts.MaxBodySize = c.MaxBodySize
	}
	return opts
}
