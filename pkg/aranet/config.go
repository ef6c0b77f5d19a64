package aranet

import (
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// DefaultEndpoint is the Aranet Cloud API base used when the configuration
// does not name one.
const DefaultEndpoint = "https://aranet.cloud/api"

// Config holds the static Aranet Cloud credentials. The client never
// mutates it.
type Config struct {
	Endpoint string `yaml:"endpoint"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Space    string `yaml:"space_name"`
}

// LoadConfig reads a YAML credentials file and applies defaults.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Reason: "cannot read " + path, Err: err}
	}
	var cfg Config
	if err := yaml.UnmarshalStrict(raw, &cfg); err != nil {
		return nil, &ConfigError{Reason: "cannot parse " + path, Err: err}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	c.Endpoint = strings.TrimRight(c.Endpoint, "/")
	switch {
	case c.Username == "":
		return &ConfigError{Reason: "username is required"}
	case c.Password == "":
		return &ConfigError{Reason: "password is required"}
	case c.Space == "":
		return &ConfigError{Reason: "space_name is required"}
	}
	return nil
}
