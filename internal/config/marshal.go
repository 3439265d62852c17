package config

import "time"

// marshaledConfig is the sanitized structure written to disk.
type marshaledConfig struct {
	Endpoint    string            `yaml:"endpoint,omitempty"`
	GraphQLPath string            `yaml:"graphql_path,omitempty"`
	Token       string            `yaml:"token,omitempty"`
	Insecure    bool              `yaml:"insecure,omitempty"`
	Timeout     time.Duration     `yaml:"timeout,omitempty"`
	Debug       bool              `yaml:"debug,omitempty"`
	CacheDir    string            `yaml:"cache_dir,omitempty"`
	AgeDir      string            `yaml:"age_dir,omitempty"`
	ResultTTL   time.Duration     `yaml:"result_ttl,omitempty"`
	MetricsAddr string            `yaml:"metrics_addr,omitempty"`
	Params      map[string]string `yaml:"params,omitempty"`
	Scroll      ScrollConfig      `yaml:"scroll"`
	KeyBindings KeyBindings       `yaml:"key_bindings"`
}

// MarshalYAML implements yaml.Marshaler so runtime-only state and empty
// optional fields are not written back to the file.
func (c *Config) MarshalYAML() (any, error) {
	if c == nil {
		return nil, nil
	}

	clean := marshaledConfig{
		Endpoint:    c.Endpoint,
		GraphQLPath: c.GraphQLPath,
		Token:       c.Token,
		Insecure:    c.Insecure,
		Timeout:     c.Timeout,
		Debug:       c.Debug,
		CacheDir:    c.CacheDir,
		AgeDir:      c.AgeDir,
		ResultTTL:   c.ResultTTL,
		MetricsAddr: c.MetricsAddr,
		Scroll:      c.Scroll,
		KeyBindings: c.KeyBindings,
	}

	if len(c.Params) > 0 {
		clean.Params = c.Params
	}

	return clean, nil
}
