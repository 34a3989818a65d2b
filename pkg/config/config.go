// Package config loads converter settings from a YAML file.
//
// Values may reference environment variables as ${NAME} or
// ${NAME:-default}; they are substituted before the document is parsed.
//
//	log:
//	  level: debug
//	  format: console
//	convert:
//	  allow_missing: true
//	  num_iteration: ${LGBM_ROUNDS:-0}
//	header:
//	  copyright: ${USER}
package config

import (
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/skpmml/core/schema"
	"github.com/YuminosukeSato/skpmml/pkg/errors"
	"github.com/YuminosukeSato/skpmml/pkg/log"
)

type Config struct {
	Log     LogConfig     `yaml:"log"`
	Convert ConvertConfig `yaml:"convert"`
	Header  HeaderConfig  `yaml:"header"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type ConvertConfig struct {
	// AllowMissing keeps default children in tree models.
	AllowMissing bool `yaml:"allow_missing"`
	// NumIteration limits LightGBM boosting rounds when the estimator has
	// no num_iteration option of its own.
	NumIteration int `yaml:"num_iteration"`
	// Workers caps parallel batch conversions; 0 means one per CPU.
	Workers int `yaml:"workers"`
}

// HeaderConfig fills the PMML Header element.
type HeaderConfig struct {
	Copyright   string `yaml:"copyright"`
	Description string `yaml:"description"`
	Timestamp   bool   `yaml:"timestamp"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	// Textfile receives the metrics in the Prometheus text format after a
	// run, for the node exporter textfile collector.
	Textfile string `yaml:"textfile"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: "info", Format: "console"},
		Header: HeaderConfig{Timestamp: true},
	}
}

// Load reads and validates the file at path on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes a YAML document. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(strings.NewReader(substituteEnvVars(string(data))))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "failed to parse YAML")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := log.ToLogLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "console", "json", "cloud":
	default:
		return errors.NewInvalidAttributeValueError("log", "format", c.Log.Format, "console", "json", "cloud")
	}
	if c.Convert.NumIteration < 0 {
		return errors.NewInvalidAttributeValueError("convert", "num_iteration", c.Convert.NumIteration, "0 or more")
	}
	if c.Convert.Workers < 0 {
		return errors.NewInvalidAttributeValueError("convert", "workers", c.Convert.Workers, "0 or more")
	}
	return nil
}

// Options returns the encoder switches of one conversion.
func (c *Config) Options() schema.Options {
	return schema.Options{
		AllowMissing: c.Convert.AllowMissing,
		NumIteration: c.Convert.NumIteration,
	}
}

// substituteEnvVars replaces ${NAME} with the variable's value and
// ${NAME:-default} with the default when the variable is unset or empty.
func substituteEnvVars(content string) string {
	var b strings.Builder
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		name, def, _ := strings.Cut(content[start+2:end], ":-")
		value := os.Getenv(name)
		if value == "" {
			value = def
		}
		b.WriteString(content[:start])
		b.WriteString(value)
		content = content[end+1:]
	}
	b.WriteString(content)
	return b.String()
}
