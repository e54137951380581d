package common

import (
	"github.com/goccy/go-yaml"
	"gitlab.com/tozd/go/errors"
	"os"
)

type Config struct {
	// Lib is the name of the native library the bindings load.
	Lib         string       `yaml:"lib"`
	Filter      FilterConfig `yaml:"filter"`
	OpaqueTypes []string     `yaml:"opaqueTypes"`
	CSharp      CSharpConfig `yaml:"csharp"`
	Java        JavaConfig   `yaml:"java"`
}

type FilterConfig struct {
	Mode     FilterMode `yaml:"mode"`
	Idents   []string   `yaml:"idents"`
	Patterns []string   `yaml:"patterns"` // regular expressions, e.g. "test_.*"
}

// NewFilter builds the Filter described by the configuration.
func (c FilterConfig) NewFilter() (*Filter, error) {
	f := NewFilter(c.Mode, c.Idents...)
	for _, p := range c.Patterns {
		if err := f.AddPattern(p); err != nil {
			return nil, err
		}
	}
	return f, nil
}

type CSharpConfig struct {
	Namespace        string        `yaml:"namespace"`
	ClassName        string        `yaml:"className"`
	ConstsClassName  string        `yaml:"constsClassName"`
	TypesFileName    string        `yaml:"typesFileName"`
	UtilsClassName   string        `yaml:"utilsClassName"`
	Types            bool          `yaml:"types"`
	Utils            bool          `yaml:"utils"`
	WrapperBlacklist []string      `yaml:"wrapperBlacklist"`
	Consts           []CustomConst `yaml:"consts"`
}

// CustomConst is a constant injected into the generated constants class.
type CustomConst struct {
	Type  string `yaml:"type"`
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

type JavaConfig struct {
	Namespace        string            `yaml:"namespace"`
	Lib              string            `yaml:"lib"`
	TypeMap          map[string]string `yaml:"typeMap"`
	MultiCallback    string            `yaml:"multiCallback"`
	WrapperBlacklist []string          `yaml:"wrapperBlacklist"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Lib: "backend",
		Filter: FilterConfig{
			Mode: Blacklist,
		},
		CSharp: CSharpConfig{
			ConstsClassName: "Constants",
			TypesFileName:   "Types",
			UtilsClassName:  "Utils",
			Types:           true,
			Utils:           true,
		},
		Java: JavaConfig{
			Namespace:     "bindings",
			MultiCallback: "perIndex",
		},
	}
}

// LoadConfig reads the YAML file at path on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	err = yaml.Unmarshal(bytes, config)
	if err != nil {
		return nil, errors.Errorf("config %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Errorf("config %s: %w", path, err)
	}

	return config, nil
}

func (c *Config) Validate() error {
	switch c.Filter.Mode {
	case Blacklist, Whitelist:
	default:
		return errors.Errorf("unknown filter mode %q", c.Filter.Mode)
	}

	if _, err := c.Filter.NewFilter(); err != nil {
		return err
	}

	switch c.Java.MultiCallback {
	case "perIndex", "skip":
	default:
		return errors.Errorf("unknown multi-callback policy %q", c.Java.MultiCallback)
	}

	return nil
}
