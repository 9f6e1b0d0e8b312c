package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering, lowest precedence first:
//  1. built-in defaults
//  2. YAML file named by GHARVEST_CONFIG, if set
//  3. environment variables with the GHARVEST_ prefix
//
// Env keys use double underscores for nesting:
// GHARVEST_ARCHIVE__BASE_URL -> archive.base_url. The loaded config is
// validated before it is returned.
func Load() (Config, error) {
	cfg, err := load(os.Getenv("GHARVEST_CONFIG"))
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func load(path string) (Config, error) {
	cfg := defaults()

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, err
		}
	}

	envProvider := env.Provider("GHARVEST_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "GHARVEST_"))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, err
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
