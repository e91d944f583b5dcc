package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// envExpr matches ${NAME} and ${NAME:-fallback} references in the raw
// document. Expansion is textual and happens before YAML parsing, so a
// reference can stand anywhere a scalar can.
var envExpr = regexp.MustCompile(`\$\{(\w+)(:-[^}]*)?\}`)

// Load reads a YAML configuration file, substitutes environment references,
// parses it, and applies defaults. A reference with neither a value nor a
// fallback fails the load; all missing variables are reported at once.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var missing []string
	expanded := envExpr.ReplaceAllStringFunc(string(raw), func(expr string) string {
		groups := envExpr.FindStringSubmatch(expr)
		name := groups[1]

		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		if fallback, ok := strings.CutPrefix(groups[2], ":-"); ok {
			return fallback
		}

		missing = append(missing, name)
		return expr
	})
	if len(missing) > 0 {
		return nil, fmt.Errorf("config: %s references unset variables: %s",
			path, strings.Join(missing, ", "))
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.Defaults()
	return &cfg, nil
}
