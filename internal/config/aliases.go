package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type aliasFile struct {
	Aliases map[string]string `yaml:"aliases"`
}

// LoadAliases reads the optional command alias file. Each entry maps an alias
// name to a canonical command name. A missing file yields no aliases, same as
// an empty path.
func LoadAliases(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading alias file %s: %w", path, err)
	}
	var f aliasFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parsing alias file %s: %w", path, err)
	}
	return f.Aliases, nil
}
