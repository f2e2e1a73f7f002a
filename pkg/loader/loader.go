package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/nest/pkg/domain"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads a state tree from path. Files ending in .json are decoded as
// JSON, anything else as YAML.
func LoadConfig(path string) (domain.StateConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.StateConfig{}, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg domain.StateConfig
	if isJSON(path) {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return domain.StateConfig{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	if err := checkConfig(cfg); err != nil {
		return domain.StateConfig{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// ParseConfig decodes a state tree from YAML. JSON input is accepted as well.
func ParseConfig(data []byte) (domain.StateConfig, error) {
	var cfg domain.StateConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.StateConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := checkConfig(cfg); err != nil {
		return domain.StateConfig{}, err
	}
	return cfg, nil
}

// MarshalConfig encodes a state tree as YAML.
func MarshalConfig(cfg domain.StateConfig) ([]byte, error) {
	return yaml.Marshal(cfg)
}

func checkConfig(cfg domain.StateConfig) error {
	if cfg.Key == "" {
		return fmt.Errorf("%w: root state has no key", domain.ErrInvalidConfig)
	}
	var err error
	cfg.Walk(func(path []string, c domain.StateConfig) {
		if err == nil && c.Key == "" {
			err = fmt.Errorf("%w: state without key under %s", domain.ErrInvalidConfig, strings.Join(path[:len(path)-1], "/"))
		}
	})
	return err
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
