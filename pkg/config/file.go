package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/nodewee/file-to-text/pkg/utils"
)

const ConfigFileName = "config.yaml"

// GetConfigFilePath returns the full path to the user configuration file
func GetConfigFilePath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ConfigFileName), nil
}

// ListConfigKeys returns all available configuration keys, sorted
func ListConfigKeys() []string {
	keys := make([]string, 0, len(defaults))
	for key := range defaults {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// IsKnownKey reports whether key is a supported configuration key
func IsKnownKey(key string) bool {
	_, ok := defaults[key]
	return ok
}

// GetConfigValue returns the effective value of key from v
func GetConfigValue(v *viper.Viper, key string) (interface{}, error) {
	if !IsKnownKey(key) {
		return nil, utils.NewValidationError(fmt.Sprintf("unknown config key: %s", key), nil)
	}
	return v.Get(key), nil
}

// SetConfigValue persists key=value into the YAML file at path. Only the
// file's own settings are written back, so environment overrides never leak
// into it. The resulting configuration must validate.
func SetConfigValue(path, key, value string) error {
	if !IsKnownKey(key) {
		return utils.NewValidationError(fmt.Sprintf("unknown config key: %s", key), nil)
	}

	fileV := viper.New()
	fileV.SetConfigType("yaml")
	if _, err := os.Stat(path); err == nil {
		fileV.SetConfigFile(path)
		if err := fileV.ReadInConfig(); err != nil {
			return utils.WrapError(err, utils.ErrorTypeValidation, "failed to read config file")
		}
	}
	typed, err := coerceValue(key, value)
	if err != nil {
		return err
	}
	fileV.Set(key, typed)

	// Validate the merged result before touching the file
	check := viper.New()
	for _, k := range ListConfigKeys() {
		if fileV.IsSet(k) {
			check.Set(k, fileV.Get(k))
		}
	}
	if _, err := Load(check); err != nil {
		return err
	}

	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return utils.NewIOError("failed to create config directory", err)
	}
	if err := fileV.WriteConfigAs(path); err != nil {
		return utils.NewIOError("failed to write config file", err)
	}
	return nil
}

// RenderYAML renders the effective configuration as YAML
func RenderYAML(cfg *Config) (string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", utils.WrapError(err, utils.ErrorTypeSystem, "failed to render config")
	}
	return string(data), nil
}

// coerceValue converts a command-line string to the type of the key's default
func coerceValue(key, value string) (interface{}, error) {
	var (
		typed interface{}
		err   error
	)
	switch defaults[key].(type) {
	case bool:
		typed, err = cast.ToBoolE(value)
	case int, int64:
		typed, err = cast.ToInt64E(value)
	case time.Duration:
		typed, err = cast.ToDurationE(value)
	case []string:
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		typed = parts
	default:
		typed = value
	}
	if err != nil {
		return nil, utils.NewValidationError(fmt.Sprintf("invalid value for %s: %q", key, value), err)
	}
	if d, ok := typed.(time.Duration); ok {
		return d.String(), nil
	}
	return typed, nil
}
