package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/nodewee/file-to-text/pkg/constants"
	"github.com/nodewee/file-to-text/pkg/utils"
)

// EnvPrefix is prepended to every environment override, e.g. FILE_TO_TEXT_SERVER_ADDR
const EnvPrefix = "FILE_TO_TEXT"

// Default values
const (
	DefaultAddr           = ":8501"
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = time.Duration(0)
	DefaultEnablePlugins  = false
	DefaultContainerImage = "markitdown:latest"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultEnableVerbose  = false
)

// Config holds application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Conversion ConversionConfig `mapstructure:"conversion" yaml:"conversion"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
}

// ServerConfig configures the web UI and JSON API
type ServerConfig struct {
	Addr         string        `mapstructure:"addr" yaml:"addr"`
	MaxUploadMB  int64         `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"` // 0 disables it
	CORSOrigins  []string      `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// ConversionConfig configures the converter registry
type ConversionConfig struct {
	EnablePlugins  bool   `mapstructure:"enable_plugins" yaml:"enable_plugins"`
	TempDir        string `mapstructure:"temp_dir" yaml:"temp_dir"`
	CalibrePath    string `mapstructure:"calibre_path" yaml:"calibre_path"`
	ContainerImage string `mapstructure:"container_image" yaml:"container_image"`
}

// LogConfig configures the logger
type LogConfig struct {
	Level   string `mapstructure:"level" yaml:"level"`
	Format  string `mapstructure:"format" yaml:"format"`
	Verbose bool   `mapstructure:"verbose" yaml:"verbose"`
}

// defaults lists every supported key; it doubles as the key registry for `config get/set`
var defaults = map[string]interface{}{
	"server.addr":                DefaultAddr,
	"server.max_upload_mb":       constants.DefaultMaxUploadMB,
	"server.read_timeout":        DefaultReadTimeout,
	"server.write_timeout":       DefaultWriteTimeout,
	"server.cors_origins":        []string{"*"},
	"conversion.enable_plugins":  DefaultEnablePlugins,
	"conversion.temp_dir":        "",
	"conversion.calibre_path":    "",
	"conversion.container_image": DefaultContainerImage,
	"log.level":                  DefaultLogLevel,
	"log.format":                 DefaultLogFormat,
	"log.verbose":                DefaultEnableVerbose,
}

// SetDefaults registers defaults and environment binding on v
func SetDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Init points v at the config file: cfgFile when set, otherwise the first of
// ./file-to-text.yaml and ~/.file-to-text/config.yaml that exists. A missing
// file is not an error.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	if cfgFile == "" {
		cfgFile = findConfigFile()
	}
	if cfgFile == "" {
		return nil
	}

	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return nil
		}
		return utils.WrapError(err, utils.ErrorTypeValidation, "failed to read config file")
	}
	return nil
}

// findConfigFile returns the first existing default config file, "" if none
func findConfigFile() string {
	candidates := []string{constants.AppName + ".yaml"}
	if path, err := GetConfigFilePath(); err == nil {
		candidates = append(candidates, path)
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// LoadDotEnv loads .env files into the process environment; missing files are skipped
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return utils.WrapError(err, utils.ErrorTypeIO, fmt.Sprintf("failed to load %s", path))
		}
	}
	return nil
}

// Load decodes and validates the configuration held by v
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeValidation, "failed to decode configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration without reading files or environment
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         DefaultAddr,
			MaxUploadMB:  constants.DefaultMaxUploadMB,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			CORSOrigins:  []string{"*"},
		},
		Conversion: ConversionConfig{
			EnablePlugins:  DefaultEnablePlugins,
			ContainerImage: DefaultContainerImage,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// MaxUploadBytes returns the upload limit in bytes
func (s ServerConfig) MaxUploadBytes() int64 {
	return s.MaxUploadMB << 20
}

// GetConfigDir returns the user configuration directory (~/.file-to-text)
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", utils.WrapError(err, utils.ErrorTypeIO, "failed to get user home directory")
	}
	return filepath.Join(homeDir, "."+constants.AppName), nil
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Addr: %s, Plugins: %v, LogLevel: %s, Verbose: %v}",
		c.Server.Addr, c.Conversion.EnablePlugins, c.Log.Level, c.Log.Verbose)
}
