package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodewee/file-to-text/pkg/utils"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8501", cfg.Server.Addr)
	assert.Equal(t, int64(200), cfg.Server.MaxUploadMB)
	assert.False(t, cfg.Conversion.EnablePlugins)
	assert.Equal(t, int64(200<<20), cfg.Server.MaxUploadBytes())
}

func TestLoadDefaultsMatchDefault(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FILE_TO_TEXT_SERVER_ADDR", ":9000")
	t.Setenv("FILE_TO_TEXT_CONVERSION_ENABLE_PLUGINS", "true")
	t.Setenv("FILE_TO_TEXT_SERVER_READ_TIMEOUT", "5s")
	t.Setenv("FILE_TO_TEXT_SERVER_CORS_ORIGINS", "http://a.example,http://b.example")

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.True(t, cfg.Conversion.EnablePlugins)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.CORSOrigins)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"zero upload limit", func(c *Config) { c.Server.MaxUploadMB = 0 }},
		{"negative timeout", func(c *Config) { c.Server.ReadTimeout = -time.Second }},
		{"unknown log level", func(c *Config) { c.Log.Level = "chatty" }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
		{"plugins without image", func(c *Config) {
			c.Conversion.EnablePlugins = true
			c.Conversion.ContainerImage = ""
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, utils.ErrorTypeValidation, utils.GetErrorType(err))
		})
	}
}

func TestInitReadsExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":7000\"\nlog:\n  level: debug\n"), 0o644))

	v := viper.New()
	require.NoError(t, Init(v, path))
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, int64(200), cfg.Server.MaxUploadMB)
}

func TestInitRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o644))

	err := Init(viper.New(), path)
	assert.Error(t, err)
}

func TestSetConfigValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)

	require.NoError(t, SetConfigValue(path, "server.max_upload_mb", "50"))
	require.NoError(t, SetConfigValue(path, "conversion.enable_plugins", "true"))

	v := viper.New()
	require.NoError(t, Init(v, path))
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, int64(50), cfg.Server.MaxUploadMB)
	assert.True(t, cfg.Conversion.EnablePlugins)
}

func TestSetConfigValueRejectsInvalidInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)

	assert.Error(t, SetConfigValue(path, "server.nope", "1"))
	assert.Error(t, SetConfigValue(path, "server.max_upload_mb", "lots"))
	assert.Error(t, SetConfigValue(path, "log.level", "chatty"))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "invalid values must not create the file")
}

func TestGetConfigValue(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	value, err := GetConfigValue(v, "server.addr")
	require.NoError(t, err)
	assert.Equal(t, ":8501", value)

	_, err = GetConfigValue(v, "missing.key")
	assert.Error(t, err)
}

func TestRenderYAML(t *testing.T) {
	out, err := RenderYAML(Default())
	require.NoError(t, err)
	assert.Contains(t, out, "8501")
	assert.Contains(t, out, "read_timeout: 30s")
	assert.Contains(t, out, "enable_plugins: false")
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FILE_TO_TEXT_LOG_LEVEL=warn\n"), 0o644))
	t.Setenv("FILE_TO_TEXT_LOG_LEVEL", "")
	os.Unsetenv("FILE_TO_TEXT_LOG_LEVEL")

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}
