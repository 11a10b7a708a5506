package config

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/nodewee/file-to-text/pkg/utils"
)

var (
	validLogLevels  = []interface{}{"debug", "info", "warn", "warning", "error"}
	validLogFormats = []interface{}{"text", "json"}
)

// Validate validates the configuration
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Server),
		validation.Field(&c.Conversion),
		validation.Field(&c.Log),
	)
	if err != nil {
		return utils.NewValidationError("configuration validation failed", err)
	}
	return nil
}

// Validate checks server settings
func (s ServerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Addr, validation.Required),
		validation.Field(&s.MaxUploadMB, validation.Required, validation.Min(int64(1)), validation.Max(int64(4096))),
		validation.Field(&s.ReadTimeout, validation.Min(time.Duration(0))),
		validation.Field(&s.WriteTimeout, validation.Min(time.Duration(0))),
		validation.Field(&s.CORSOrigins, validation.Each(validation.Required)),
	)
}

// Validate checks conversion settings
func (c ConversionConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ContainerImage, validation.When(c.EnablePlugins, validation.Required)),
	)
}

// Validate checks logging settings
func (l LogConfig) Validate() error {
	level := strings.ToLower(l.Level)
	format := strings.ToLower(l.Format)
	return validation.Errors{
		"level":  validation.Validate(level, validation.Required, validation.In(validLogLevels...)),
		"format": validation.Validate(format, validation.Required, validation.In(validLogFormats...)),
	}.Filter()
}
