package config

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"thirdcoast.systems/twpics/pkg/canvas"
	"thirdcoast.systems/twpics/pkg/imageload"
)

type Config struct {
	// WebServer Configuration
	WebServerPort int    `mapstructure:"WEBSERVER_PORT" validate:"min=1,max=65535"`
	SessionSecret string `mapstructure:"SESSION_SECRET"`

	// Editor Configuration
	MaxUploadSize      string        `mapstructure:"MAX_UPLOAD_SIZE" validate:"required"`
	MaxImagePixels     int64         `mapstructure:"MAX_IMAGE_PIXELS" validate:"min=1"`
	SessionIdleTimeout time.Duration `mapstructure:"SESSION_IDLE_TIMEOUT" validate:"min=1m"`
	OutputFormat       string        `mapstructure:"OUTPUT_FORMAT"`
	JPEGQuality        int           `mapstructure:"JPEG_QUALITY" validate:"min=1,max=100"`

	// Shell Configuration
	AppName    string `mapstructure:"APP_NAME" validate:"required"`
	ThemeColor string `mapstructure:"THEME_COLOR" validate:"hexcolor"`

	// Derived
	MaxUploadBytes int64           `mapstructure:"-"`
	Encoding       canvas.Encoding `mapstructure:"-"`
}

// use reflect to bind environment variables based on mapstructure tags
func bindEnv(c Config) {
	val := reflect.ValueOf(c)
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("mapstructure")
		if tag != "" && tag != "-" {
			viper.BindEnv(tag)
		}
	}
}

func LoadConfig(ctx context.Context) (*Config, error) {
	bindEnv(Config{})
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("WEBSERVER_PORT", 8080)
	viper.SetDefault("MAX_UPLOAD_SIZE", "25MB")
	viper.SetDefault("MAX_IMAGE_PIXELS", imageload.DefaultMaxPixels)
	viper.SetDefault("SESSION_IDLE_TIMEOUT", 30*time.Minute)
	viper.SetDefault("OUTPUT_FORMAT", "png")
	viper.SetDefault("JPEG_QUALITY", canvas.DefaultJPEGQuality)
	viper.SetDefault("APP_NAME", "TwPicsEditor")
	viper.SetDefault("THEME_COLOR", "#000000")

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	size, err := humanize.ParseBytes(cfg.MaxUploadSize)
	if err != nil {
		return nil, fmt.Errorf("parse MAX_UPLOAD_SIZE: %w", err)
	}
	if size == 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_SIZE must be greater than zero")
	}
	cfg.MaxUploadBytes = int64(size)

	format, err := canvas.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return nil, fmt.Errorf("parse OUTPUT_FORMAT: %w", err)
	}
	cfg.Encoding = canvas.Encoding{Format: format, Quality: cfg.JPEGQuality}

	slog.Info("Loaded configuration",
		"port", cfg.WebServerPort,
		"max_upload", humanize.Bytes(size),
		"max_pixels", humanize.Comma(cfg.MaxImagePixels),
		"idle_timeout", cfg.SessionIdleTimeout,
		"output_format", cfg.Encoding.Format,
		"app_name", cfg.AppName,
	)

	return &cfg, nil
}

// ImageLimits bounds what an upload may be, in bytes and decoded pixels.
func (c *Config) ImageLimits() imageload.Limits {
	return imageload.Limits{MaxBytes: c.MaxUploadBytes, MaxPixels: c.MaxImagePixels}
}
