package config

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"thirdcoast.systems/twpics/pkg/canvas"
	"thirdcoast.systems/twpics/pkg/imageload"
)

func TestLoadConfig_Success_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := LoadConfig(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.Equal(t, 8080, cfg.WebServerPort)
	require.Equal(t, int64(25_000_000), cfg.MaxUploadBytes)
	require.Equal(t, imageload.DefaultMaxPixels, cfg.MaxImagePixels)
	require.Equal(t, imageload.Limits{MaxBytes: 25_000_000, MaxPixels: imageload.DefaultMaxPixels}, cfg.ImageLimits())
	require.Equal(t, 30*time.Minute, cfg.SessionIdleTimeout)
	require.Equal(t, canvas.Encoding{Format: canvas.FormatPNG, Quality: canvas.DefaultJPEGQuality}, cfg.Encoding)
	require.Equal(t, "TwPicsEditor", cfg.AppName)
	require.Equal(t, "#000000", cfg.ThemeColor)
}

func TestLoadConfig_Overrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("WEBSERVER_PORT", "9090")
	t.Setenv("MAX_UPLOAD_SIZE", "5 MiB")
	t.Setenv("SESSION_IDLE_TIMEOUT", "45m")
	t.Setenv("OUTPUT_FORMAT", "JPG")
	t.Setenv("JPEG_QUALITY", "80")
	t.Setenv("APP_NAME", "Darkroom")
	t.Setenv("MAX_IMAGE_PIXELS", "12000000")

	cfg, err := LoadConfig(context.Background())
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.WebServerPort)
	require.Equal(t, int64(5*1024*1024), cfg.MaxUploadBytes)
	require.Equal(t, int64(12_000_000), cfg.MaxImagePixels)
	require.Equal(t, imageload.Limits{MaxBytes: 5 * 1024 * 1024, MaxPixels: 12_000_000}, cfg.ImageLimits())
	require.Equal(t, 45*time.Minute, cfg.SessionIdleTimeout)
	require.Equal(t, canvas.FormatJPEG, cfg.Encoding.Format)
	require.Equal(t, 80, cfg.Encoding.Quality)
	require.Equal(t, "Darkroom", cfg.AppName)
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	cases := map[string]string{
		"JPEG_QUALITY":         "0",
		"WEBSERVER_PORT":       "70000",
		"MAX_UPLOAD_SIZE":      "lots",
		"OUTPUT_FORMAT":        "gif",
		"THEME_COLOR":          "black",
		"SESSION_IDLE_TIMEOUT": "5s",
		"MAX_IMAGE_PIXELS":     "0",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			t.Setenv(key, value)

			cfg, err := LoadConfig(context.Background())
			require.Error(t, err)
			require.Nil(t, cfg)
		})
	}
}
