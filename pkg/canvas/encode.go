package canvas

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
)

// Format is an output image encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// DefaultJPEGQuality is used when an Encoding leaves Quality unset.
const DefaultJPEGQuality = 92

// Encoding selects how surface pixels are exported.
type Encoding struct {
	Format  Format
	Quality int // jpeg only, 1-100
}

// ParseFormat accepts png, jpeg and jpg (any case).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", s)
	}
}

// ContentType returns the MIME type of the encoding.
func (e Encoding) ContentType() string {
	if e.Format == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Encode writes the surface pixels in the requested encoding.
func (s *Surface) Encode(w io.Writer, enc Encoding) error {
	switch enc.Format {
	case FormatJPEG:
		q := enc.Quality
		if q <= 0 || q > 100 {
			q = DefaultJPEGQuality
		}
		return jpeg.Encode(w, s.Image(), &jpeg.Options{Quality: q})
	case FormatPNG, "":
		return png.Encode(w, s.Image())
	default:
		return fmt.Errorf("unsupported output format %q", enc.Format)
	}
}

// Bytes encodes the surface into memory.
func (s *Surface) Bytes(enc Encoding) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Encode(&buf, enc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DataURL encodes the surface as a base64 data URL.
func (s *Surface) DataURL(enc Encoding) (string, error) {
	b, err := s.Bytes(enc)
	if err != nil {
		return "", err
	}
	return EncodeDataURL(enc.ContentType(), b), nil
}

// EncodeDataURL wraps raw bytes in a base64 data URL.
func EncodeDataURL(contentType string, b []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(b)
}

// DecodeDataURL splits a base64 data URL into its content type and bytes.
func DecodeDataURL(u string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(u, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("data URL has no payload")
	}
	ct, isB64 := strings.CutSuffix(meta, ";base64")
	if !isB64 {
		return "", nil, fmt.Errorf("data URL is not base64")
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URL: %w", err)
	}
	return ct, b, nil
}
