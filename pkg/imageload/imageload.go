// Package imageload reads a user-selected image file into a LoadedImage:
// the original bytes as a data URL plus the decoded pixels.
package imageload

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"thirdcoast.systems/twpics/pkg/canvas"
	"thirdcoast.systems/twpics/pkg/utils/filename"
)

var (
	ErrNoFile      = errors.New("no file selected")
	ErrTooLarge    = errors.New("image file too large")
	ErrUnsupported = errors.New("unsupported file type")
	ErrDecode      = errors.New("could not decode image")
)

// FallbackName is used when the uploaded file name cleans to nothing.
const FallbackName = "image"

// DefaultMaxPixels caps the decoded area when Limits.MaxPixels is zero.
// A 25 megapixel NRGBA buffer is 100 MB before any filter runs.
const DefaultMaxPixels int64 = 25_000_000

// Limits bounds what Load accepts. MaxBytes of 0 means no size limit.
type Limits struct {
	MaxBytes  int64
	MaxPixels int64
}

func (l Limits) maxPixels() int64 {
	if l.MaxPixels <= 0 {
		return DefaultMaxPixels
	}
	return l.MaxPixels
}

// LoadedImage is an uploaded image held in memory for one editing session.
// It is never mutated after Load returns.
type LoadedImage struct {
	// Name is the download base name derived from the original file name.
	Name    string
	MIME    string
	Size    int64
	Width   int
	Height  int
	DataURL string
	Image   image.Image
}

// Load reads at most lim.MaxBytes from r, checks that it is an image whose
// header dimensions fit lim, decodes it and returns the LoadedImage.
// origName is the file name as reported by the client; only its base name
// is kept.
func Load(origName string, r io.Reader, lim Limits) (*LoadedImage, error) {
	if r == nil {
		return nil, ErrNoFile
	}

	lr := r
	if lim.MaxBytes > 0 {
		lr = io.LimitReader(r, lim.MaxBytes+1)
	}
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoFile
	}
	if lim.MaxBytes > 0 && int64(len(data)) > lim.MaxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, lim.MaxBytes)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, mt.String())
	}

	// The header is enough to refuse a decompression bomb before any pixel
	// buffer is allocated.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if err := checkDimensions(cfg.Width, cfg.Height, lim.maxPixels()); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	b := img.Bounds()
	if err := checkDimensions(b.Dx(), b.Dy(), lim.maxPixels()); err != nil {
		return nil, err
	}
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrDecode)
	}

	return &LoadedImage{
		Name:    DownloadName(origName),
		MIME:    mt.String(),
		Size:    int64(len(data)),
		Width:   b.Dx(),
		Height:  b.Dy(),
		DataURL: canvas.EncodeDataURL(mt.String(), data),
		Image:   img,
	}, nil
}

func checkDimensions(w, h int, maxPixels int64) error {
	if w > canvas.MaxDimension || h > canvas.MaxDimension {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels per side", ErrTooLarge, w, h, canvas.MaxDimension)
	}
	if int64(w)*int64(h) > maxPixels {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, w, h, maxPixels)
	}
	return nil
}

// DownloadName strips any client path from name and drops control
// characters and separators. Everything else, spaces included, is kept.
func DownloadName(name string) string {
	s := filename.Clean(filename.Base(name), 200)
	if s == "" {
		return FallbackName
	}
	return s
}
