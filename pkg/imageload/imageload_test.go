package imageload

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"thirdcoast.systems/twpics/pkg/canvas"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xAA
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// pngHeader returns a PNG signature and IHDR chunk claiming w x h RGBA
// pixels, with no image data behind it.
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	chunk := make([]byte, 0, 17)
	chunk = append(chunk, "IHDR"...)
	chunk = binary.BigEndian.AppendUint32(chunk, w)
	chunk = binary.BigEndian.AppendUint32(chunk, h)
	chunk = append(chunk, 8, 6, 0, 0, 0)

	_ = binary.Write(&buf, binary.BigEndian, uint32(len(chunk)-4))
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestLoad_PNG(t *testing.T) {
	data := pngBytes(t, 4, 3)

	li, err := Load("photo.png", bytes.NewReader(data), Limits{})
	require.NoError(t, err)
	require.Equal(t, "photo.png", li.Name)
	require.Equal(t, "image/png", li.MIME)
	require.Equal(t, int64(len(data)), li.Size)
	require.Equal(t, 4, li.Width)
	require.Equal(t, 3, li.Height)
	require.True(t, strings.HasPrefix(li.DataURL, "data:image/png;base64,"))

	ct, raw, err := canvas.DecodeDataURL(li.DataURL)
	require.NoError(t, err)
	require.Equal(t, "image/png", ct)
	require.Equal(t, data, raw)
}

func TestLoad_JPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	li, err := Load(`C:\pics\cat.jpg`, &buf, Limits{})
	require.NoError(t, err)
	require.Equal(t, "cat.jpg", li.Name)
	require.Equal(t, "image/jpeg", li.MIME)
	require.Equal(t, color.RGBAModel.Convert(li.Image.At(0, 0)).(color.RGBA).A, uint8(0xFF))
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	t.Run("nil reader", func(t *testing.T) {
		t.Parallel()
		_, err := Load("x.png", nil, Limits{})
		require.ErrorIs(t, err, ErrNoFile)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		_, err := Load("x.png", bytes.NewReader(nil), Limits{})
		require.ErrorIs(t, err, ErrNoFile)
	})

	t.Run("too large", func(t *testing.T) {
		t.Parallel()
		data := pngBytes(t, 32, 32)
		_, err := Load("x.png", bytes.NewReader(data), Limits{MaxBytes: int64(len(data) - 1)})
		require.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("not an image", func(t *testing.T) {
		t.Parallel()
		_, err := Load("notes.txt", strings.NewReader("hello, world"), Limits{})
		require.ErrorIs(t, err, ErrUnsupported)
	})

	t.Run("corrupt image", func(t *testing.T) {
		t.Parallel()
		data := pngBytes(t, 16, 16)
		_, err := Load("broken.png", bytes.NewReader(data[:40]), Limits{})
		require.ErrorIs(t, err, ErrDecode)
	})
}

func TestLoad_PixelLimits(t *testing.T) {
	t.Parallel()

	t.Run("area over default cap rejected from the header", func(t *testing.T) {
		t.Parallel()
		// A full decode of these bytes would fail with ErrDecode; only the
		// header check can report ErrTooLarge.
		_, err := Load("bomb.png", bytes.NewReader(pngHeader(16000, 16000)), Limits{})
		require.ErrorIs(t, err, ErrTooLarge)
		require.NotErrorIs(t, err, ErrDecode)
	})

	t.Run("side over max dimension rejected from the header", func(t *testing.T) {
		t.Parallel()
		_, err := Load("wide.png", bytes.NewReader(pngHeader(canvas.MaxDimension+1, 1)), Limits{})
		require.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("configured cap", func(t *testing.T) {
		t.Parallel()
		data := pngBytes(t, 8, 6)

		_, err := Load("small.png", bytes.NewReader(data), Limits{MaxPixels: 47})
		require.ErrorIs(t, err, ErrTooLarge)

		li, err := Load("small.png", bytes.NewReader(data), Limits{MaxPixels: 48})
		require.NoError(t, err)
		require.Equal(t, 8, li.Width)
	})

	t.Run("header within limits but truncated", func(t *testing.T) {
		t.Parallel()
		_, err := Load("short.png", bytes.NewReader(pngHeader(10, 10)), Limits{})
		require.ErrorIs(t, err, ErrDecode)
	})
}

func TestDownloadName(t *testing.T) {
	require.Equal(t, "cat.jpg", DownloadName("cat.jpg"))
	require.Equal(t, "cat.jpg", DownloadName("/tmp/cat.jpg"))
	require.Equal(t, "my holiday photo.jpg", DownloadName("my holiday photo.jpg"))
	require.Equal(t, "my holiday photo.jpg", DownloadName(`C:\Users\me\my holiday photo.jpg`))
	require.Equal(t, "été (1).png", DownloadName("été (1).png"))
	require.Equal(t, "ab.png", DownloadName("a\x00b.png"))
	require.Equal(t, FallbackName, DownloadName(""))
	require.Equal(t, FallbackName, DownloadName("..."))
}
