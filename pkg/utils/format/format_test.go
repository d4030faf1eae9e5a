package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBytes(t *testing.T) {
	require.Equal(t, "0 B", Bytes(-5))
	require.Equal(t, "25 MB", Bytes(25_000_000))
}

func TestDimensions(t *testing.T) {
	require.Equal(t, "1920 × 1080", Dimensions(1920, 1080))
}

func TestElapsed(t *testing.T) {
	require.Equal(t, "850 µs", Elapsed(850*time.Microsecond))
	require.Equal(t, "12 ms", Elapsed(12*time.Millisecond))
	require.Equal(t, "1.5 s", Elapsed(1500*time.Millisecond))
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "cat.jpg", Truncate("cat.jpg", 10))
	require.Equal(t, "a-very-l…", Truncate("a-very-long-name.jpg", 9))
	require.Equal(t, "a…", Truncate("abc", 2))
	require.Equal(t, "a", Truncate("abc", 1))
}
