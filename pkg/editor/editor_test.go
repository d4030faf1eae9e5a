package editor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"thirdcoast.systems/twpics/pkg/canvas"
	"thirdcoast.systems/twpics/pkg/filters"
	"thirdcoast.systems/twpics/pkg/imageload"
	"thirdcoast.systems/twpics/pkg/render"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func pngReader(t *testing.T) *bytes.Reader {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 5, 5))
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(40 * x), G: 100, B: uint8(40 * y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return bytes.NewReader(buf.Bytes())
}

func waitIdle(t *testing.T, s *Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.WaitIdle(ctx))
}

func newRealSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession("test", render.New(canvas.Encoding{Format: canvas.FormatPNG}), imageload.Limits{})
	t.Cleanup(s.Close)
	return s
}

// gateRenderer blocks each render until the test releases it.
type gateRenderer struct {
	ignoreCancel bool

	mu    sync.Mutex
	calls []*gateCall
}

type gateCall struct {
	filter  string
	release chan struct{}
	// err, when set before release is closed, is returned by the render.
	err error
}

func (g *gateRenderer) Render(ctx context.Context, img *imageload.LoadedImage, set filters.FilterSet) (*render.Preview, error) {
	c := &gateCall{filter: filters.Compose(set), release: make(chan struct{})}
	g.mu.Lock()
	g.calls = append(g.calls, c)
	g.mu.Unlock()

	if g.ignoreCancel {
		<-c.release
	} else {
		select {
		case <-c.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if c.err != nil {
		return nil, c.err
	}
	return &render.Preview{Filter: c.filter, ContentType: "image/png", Bytes: []byte(c.filter)}, nil
}

func (g *gateRenderer) call(t *testing.T, i int) *gateCall {
	t.Helper()
	require.Eventually(t, func() bool {
		g.mu.Lock()
		defer g.mu.Unlock()
		return len(g.calls) > i
	}, 5*time.Second, time.Millisecond)
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[i]
}

func TestSession_StartsWithoutImage(t *testing.T) {
	s := newRealSession(t)

	snap := s.Snapshot()
	require.Equal(t, StateNoImage, snap.State)
	require.Nil(t, snap.Preview)
	require.Equal(t, filters.Defaults(), snap.Filters)

	_, ok := s.Export()
	require.False(t, ok)
}

func TestSession_LoadRendersPreview(t *testing.T) {
	s := newRealSession(t)

	require.NoError(t, s.Load("cat.png", pngReader(t)))
	waitIdle(t, s)

	snap := s.Snapshot()
	require.Equal(t, StateEditing, snap.State)
	require.Equal(t, "cat.png", snap.FileName)
	require.NotNil(t, snap.Preview)
	require.Equal(t, filters.Compose(filters.Defaults()), snap.Preview.Filter)
	require.True(t, strings.HasPrefix(snap.Preview.DataURL, "data:image/png;base64,"))

	d, ok := s.Export()
	require.True(t, ok)
	require.Equal(t, "edited_cat.png", d.FileName)
	require.Equal(t, "image/png", d.ContentType)
	require.Equal(t, snap.Preview.Bytes, d.Bytes)
}

func TestSession_FilterUpdateRerenders(t *testing.T) {
	s := newRealSession(t)
	require.NoError(t, s.Load("cat.png", pngReader(t)))
	waitIdle(t, s)

	require.NoError(t, s.UpdateFilter(filters.Invert, "1"))
	waitIdle(t, s)
	require.Contains(t, s.Preview().Filter, "invert(1)")

	require.ErrorIs(t, s.UpdateFilter("vignette", "1"), filters.ErrUnknownFilter)
	require.ErrorIs(t, s.UpdateFilter(filters.Blur, "abc"), filters.ErrInvalidValue)
	require.Equal(t, "1", s.Filters()[filters.Invert].Value)
	require.Equal(t, "0", s.Filters()[filters.Blur].Value)

	require.NoError(t, s.ResetFilters())
	waitIdle(t, s)
	require.Equal(t, filters.Defaults(), s.Filters())
	require.Equal(t, filters.Compose(filters.Defaults()), s.Preview().Filter)
}

func TestSession_LoadResetsFiltersAndReplacesPreview(t *testing.T) {
	s := newRealSession(t)
	require.NoError(t, s.Load("one.png", pngReader(t)))
	require.NoError(t, s.UpdateFilter(filters.Sepia, "0.5"))
	waitIdle(t, s)

	require.NoError(t, s.Load("two.png", pngReader(t)))
	snap := s.Snapshot()
	require.Equal(t, "two.png", snap.FileName)
	require.Equal(t, filters.Defaults(), snap.Filters)

	waitIdle(t, s)
	require.Equal(t, filters.Compose(filters.Defaults()), s.Preview().Filter)
}

func TestSession_LoadFailureKeepsState(t *testing.T) {
	s := newRealSession(t)
	require.NoError(t, s.Load("cat.png", pngReader(t)))
	require.NoError(t, s.UpdateFilter(filters.Contrast, "1.2"))
	waitIdle(t, s)
	before := s.Preview()

	err := s.Load("notes.txt", strings.NewReader("definitely not an image"))
	require.ErrorIs(t, err, imageload.ErrUnsupported)

	snap := s.Snapshot()
	require.Equal(t, StateEditing, snap.State)
	require.Equal(t, "cat.png", snap.FileName)
	require.Equal(t, "1.2", snap.Filters[filters.Contrast].Value)
	require.Same(t, before, snap.Preview)
	require.NotEmpty(t, snap.Error)

	s.DismissError()
	require.Empty(t, s.Snapshot().Error)
}

func TestSession_NoFileIsNotAnError(t *testing.T) {
	s := newRealSession(t)

	err := s.Load("", bytes.NewReader(nil))
	require.ErrorIs(t, err, imageload.ErrNoFile)
	require.Empty(t, s.Snapshot().Error)
	require.Equal(t, StateNoImage, s.State())
}

func TestSession_Clear(t *testing.T) {
	s := newRealSession(t)
	require.NoError(t, s.Load("cat.png", pngReader(t)))
	require.NoError(t, s.UpdateFilter(filters.HueRotate, "90"))
	waitIdle(t, s)

	require.NoError(t, s.Clear())
	snap := s.Snapshot()
	require.Equal(t, StateNoImage, snap.State)
	require.Nil(t, snap.Preview)
	require.Empty(t, snap.FileName)
	require.Equal(t, filters.Defaults(), snap.Filters)

	_, ok := s.Export()
	require.False(t, ok)
}

func TestSession_StaleRenderDiscarded(t *testing.T) {
	g := &gateRenderer{ignoreCancel: true}
	s := NewSession("stale", g, imageload.Limits{})
	defer s.Close()

	require.NoError(t, s.Load("cat.png", pngReader(t)))
	first := g.call(t, 0)

	require.NoError(t, s.UpdateFilter(filters.Blur, "2"))
	second := g.call(t, 1)

	close(second.release)
	require.Eventually(t, func() bool {
		p := s.Preview()
		return p != nil && strings.Contains(p.Filter, "blur(2px)")
	}, 5*time.Second, time.Millisecond)

	close(first.release)
	waitIdle(t, s)
	require.Contains(t, s.Preview().Filter, "blur(2px)")
}

func TestSession_NewRenderCancelsPrevious(t *testing.T) {
	g := &gateRenderer{}
	s := NewSession("cancel", g, imageload.Limits{})
	defer s.Close()

	require.NoError(t, s.Load("cat.png", pngReader(t)))
	g.call(t, 0)

	require.NoError(t, s.UpdateFilter(filters.Saturate, "2"))
	second := g.call(t, 1)
	close(second.release)

	waitIdle(t, s)
	require.Contains(t, s.Preview().Filter, "saturate(2)")
}

func TestSession_RenderOfReplacedImageDiscarded(t *testing.T) {
	g := &gateRenderer{ignoreCancel: true}
	s := NewSession("replaced", g, imageload.Limits{})
	defer s.Close()

	require.NoError(t, s.Load("cat.png", pngReader(t)))
	first := g.call(t, 0)

	require.NoError(t, s.Clear())
	close(first.release)
	waitIdle(t, s)

	require.Nil(t, s.Preview())
	require.Equal(t, StateNoImage, s.State())
}

func TestSession_FailedRenderOfReplacedImageIsSilent(t *testing.T) {
	g := &gateRenderer{ignoreCancel: true}
	s := NewSession("replaced-fail", g, imageload.Limits{})
	defer s.Close()

	require.NoError(t, s.Load("cat.png", pngReader(t)))
	first := g.call(t, 0)

	require.NoError(t, s.Clear())
	first.err = errors.New("decoder exploded")
	close(first.release)
	waitIdle(t, s)

	snap := s.Snapshot()
	require.Empty(t, snap.Error)
	require.Equal(t, StateNoImage, snap.State)
}

func TestSession_FailedStaleRenderIsSilent(t *testing.T) {
	g := &gateRenderer{ignoreCancel: true}
	s := NewSession("stale-fail", g, imageload.Limits{})
	defer s.Close()

	require.NoError(t, s.Load("cat.png", pngReader(t)))
	first := g.call(t, 0)

	require.NoError(t, s.UpdateFilter(filters.Blur, "2"))
	second := g.call(t, 1)
	close(second.release)
	require.Eventually(t, func() bool {
		p := s.Preview()
		return p != nil && strings.Contains(p.Filter, "blur(2px)")
	}, 5*time.Second, time.Millisecond)

	first.err = errors.New("out of memory")
	close(first.release)
	waitIdle(t, s)

	snap := s.Snapshot()
	require.Empty(t, snap.Error)
	require.Contains(t, snap.Preview.Filter, "blur(2px)")
}

func TestSession_FailedCurrentRenderReported(t *testing.T) {
	g := &gateRenderer{}
	s := NewSession("current-fail", g, imageload.Limits{})
	defer s.Close()

	require.NoError(t, s.Load("cat.png", pngReader(t)))
	first := g.call(t, 0)
	first.err = errors.New("out of memory")
	close(first.release)
	waitIdle(t, s)

	snap := s.Snapshot()
	require.Equal(t, "Could not render the image.", snap.Error)
	require.Nil(t, snap.Preview)
}

func TestSession_MutationsAfterCloseRejected(t *testing.T) {
	s := newRealSession(t)
	s.Close()

	require.ErrorIs(t, s.Load("cat.png", pngReader(t)), ErrSessionClosed)
	require.ErrorIs(t, s.UpdateFilter(filters.Blur, "2"), ErrSessionClosed)
	require.ErrorIs(t, s.ResetFilters(), ErrSessionClosed)
	require.ErrorIs(t, s.Clear(), ErrSessionClosed)

	snap := s.Snapshot()
	require.Equal(t, StateNoImage, snap.State)
	require.Equal(t, filters.Defaults(), snap.Filters)
	require.Empty(t, snap.Error)
	require.NoError(t, s.WaitIdle(context.Background()))
}

func TestSession_SubscribeNotifies(t *testing.T) {
	s := newRealSession(t)

	ch, unsubscribe, err := s.Subscribe()
	require.NoError(t, err)
	defer unsubscribe()

	require.NoError(t, s.Load("cat.png", pngReader(t)))

	select {
	case _, ok := <-ch:
		require.True(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("no notification after load")
	}
	waitIdle(t, s)
}

func TestSession_SubscribeCapAndClose(t *testing.T) {
	s := NewSession("subs", nil, imageload.Limits{})

	var unsubs []func()
	for i := 0; i < MaxSubscribersPerSession; i++ {
		_, u, err := s.Subscribe()
		require.NoError(t, err)
		unsubs = append(unsubs, u)
	}
	_, _, err := s.Subscribe()
	require.ErrorIs(t, err, ErrTooManySubscribers)

	unsubs[0]()
	unsubs[0]()

	ch, _, err := s.Subscribe()
	require.NoError(t, err)
	s.Close()
	_, ok := <-ch
	require.False(t, ok)

	_, _, err = s.Subscribe()
	require.ErrorIs(t, err, ErrSessionClosed)

	for _, u := range unsubs[1:] {
		u()
	}
}

func TestSession_ReportError(t *testing.T) {
	s := NewSession("report", nil, imageload.Limits{})
	defer s.Close()

	s.ReportError("too big")
	require.Equal(t, "too big", s.Snapshot().Error)
	require.Equal(t, StateNoImage, s.State())
}

func TestExport(t *testing.T) {
	_, ok := Export(nil, "cat.jpg")
	require.False(t, ok)

	p := &render.Preview{ContentType: "image/jpeg", Bytes: []byte{1, 2, 3}}
	d, ok := Export(p, "cat.jpg")
	require.True(t, ok)
	require.Equal(t, Download{FileName: "edited_cat.jpg", ContentType: "image/jpeg", Bytes: []byte{1, 2, 3}}, d)

	d, ok = Export(p, "")
	require.False(t, ok)
	require.Equal(t, Download{}, d)
}

func TestSession_ExportKeepsNameAsTyped(t *testing.T) {
	s := newRealSession(t)
	require.NoError(t, s.Load(`C:\Users\me\my holiday photo.png`, pngReader(t)))
	waitIdle(t, s)

	d, ok := s.Export()
	require.True(t, ok)
	require.Equal(t, "edited_my holiday photo.png", d.FileName)
}

func TestUserMessage(t *testing.T) {
	require.Empty(t, UserMessage(nil))
	require.Contains(t, UserMessage(imageload.ErrUnsupported), "not an image")
	require.Contains(t, TooLargeMessage(25_000_000), "25 MB")
}

func TestState_String(t *testing.T) {
	require.Equal(t, "no-image", StateNoImage.String())
	require.Equal(t, "editing", StateEditing.String())
}
