// Package editor holds per-browser editing sessions: the filter state, the
// loaded image, and the rendered preview kept in sync with both.
package editor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"thirdcoast.systems/twpics/pkg/filters"
	"thirdcoast.systems/twpics/pkg/imageload"
	"thirdcoast.systems/twpics/pkg/render"
)

// MaxSubscribersPerSession limits preview streams (open tabs) per session.
const MaxSubscribersPerSession = 8

var (
	ErrSessionClosed      = errors.New("editor session closed")
	ErrTooManySubscribers = errors.New("too many preview streams for session")
)

// State is the editor page state.
type State int

const (
	StateNoImage State = iota
	StateEditing
)

func (s State) String() string {
	switch s {
	case StateNoImage:
		return "no-image"
	case StateEditing:
		return "editing"
	default:
		return "unknown"
	}
}

// Renderer renders a preview. *render.Renderer satisfies it.
type Renderer interface {
	Render(ctx context.Context, img *imageload.LoadedImage, set filters.FilterSet) (*render.Preview, error)
}

// Snapshot is a read-only view of a session for templates and handlers.
type Snapshot struct {
	ID        string
	State     State
	Filters   filters.FilterSet
	Image     *imageload.LoadedImage
	Preview   *render.Preview
	FileName  string
	Error     string
	Rendering bool
}

// Session is one editing session. It owns exactly one filter store, one
// loaded image and one preview; sessions share nothing.
type Session struct {
	ID string

	renderer Renderer
	limits   imageload.Limits
	ctx      context.Context
	stop     context.CancelFunc

	mu       sync.Mutex
	store    *filters.Store
	image    *imageload.LoadedImage
	preview  *render.Preview
	lastErr  string
	lastSeen time.Time
	closed   bool

	// gen increases on every scheduled render; retained is the generation
	// of the preview currently held.
	gen      uint64
	retained uint64
	cancel   context.CancelFunc
	running  int
	idle     chan struct{}

	subs map[chan struct{}]struct{}
}

// NewSession creates a session in the NoImage state. limits bounds the
// files Load accepts.
func NewSession(id string, renderer Renderer, limits imageload.Limits) *Session {
	ctx, stop := context.WithCancel(context.Background())
	idle := make(chan struct{})
	close(idle)
	return &Session{
		ID:       id,
		renderer: renderer,
		limits:   limits,
		ctx:      ctx,
		stop:     stop,
		store:    filters.NewStore(),
		lastSeen: time.Now(),
		idle:     idle,
		subs:     make(map[chan struct{}]struct{}),
	}
}

// Snapshot returns the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()

	snap := Snapshot{
		ID:        s.ID,
		State:     s.stateLocked(),
		Filters:   s.store.Get(),
		Image:     s.image,
		Preview:   s.preview,
		Error:     s.lastErr,
		Rendering: s.running > 0,
	}
	if s.image != nil {
		snap.FileName = s.image.Name
	}
	return snap
}

// State returns NoImage or Editing.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	if s.image == nil {
		return StateNoImage
	}
	return StateEditing
}

// Filters returns a copy of the current filter set.
func (s *Session) Filters() filters.FilterSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Get()
}

// Preview returns the latest retained preview, or nil.
func (s *Session) Preview() *render.Preview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

// Load reads a new image. On success the previous image and preview are
// replaced, filters reset to defaults and a render is scheduled. On
// failure the session is left as it was; anything other than "no file"
// is recorded for display. A closed session returns ErrSessionClosed.
func (s *Session) Load(name string, r io.Reader) error {
	if s.isClosed() {
		return ErrSessionClosed
	}
	img, err := imageload.Load(name, r, s.limits)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()

	if s.closed {
		return ErrSessionClosed
	}
	if err != nil {
		if !errors.Is(err, imageload.ErrNoFile) {
			s.lastErr = UserMessage(err)
		}
		slog.Info("image load failed", "session", s.ID, "file", name, "error", err)
		return err
	}

	s.image = img
	s.preview = nil
	s.lastErr = ""
	s.store.Reset()
	slog.Info("image loaded", "session", s.ID, "file", img.Name, "mime", img.MIME, "width", img.Width, "height", img.Height)

	s.scheduleRenderLocked()
	s.notifyLocked()
	return nil
}

// UpdateFilter sets one filter value and schedules a render. Unknown names
// and non-numeric values change nothing and return the reason.
func (s *Session) UpdateFilter(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()

	if s.closed {
		return ErrSessionClosed
	}
	if err := s.store.Set(name, value); err != nil {
		slog.Debug("filter update ignored", "session", s.ID, "filter", name, "value", value, "error", err)
		return err
	}
	s.scheduleRenderLocked()
	return nil
}

// ResetFilters restores filter defaults and schedules a render.
func (s *Session) ResetFilters() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()

	if s.closed {
		return ErrSessionClosed
	}
	s.store.Reset()
	s.scheduleRenderLocked()
	return nil
}

// Clear drops the image, download name and preview ("load new image") and
// resets filters. The session returns to NoImage.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()

	if s.closed {
		return ErrSessionClosed
	}
	s.image = nil
	s.preview = nil
	s.lastErr = ""
	s.store.Reset()
	s.scheduleRenderLocked()
	s.notifyLocked()
	return nil
}

// ReportError records a message for display without changing any other
// state. Used for upload failures that happen before Load is reached.
func (s *Session) ReportError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	s.lastErr = msg
	s.notifyLocked()
}

// DismissError clears the recorded load error.
func (s *Session) DismissError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
}

// Export returns the download for the current preview, or false when
// there is nothing to export.
func (s *Session) Export() (Download, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()

	var name string
	if s.image != nil {
		name = s.image.Name
	}
	return Export(s.preview, name)
}

// Subscribe returns a channel that receives a value whenever the preview
// or state changes, and a function that ends the subscription.
// Notifications coalesce; read Snapshot for the data.
func (s *Session) Subscribe() (<-chan struct{}, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, nil, ErrSessionClosed
	}
	if len(s.subs) >= MaxSubscribersPerSession {
		return nil, nil, ErrTooManySubscribers
	}

	ch := make(chan struct{}, 1)
	s.subs[ch] = struct{}{}

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
	}
	return ch, unsubscribe, nil
}

// WaitIdle blocks until no render is in flight or ctx is done.
func (s *Session) WaitIdle(ctx context.Context) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels in-flight renders and ends all subscriptions.
func (s *Session) Close() {
	s.stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// IdleSince returns the last time the session was used.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// scheduleRenderLocked starts a render of the current image and filters,
// cancelling the previous one. It is called at every mutation site.
func (s *Session) scheduleRenderLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	if s.image == nil || s.closed {
		return
	}

	gen, img, set := s.gen, s.image, s.store.Get()
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancel = cancel

	if s.running == 0 {
		s.idle = make(chan struct{})
	}
	s.running++

	go func() {
		defer cancel()
		p, err := s.renderer.Render(ctx, img, set)
		s.finishRender(gen, img, p, err)
	}()
}

func (s *Session) finishRender(gen uint64, img *imageload.LoadedImage, p *render.Preview, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running--
	if s.running == 0 {
		close(s.idle)
	}

	// Stale renders are dropped whatever their outcome.
	switch {
	case img != s.image:
		slog.Debug("discarding render of replaced image", "session", s.ID, "gen", gen)
		return
	case gen <= s.retained:
		slog.Debug("discarding stale render", "session", s.ID, "gen", gen, "retained", s.retained)
		return
	case err != nil:
		if errors.Is(err, context.Canceled) {
			return
		}
		slog.Warn("render failed", "session", s.ID, "gen", gen, "error", err)
		s.lastErr = "Could not render the image."
		s.notifyLocked()
		return
	}

	s.preview = p
	s.retained = gen
	slog.Debug("render complete", "session", s.ID, "gen", gen, "filter", p.Filter, "elapsed", p.Elapsed)
	s.notifyLocked()
}

func (s *Session) notifyLocked() {
	for ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
