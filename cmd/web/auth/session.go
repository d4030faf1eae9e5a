package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	SessionName = "twpics_session"
	EditorIDKey = "editor_id"
)

var (
	ErrNoEditorSession = errors.New("no editor session")
)

// SessionManager binds a browser to its editor session through a signed
// cookie. The cookie only carries the editor session id.
type SessionManager struct {
	store  *sessions.CookieStore
	maxAge int
}

func NewSessionManager(secret string, idleTimeout time.Duration) *SessionManager {
	if secret == "" {
		secret = generateSecret()
	}
	maxAge := int(idleTimeout.Seconds())
	if maxAge <= 0 {
		maxAge = 86400
	}
	return &SessionManager{
		store:  sessions.NewCookieStore([]byte(secret)),
		maxAge: maxAge,
	}
}

func generateSecret() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.StdEncoding.EncodeToString(b)
}

func (sm *SessionManager) SaveEditorSession(w http.ResponseWriter, r *http.Request, editorID string) error {
	session, _ := sm.store.Get(r, SessionName)
	session.Values[EditorIDKey] = editorID

	isHTTPS := r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"

	session.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sm.maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   isHTTPS,
	}

	return session.Save(r, w)
}

// EditorSessionID returns the editor session id stored in the cookie.
func (sm *SessionManager) EditorSessionID(r *http.Request) (string, error) {
	session, err := sm.store.Get(r, SessionName)
	if err != nil {
		_, cookieErr := r.Cookie(SessionName)
		slog.Warn("failed to decode session", "error", err, "host", r.Host, "has_cookie", cookieErr == nil)
		return "", err
	}

	val, ok := session.Values[EditorIDKey]
	if !ok {
		return "", ErrNoEditorSession
	}
	id, ok := val.(string)
	if !ok {
		return "", ErrNoEditorSession
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", ErrNoEditorSession
	}
	return id, nil
}
