package auth

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == SessionName {
			return c
		}
	}
	t.Fatalf("no %s cookie set", SessionName)
	return nil
}

func TestSessionManager_SaveAndGet_RoundTrip(t *testing.T) {
	sm := NewSessionManager("test-secret", 30*time.Minute)
	id := uuid.NewString()

	req := httptest.NewRequest("GET", "http://example.com/", nil)
	rr := httptest.NewRecorder()
	require.NoError(t, sm.SaveEditorSession(rr, req, id))

	cookie := sessionCookie(t, rr)
	require.NotEmpty(t, cookie.Value)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, 1800, cookie.MaxAge)

	req2 := httptest.NewRequest("GET", "http://example.com/", nil)
	req2.AddCookie(cookie)

	got, err := sm.EditorSessionID(req2)
	require.NoError(t, err)
	require.Equal(t, id, got)
}

func TestSessionManager_SecureDetection(t *testing.T) {
	sm := NewSessionManager("test-secret", time.Hour)

	t.Run("tls implies secure", func(t *testing.T) {
		req := httptest.NewRequest("GET", "https://example.com/", nil)
		req.TLS = &tls.ConnectionState{}
		rr := httptest.NewRecorder()

		require.NoError(t, sm.SaveEditorSession(rr, req, uuid.NewString()))
		require.True(t, sessionCookie(t, rr).Secure)
	})

	t.Run("x-forwarded-proto implies secure", func(t *testing.T) {
		req := httptest.NewRequest("GET", "http://example.com/", nil)
		req.Header.Set("X-Forwarded-Proto", "https")
		rr := httptest.NewRecorder()

		require.NoError(t, sm.SaveEditorSession(rr, req, uuid.NewString()))
		require.True(t, sessionCookie(t, rr).Secure)
	})

	t.Run("plain http is not secure", func(t *testing.T) {
		req := httptest.NewRequest("GET", "http://example.com/", nil)
		rr := httptest.NewRecorder()

		require.NoError(t, sm.SaveEditorSession(rr, req, uuid.NewString()))
		require.False(t, sessionCookie(t, rr).Secure)
	})
}

func TestSessionManager_NoSession(t *testing.T) {
	sm := NewSessionManager("test-secret", time.Hour)

	req := httptest.NewRequest("GET", "http://example.com/", nil)
	id, err := sm.EditorSessionID(req)
	require.ErrorIs(t, err, ErrNoEditorSession)
	require.Empty(t, id)
}

func TestSessionManager_RejectsNonUUID(t *testing.T) {
	sm := NewSessionManager("test-secret", time.Hour)

	req := httptest.NewRequest("GET", "http://example.com/", nil)
	rr := httptest.NewRecorder()
	require.NoError(t, sm.SaveEditorSession(rr, req, "not-a-uuid"))

	req2 := httptest.NewRequest("GET", "http://example.com/", nil)
	req2.AddCookie(sessionCookie(t, rr))

	_, err := sm.EditorSessionID(req2)
	require.ErrorIs(t, err, ErrNoEditorSession)
}

func TestSessionManager_BadCookie(t *testing.T) {
	sm := NewSessionManager("test-secret", time.Hour)

	req := httptest.NewRequest("GET", "http://example.com/", nil)
	req.AddCookie(&http.Cookie{Name: SessionName, Value: "this-is-not-a-valid-cookie"})

	id, err := sm.EditorSessionID(req)
	require.Error(t, err)
	require.Empty(t, id)
}

func TestSessionManager_OtherSecretRejected(t *testing.T) {
	a := NewSessionManager("secret-a", time.Hour)
	b := NewSessionManager("secret-b", time.Hour)

	req := httptest.NewRequest("GET", "http://example.com/", nil)
	rr := httptest.NewRecorder()
	require.NoError(t, a.SaveEditorSession(rr, req, uuid.NewString()))

	req2 := httptest.NewRequest("GET", "http://example.com/", nil)
	req2.AddCookie(sessionCookie(t, rr))

	_, err := b.EditorSessionID(req2)
	require.Error(t, err)
}
