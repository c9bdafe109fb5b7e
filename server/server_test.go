package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/champa/scrapbook/pkg/www"
	"github.com/champa/scrapbook/server/session"
	"github.com/cyclopcam/logs"
	"github.com/stretchr/testify/require"
)

const testVideo = "2024-02-14_000.mp4"

func newTestServer(t *testing.T) *Server {
	log := logs.NewTestingLog(t)
	mediaDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(mediaDir, testVideo), make([]byte, 1000), 0644))
	cfg := &Config{
		SessionSecret: "server-test-secret",
		ContentDir:    t.TempDir(),
		MediaStorage: StorageConfig{
			Filesystem: &StorageConfigFS{Root: mediaDir},
		},
	}
	require.NoError(t, cfg.Finish(log))
	s, err := NewServer(log, cfg)
	require.NoError(t, err)
	return s
}

type request struct {
	method string
	path   string
	body   string
	cookie *http.Cookie
	header map[string]string
}

func (s *Server) do(r request) *httptest.ResponseRecorder {
	var req *http.Request
	if r.body != "" {
		req = httptest.NewRequest(r.method, r.path, strings.NewReader(r.body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(r.method, r.path, nil)
	}
	if r.cookie != nil {
		req.AddCookie(r.cookie)
	}
	for k, v := range r.header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func findSessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

func TestUnlockThenBrowse(t *testing.T) {
	s := newTestServer(t)

	// Locked out to begin with
	w := s.do(request{method: "GET", path: "/timeline"})
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	require.Equal(t, "/?locked=1", w.Header().Get("Location"))

	w = s.do(request{method: "GET", path: "/api/media/" + testVideo})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// The lock screen itself is open
	w = s.do(request{method: "GET", path: "/?locked=1"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(request{method: "POST", path: "/api/auth/unlock", body: `{"password":"champaisthebest"}`})
	require.Equal(t, http.StatusOK, w.Code)
	cookie := findSessionCookie(w)
	require.NotNil(t, cookie)
	require.Equal(t, session.TTLSeconds, cookie.MaxAge)
	require.True(t, cookie.HttpOnly)
	require.False(t, cookie.Secure)

	for _, path := range []string{"/home", "/timeline", "/blog"} {
		w = s.do(request{method: "GET", path: path, cookie: cookie})
		require.Equal(t, http.StatusOK, w.Code, path)
	}

	w = s.do(request{method: "GET", path: "/api/media/" + testVideo, cookie: cookie, header: map[string]string{"Range": "bytes=100-199"}})
	require.Equal(t, http.StatusPartialContent, w.Code)
	require.Equal(t, "bytes 100-199/1000", w.Header().Get("Content-Range"))
	require.Equal(t, 100, w.Body.Len())

	// The timeline links media through the guarded endpoint
	w = s.do(request{method: "GET", path: "/timeline", cookie: cookie})
	require.Contains(t, w.Body.String(), `src="/api/media/`+testVideo+`"`)
}

func TestWrongPasswordSetsNoCookie(t *testing.T) {
	s := newTestServer(t)
	w := s.do(request{method: "POST", path: "/api/auth/unlock", body: `{"password":"dog"}`})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Nil(t, findSessionCookie(w))
	status := www.Status{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	require.Equal(t, www.Status{OK: false, Message: "Wrong password."}, status)
}

func TestUnlockIsRateLimited(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < unlockRequestLimit; i++ {
		w := s.do(request{method: "POST", path: "/api/auth/unlock", body: `{"password":"guess"}`})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}
	// Even the right password is refused once the limit is hit
	w := s.do(request{method: "POST", path: "/api/auth/unlock", body: `{"password":"champaisthebest"}`})
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Nil(t, findSessionCookie(w))
}

func TestForgedCookieIsRejected(t *testing.T) {
	s := newTestServer(t)
	forged := session.NewCodec("some-other-secret").Issue(time.Now())
	w := s.do(request{method: "GET", path: "/blog?page=2", cookie: &http.Cookie{Name: session.CookieName, Value: forged}})
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	require.Equal(t, "/?locked=1&page=2", w.Header().Get("Location"))
}

func TestLockEndpoint(t *testing.T) {
	s := newTestServer(t)
	w := s.do(request{method: "POST", path: "/api/auth/lock"})
	require.Equal(t, http.StatusOK, w.Code)
	c := findSessionCookie(w)
	require.NotNil(t, c)
	require.True(t, c.MaxAge < 0)
}

func TestPing(t *testing.T) {
	s := newTestServer(t)
	w := s.do(request{method: "GET", path: "/api/ping"})
	require.Equal(t, http.StatusOK, w.Code)
	ping := map[string]int64{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ping))
	require.NotZero(t, ping["time"])
}
