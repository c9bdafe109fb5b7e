package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/champa/scrapbook/pkg/pwdhash"
	"github.com/champa/scrapbook/pkg/www"
	"github.com/champa/scrapbook/server/session"
	"github.com/cyclopcam/logs"
	"github.com/stretchr/testify/require"
)

func newTestAuth(t *testing.T, hashSpec string, secure bool) (*AuthServer, *session.Codec) {
	codec := session.NewCodec("auth-secret")
	return NewAuthServer(logs.NewTestingLog(t), pwdhash.NewVerifier(hashSpec), codec, secure), codec
}

func unlock(t *testing.T, a *AuthServer, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest("POST", "/api/auth/unlock", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	www.RunProtected(logs.NewTestingLog(t), w, r, func() { a.Unlock(w, r) })
	return w
}

func decodeStatus(t *testing.T, w *httptest.ResponseRecorder) www.Status {
	status := www.Status{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	return status
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

func TestUnlockWithDefaultPassword(t *testing.T) {
	a, codec := newTestAuth(t, "", false)
	w := unlock(t, a, `{"password":"  champaisthebest\n"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, decodeStatus(t, w).OK)

	c := sessionCookie(w)
	require.NotNil(t, c)
	require.True(t, codec.Verify(c.Value))
	require.Equal(t, session.TTLSeconds, c.MaxAge)
	require.Equal(t, "/", c.Path)
	require.True(t, c.HttpOnly)
	require.False(t, c.Secure)
	require.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestUnlockSecureCookieInProduction(t *testing.T) {
	a, _ := newTestAuth(t, "", true)
	w := unlock(t, a, `{"password":"champaisthebest"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, sessionCookie(w).Secure)
}

func TestUnlockWithHashSpec(t *testing.T) {
	spec, err := pwdhash.HashPassword("tuna and biscuits")
	require.NoError(t, err)
	a, _ := newTestAuth(t, spec, false)

	w := unlock(t, a, `{"password":"tuna and biscuits"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, sessionCookie(w))

	// The development default no longer works once a hash is configured
	w = unlock(t, a, `{"password":"champaisthebest"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Nil(t, sessionCookie(w))
}

func TestUnlockRejections(t *testing.T) {
	a, _ := newTestAuth(t, "", false)
	for _, body := range []string{`{"password":"wrong"}`, `{"password":""}`, `{"password":"   "}`, `{}`, `{"pass":"champaisthebest"}`} {
		w := unlock(t, a, body)
		require.Equal(t, http.StatusUnauthorized, w.Code, body)
		require.Equal(t, www.Status{OK: false, Message: "Wrong password."}, decodeStatus(t, w), body)
		require.Nil(t, sessionCookie(w), body)
	}

	for _, body := range []string{``, `not json`, `{"password":`, `{"password":5}`, `["champaisthebest"]`} {
		w := unlock(t, a, body)
		require.Equal(t, http.StatusBadRequest, w.Code, body)
		require.Equal(t, www.Status{OK: false, Message: "Invalid request body."}, decodeStatus(t, w), body)
		require.Nil(t, sessionCookie(w), body)
	}
}

func TestUnlockOversizeBody(t *testing.T) {
	a, _ := newTestAuth(t, "", false)
	w := unlock(t, a, `{"password":"`+strings.Repeat("a", maxUnlockBodyBytes)+`"}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	require.Nil(t, sessionCookie(w))
}

func TestLockClearsCookie(t *testing.T) {
	a, _ := newTestAuth(t, "", false)
	r := httptest.NewRequest("POST", "/api/auth/lock", nil)
	w := httptest.NewRecorder()
	a.Lock(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	c := sessionCookie(w)
	require.NotNil(t, c)
	require.Equal(t, "", c.Value)
	require.True(t, c.MaxAge < 0)
}

func TestUnlockClock(t *testing.T) {
	a, codec := newTestAuth(t, "", false)
	a.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	w := unlock(t, a, `{"password":"champaisthebest"}`)
	c := sessionCookie(w)
	require.True(t, strings.HasPrefix(c.Value, "1700000000.1701209600."))
	// Minted long ago, so it has expired by now
	require.False(t, codec.Verify(c.Value))
}
