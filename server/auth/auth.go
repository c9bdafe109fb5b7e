// Package auth exchanges the shared password for a session cookie.
package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/champa/scrapbook/pkg/pwdhash"
	"github.com/champa/scrapbook/pkg/www"
	"github.com/champa/scrapbook/server/session"
	"github.com/cyclopcam/logs"
)

// Nobody has a 64KB password
const maxUnlockBodyBytes = 64 * 1024

const (
	msgInvalidBody   = "Invalid request body."
	msgWrongPassword = "Wrong password."
)

type AuthServer struct {
	log          logs.Log
	passwords    *pwdhash.Verifier
	codec        *session.Codec
	secureCookie bool
	now          func() time.Time
}

// If secureCookie is true, then the session cookie is only sent over HTTPS
func NewAuthServer(log logs.Log, passwords *pwdhash.Verifier, codec *session.Codec, secureCookie bool) *AuthServer {
	return &AuthServer{
		log:          log,
		passwords:    passwords,
		codec:        codec,
		secureCookie: secureCookie,
		now:          time.Now,
	}
}

type unlockJSON struct {
	Password string `json:"password"`
}

// Unlock serves POST /api/auth/unlock
func (a *AuthServer) Unlock(w http.ResponseWriter, r *http.Request) {
	body := unlockJSON{}
	www.ReadJSON(w, r, &body, maxUnlockBodyBytes, msgInvalidBody)

	// Empty and wrong look identical from the outside
	password := strings.TrimSpace(body.Password)
	if password == "" || !a.passwords.Verify(password) {
		a.log.Infof("Rejected unlock attempt from %v", r.RemoteAddr)
		www.Panic(http.StatusUnauthorized, msgWrongPassword)
	}

	token := a.codec.Issue(a.now())
	http.SetCookie(w, a.cookie(token, session.TTLSeconds))
	www.CacheNever(w)
	a.log.Infof("Unlocked for %v", r.RemoteAddr)
	www.SendOK(w)
}

// Lock serves POST /api/auth/lock.
// There is no server-side session, so all we can do is ask the browser to forget its cookie.
func (a *AuthServer) Lock(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, a.cookie("", -1))
	www.CacheNever(w)
	www.SendOK(w)
}

func (a *AuthServer) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     session.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   a.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
