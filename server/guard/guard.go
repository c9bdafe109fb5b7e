// Package guard is the single authorization checkpoint of the site.
// It runs in front of the router, and nothing behind it performs any further checks.
package guard

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/champa/scrapbook/pkg/www"
	"github.com/cyclopcam/logs"
)

// Everything under these prefixes requires a valid session
var protectedPrefixes = []string{"/home", "/timeline", "/blog", "/api/media"}

// API paths get a 401. Pages get bounced to the lock screen.
const apiPrefix = "/api/media"

// LockedParam is added to the lock screen URL when we redirect there
const LockedParam = "locked"

type Guard struct {
	log        logs.Log
	verifier   *Verifier
	cookieName string
}

func NewGuard(log logs.Log, verifier *Verifier, cookieName string) *Guard {
	return &Guard{
		log:        log,
		verifier:   verifier,
		cookieName: cookieName,
	}
}

// IsProtectedPath returns true if path is one of our prefixes, or lives beneath one
func IsProtectedPath(path string) bool {
	for _, prefix := range protectedPrefixes {
		if hasPathPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func hasPathPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// Middleware returns a handler that only lets authorized requests through to next
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.Allow(r) {
			next.ServeHTTP(w, r)
			return
		}
		g.deny(w, r)
	})
}

// Allow returns true if the request may proceed
func (g *Guard) Allow(r *http.Request) bool {
	if !IsProtectedPath(r.URL.Path) {
		return true
	}
	token := ""
	if cookie, err := r.Cookie(g.cookieName); err == nil {
		token = cookie.Value
	}
	return g.verifier.Verify(r.Context(), token)
}

func (g *Guard) deny(w http.ResponseWriter, r *http.Request) {
	g.log.Infof("Guard denied %v %v", r.Method, r.URL.Path)
	if strings.HasPrefix(r.URL.Path, apiPrefix) {
		www.SendError(w, "Unauthorized.", http.StatusUnauthorized)
		return
	}
	target := url.URL{
		Path:     "/",
		RawQuery: r.URL.RawQuery,
	}
	q := target.Query()
	q.Set(LockedParam, "1")
	target.RawQuery = q.Encode()
	http.Redirect(w, r, target.String(), http.StatusTemporaryRedirect)
}
