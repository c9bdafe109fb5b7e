package server

import (
	"embed"
	"net/http"
	"time"

	"github.com/champa/scrapbook/pkg/www"
	"github.com/cyclopcam/staticfiles"
	"github.com/go-chi/httprate"
	"github.com/julienschmidt/httprouter"
)

//go:embed static
var staticWWW embed.FS

// Unlock attempts allowed per client IP, per unlockWindow
const (
	unlockRequestLimit = 10
	unlockWindow       = time.Minute
)

func (s *Server) setupHttpRoutes() error {
	router := httprouter.New()

	// route adds a handler that runs inside the www panic handler.
	// Authorization is not done here. The guard in front of the router owns that.
	route := func(method, path string, handle httprouter.Handle) {
		www.Handle(s.Log, router, method, path, handle)
	}

	// ratelimited is like route, but each client IP gets at most requestLimit requests per windowLength
	ratelimited := func(method, path string, handle func(w http.ResponseWriter, r *http.Request), requestLimit int, windowLength time.Duration) {
		limited := httprate.Limit(requestLimit, windowLength, httprate.WithKeyFuncs(httprate.KeyByIP))
		www.Handle(s.Log, router, method, path, func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
			limited(http.HandlerFunc(handle)).ServeHTTP(w, r)
		})
	}

	route("GET", "/api/ping", s.httpPing)

	ratelimited("POST", "/api/auth/unlock", s.auth.Unlock, unlockRequestLimit, unlockWindow)
	route("POST", "/api/auth/lock", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		s.auth.Lock(w, r)
	})

	route("GET", "/api/media/:filename", s.media.HttpGetMedia)

	route("GET", "/", s.pages.HttpLock)
	route("GET", "/home", s.pages.HttpHome)
	route("GET", "/timeline", s.pages.HttpTimeline)
	route("GET", "/blog", s.pages.HttpBlog)

	// Unknown /api/ paths are a 404, everything else falls back to index.html
	static, err := staticfiles.NewCachedStaticFileServer(staticWWW, "static", []string{"/api/"}, s.Log, true, nil)
	if err != nil {
		s.Log.Warnf("Error in static files: %v", err)
	} else {
		router.NotFound = static
	}

	s.httpRouter = router
	s.handler = s.guard.Middleware(router)
	return nil
}

func (s *Server) httpPing(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	type pingJSON struct {
		Time int64 `json:"time"`
	}
	ping := &pingJSON{
		Time: time.Now().Unix(),
	}
	www.SendJSON(w, ping)
}
