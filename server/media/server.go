package media

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/champa/scrapbook/pkg/www"
	"github.com/champa/scrapbook/server/storage"
	"github.com/cyclopcam/logs"
	"github.com/julienschmidt/httprouter"
)

// Browsers may keep media for an hour, but shared caches must not
const MaxAgeSeconds = 3600

const (
	msgInvalidPath = "Invalid media path."
	msgNotFound    = "Media not found."
)

// MediaServer streams photos and videos out of storage.
// It performs no authorization of its own. It must sit behind the guard.
type MediaServer struct {
	log   logs.Log
	store storage.Storage
}

func NewMediaServer(log logs.Log, store storage.Storage) *MediaServer {
	return &MediaServer{
		log:   log,
		store: store,
	}
}

// HttpGetMedia serves GET /api/media/:filename
// Videos honour a single byte range. Everything else is sent whole.
func (s *MediaServer) HttpGetMedia(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	filename := params.ByName("filename")
	if !IsValidFilename(filename) {
		www.Panic(http.StatusBadRequest, msgInvalidPath)
	}
	name := path.Base(filename)
	ext := Extension(name)

	info, err := s.store.Stat(r.Context(), name)
	if errors.Is(err, storage.ErrNotFound) {
		www.Panic(http.StatusNotFound, msgNotFound)
	}
	www.Check(err)

	rangeHeader := r.Header.Get("Range")
	if ext == "mp4" && rangeHeader != "" {
		br, err := ParseRange(rangeHeader, info.Size)
		if err != nil {
			www.Panic(http.StatusBadRequest, msgInvalidPath)
		}
		body := s.open(r, name, br.Start, br.Length())
		defer body.Close()
		h := w.Header()
		h.Set("Content-Type", ContentType(ext))
		h.Set("Accept-Ranges", "bytes")
		h.Set("Content-Range", fmt.Sprintf("bytes %v-%v/%v", br.Start, br.End, info.Size))
		h.Set("Content-Length", fmt.Sprintf("%v", br.Length()))
		www.CachePrivate(w, MaxAgeSeconds)
		w.WriteHeader(http.StatusPartialContent)
		s.copyBody(w, body, name)
		return
	}

	body := s.open(r, name, 0, -1)
	defer body.Close()
	h := w.Header()
	h.Set("Content-Type", ContentType(ext))
	h.Set("Content-Length", fmt.Sprintf("%v", info.Size))
	www.CachePrivate(w, MaxAgeSeconds)
	w.WriteHeader(http.StatusOK)
	s.copyBody(w, body, name)
}

// open must be called before any headers are written, so that failures can still become a proper response
func (s *MediaServer) open(r *http.Request, name string, offset, length int64) io.ReadCloser {
	body, err := s.store.ReadRange(r.Context(), name, offset, length)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted between Stat and ReadRange
		www.Panic(http.StatusNotFound, msgNotFound)
	}
	www.Check(err)
	return body
}

// Once the status line has been sent, all we can do about a failure is log it
func (s *MediaServer) copyBody(w http.ResponseWriter, body io.Reader, name string) {
	if _, err := io.Copy(w, body); err != nil {
		s.log.Warnf("Failed to send %v: %v", name, err)
	}
}
