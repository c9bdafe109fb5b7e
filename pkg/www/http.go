package www

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/cyclopcam/logs"
	"github.com/julienschmidt/httprouter"
)

// Status is the JSON envelope shared by all of our API responses.
// Successful calls send {"ok":true}, failures send {"ok":false,"message":"..."}.
type Status struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// Sent for any failure that is not an HTTPError. The real cause only goes to the log.
const internalErrorMessage = "Internal server error."

// RunProtected runs 'func' inside a panic handler that recognizes our special errors,
// and sends the appropriate HTTP response if a panic does occur.
func RunProtected(log logs.Log, w http.ResponseWriter, r *http.Request, handler func()) {
	defer func() {
		if rec := recover(); rec != nil {
			if rec == http.ErrAbortHandler {
				// Client went away mid-stream. Let net/http deal with it.
				panic(rec)
			}
			if hErr, ok := rec.(HTTPError); ok {
				log.Infof("Failed request %v: %v %v", r.URL.Path, hErr.Code, hErr.Message)
				SendError(w, hErr.Message, hErr.Code)
			} else if hErr, ok := rec.(*HTTPError); ok {
				log.Infof("Failed request %v: %v %v", r.URL.Path, hErr.Code, hErr.Message)
				SendError(w, hErr.Message, hErr.Code)
			} else if err, ok := rec.(runtime.Error); ok {
				// Show stack trace on runtime error
				log.Errorf("Runtime panic error %v: %v", r.URL.Path, err)
				log.Errorf("Stack Trace: %v", string(debug.Stack()))
				SendError(w, internalErrorMessage, http.StatusInternalServerError)
			} else if err, ok := rec.(error); ok {
				// No stack trace on generic error
				log.Errorf("Panic error %v: %v", r.URL.Path, err)
				SendError(w, internalErrorMessage, http.StatusInternalServerError)
			} else if err, ok := rec.(string); ok {
				log.Errorf("Panic string %v: %v", r.URL.Path, err)
				SendError(w, internalErrorMessage, http.StatusInternalServerError)
			} else {
				log.Errorf("Unrecognized panic %v: %v", r.URL.Path, rec)
				SendError(w, internalErrorMessage, http.StatusInternalServerError)
			}
		}
	}()

	handler()
}

// Handle adds a protected HTTP route to router (ie handle will run inside RunProtected, so you get a panic handler).
func Handle(log logs.Log, router *httprouter.Router, method, path string, handle httprouter.Handle) {
	wrapper := func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		RunProtected(log, w, r, func() { handle(w, r, p) })
	}
	router.Handle(method, path, wrapper)
}

// ReadJSON reads the body of the request, and unmarshals it into 'obj'.
// Any failure (empty body, oversize body, bad JSON, wrong shape) panics with a 400
// carrying badBodyMessage, so that decoder internals are not echoed to the client.
func ReadJSON(w http.ResponseWriter, r *http.Request, obj interface{}, maxBodyBytes int64, badBodyMessage string) {
	if r.Body == nil {
		Panic(http.StatusBadRequest, badBodyMessage)
	}
	reader := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(obj); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			Panic(http.StatusRequestEntityTooLarge, badBodyMessage)
		}
		Panic(http.StatusBadRequest, badBodyMessage)
	}
}

// Set cache headers for a private resource, with the given expiry in seconds
func CachePrivate(w http.ResponseWriter, seconds int) {
	w.Header().Set("Cache-Control", fmt.Sprintf("private, max-age=%v", seconds))
}

// Set cache headers instructing the client never to cache
func CacheNever(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
}

// SendError sends {"ok":false,"message":message} with the given status code.
func SendError(w http.ResponseWriter, message string, code int) {
	SendJSONStatus(w, Status{OK: false, Message: message}, code)
}

// SendJSON encodes 'obj' to JSON, and sends it as an HTTP application/json response.
func SendJSON(w http.ResponseWriter, obj interface{}) {
	SendJSONStatus(w, obj, http.StatusOK)
}

// SendJSONStatus is SendJSON with an explicit status code.
func SendJSONStatus(w http.ResponseWriter, obj interface{}, code int) {
	b, err := json.Marshal(obj)
	Check(err)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	w.Write(b)
}

// SendOK sends {"ok":true}
func SendOK(w http.ResponseWriter) {
	SendJSON(w, Status{OK: true})
}
