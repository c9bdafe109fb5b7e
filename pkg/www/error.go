package www

import (
	"fmt"
)

// HTTPError is an object that can be panic'ed, and the outer HTTP handler function
// will return the appropriate HTTP error message.
// Message is sent to the client verbatim, so it must never contain file paths or secrets.
type HTTPError struct {
	Code    int
	Message string
}

func (e HTTPError) Error() string {
	return fmt.Sprintf("%v %v", e.Code, e.Message)
}

// Panic creates an HTTPError object and panics it.
func Panic(code int, message string) {
	panic(HTTPError{code, message})
}

// Check causes a panic if err is not nil.
// The client sees a generic 500, and the log gets the real error.
func Check(err error) {
	if err != nil {
		panic(err)
	}
}
