package response

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Kind classifies a request failure.
type Kind int

const (
	Unauthenticated Kind = iota + 1
	InvalidInput
	NotFound
	MethodNotAllowed
	RouteNotFound
	PersistenceFailure
	UnsupportedMediaType
)

var kindNames = map[Kind]string{
	Unauthenticated:      "unauthenticated",
	InvalidInput:         "invalid input",
	NotFound:             "not found",
	MethodNotAllowed:     "method not allowed",
	RouteNotFound:        "route not found",
	PersistenceFailure:   "persistence failure",
	UnsupportedMediaType: "unsupported media type",
}

func (k Kind) String() string { return kindNames[k] }

// Error is returned by controllers and rendered by ErrorHandler.  Err is
// the underlying cause and is never shown to clients.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func ErrUnauthenticated() *Error {
	return &Error{Kind: Unauthenticated, Status: http.StatusUnauthorized, Message: "Login required"}
}

func Invalid(msg string) *Error {
	return &Error{Kind: InvalidInput, Status: http.StatusBadRequest, Message: msg}
}

func ErrNotFound(msg string) *Error {
	return &Error{Kind: NotFound, Status: http.StatusNotFound, Message: msg}
}

func ErrMethodNotAllowed() *Error {
	return &Error{Kind: MethodNotAllowed, Status: http.StatusMethodNotAllowed, Message: "Method not allowed"}
}

func ErrRouteNotFound() *Error {
	return &Error{Kind: RouteNotFound, Status: http.StatusNotFound, Message: "Endpoint not found"}
}

// Persistence wraps a storage failure.  Clients only see a generic message.
func Persistence(err error) *Error {
	return &Error{Kind: PersistenceFailure, Status: http.StatusInternalServerError, Message: "Internal server error", Err: err}
}

func ErrUnsupportedMediaType() *Error {
	return &Error{Kind: UnsupportedMediaType, Status: http.StatusUnsupportedMediaType, Message: "Content type not allowed"}
}

// classify turns any handler error into an *Error.
func classify(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusNotFound:
			return ErrRouteNotFound()
		case http.StatusMethodNotAllowed:
			return ErrMethodNotAllowed()
		case http.StatusUnsupportedMediaType:
			return ErrUnsupportedMediaType()
		case http.StatusUnauthorized:
			return ErrUnauthenticated()
		}
		if he.Code < http.StatusInternalServerError {
			return &Error{Kind: InvalidInput, Status: he.Code, Message: http.StatusText(he.Code), Err: he}
		}
	}
	return Persistence(err)
}

// ErrorHandler renders errors: API paths get the JSON envelope, page paths
// get the "404" template for missing things and plain text otherwise.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	e := classify(err)
	if e.Status >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	var werr error
	switch {
	case IsAPI(c.Request().URL.Path):
		werr = c.JSON(e.Status, Envelope{Success: false, Message: e.Message})
	case e.Status == http.StatusNotFound && c.Echo().Renderer != nil:
		werr = c.Render(http.StatusNotFound, "404", map[string]any{"Path": c.Request().URL.Path})
	default:
		werr = c.String(e.Status, e.Message)
	}
	if werr != nil {
		log.Printf("write error response: %v", werr)
	}
}
