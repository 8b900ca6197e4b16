// Package respond writes negotiated JSON or CBOR bodies and turns handler
// errors and panics into RFC 9457 problem responses.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/labstack/echo/v5"

	applog "github.com/janisto/echo-cards/internal/platform/logging"
	"github.com/janisto/echo-cards/internal/platform/validate"
)

// ensureVary adds values to the Vary header, skipping ones already listed.
func ensureVary(h http.Header, values ...string) {
	seen := make(map[string]bool)
	for _, line := range h.Values(echo.HeaderVary) {
		for v := range strings.SplitSeq(line, ",") {
			seen[strings.ToLower(strings.TrimSpace(v))] = true
		}
	}
	for _, v := range values {
		if key := strings.ToLower(v); !seen[key] {
			h.Add(echo.HeaderVary, v)
			seen[key] = true
		}
	}
}

// writeProblem encodes problem as application/problem+json, or as
// application/problem+cbor when the client prefers CBOR. Encoding errors
// are dropped: the status line is already out.
func writeProblem(w http.ResponseWriter, r *http.Request, problem ProblemDetails) {
	ensureVary(w.Header(), "Origin", echo.HeaderAccept)

	f := selectFormat(r.Header.Get(echo.HeaderAccept))
	w.Header().Set(echo.HeaderContentType, "application/problem+"+f.subtype())
	w.WriteHeader(problem.Status)

	if f == formatCBOR {
		_ = cbor.NewEncoder(w).Encode(problem)
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(problem)
}

func committed(c *echo.Context) bool {
	resp, err := echo.UnwrapResponse(c.Response())
	return err == nil && resp.Committed
}

// problemFor maps a handler error to the problem sent to the client.
// Errors without an HTTP meaning are logged and hidden behind a 500.
func problemFor(c *echo.Context, err error) ProblemDetails {
	var (
		pd       *ProblemDetails
		ve       *validate.ValidationError
		he       *echo.HTTPError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.As(err, &pd):
		return *pd
	case errors.As(err, &ve):
		return *FromValidation(ve)
	case errors.As(err, &tooLarge):
		return *Error413(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
	case errors.Is(err, echo.ErrNotFound):
		return *Error404("resource not found")
	case errors.Is(err, echo.ErrMethodNotAllowed):
		return *NewError(http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", c.Request().Method))
	case errors.As(err, &he):
		return *NewError(he.Code, he.Message)
	}
	applog.LogError(c.Request().Context(), "unhandled error", err)
	return *Error500("internal server error")
}

// NewHTTPErrorHandler returns an Echo error handler writing problem
// responses. Instance defaults to the request path. A response that is
// already committed is left alone.
func NewHTTPErrorHandler() echo.HTTPErrorHandler {
	return func(c *echo.Context, err error) {
		if committed(c) {
			return
		}
		problem := problemFor(c, err)
		if problem.Instance == "" {
			problem.Instance = c.Request().URL.Path
		}
		writeProblem(c.Response(), c.Request(), problem)
	}
}

// Recoverer returns Echo middleware that logs a panic with its stack and
// answers 500. http.ErrAbortHandler is re-panicked so net/http can abort
// the connection.
func Recoverer() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				applog.LogError(c.Request().Context(), "panic recovered", fmt.Errorf("%v", rec),
					slog.String("stack", string(debug.Stack())))
				if committed(c) {
					return
				}
				problem := Error500("internal server error")
				problem.Instance = c.Request().URL.Path
				writeProblem(c.Response(), c.Request(), *problem)
			}()
			return next(c)
		}
	}
}
