// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/dalemusser/journalhub/internal/app/system/apperr"
	"github.com/dalemusser/journalhub/internal/app/system/session"
	"go.uber.org/zap"
)

// MaxBodyBytes bounds JSON request bodies.
const MaxBodyBytes = 1 << 20

// ErrorLogger renders service errors as JSON and logs the ones that
// indicate a server-side failure.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{Log: logger}
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// Render writes err as {"error", "kind"} with the status its kind maps to.
// Internal and write failures are logged with the request path and never
// expose their cause to the client.
func (e *ErrorLogger) Render(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		}
		if s, ok := session.From(r.Context()); ok {
			fields = append(fields, zap.String("user_id", s.UserID))
		}
		e.Log.Error("request failed", fields...)
	}
	JSON(w, status, errorBody{Error: apperr.Message(err), Kind: apperr.KindOf(err).String()})
}

// BadRequest writes a 400 validation error with msg.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, errorBody{Error: msg, Kind: apperr.KindValidation.String()})
}

// NotFound answers unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusNotFound, errorBody{Error: "not found", Kind: apperr.KindNotFound.String()})
}

// MethodNotAllowed answers known routes hit with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed", Kind: "method_not_allowed"})
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Decode reads a single JSON object from the request body into dst. The
// request must declare application/json; unknown fields, trailing data and
// bodies over MaxBodyBytes are rejected.
// The returned error message is safe to show the client.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mt != "application/json" {
		return errors.New("content type must be application/json")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return errors.New("request body is empty")
		case errors.As(err, &maxErr):
			return errors.New("request body is too large")
		default:
			return errors.New("request body is not valid JSON")
		}
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
