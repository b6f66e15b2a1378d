// Package response writes JSON bodies and error envelopes for the HTTP handlers.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/IoTMirror/GoogleWebService/internal/apperr"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes err's kind and status. Errors without a kind become a generic 500 and
// are logged; their details never reach the client.
func Error(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	code := apperr.TextCode(err)
	if code == "" {
		slog.Error("unhandled error", "error", err)
		JSON(w, http.StatusInternalServerError, ErrorBody{Code: apperr.CodeInternal, Message: "internal server error"})
		return
	}
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "code", code, "error", err)
	}
	JSON(w, status, ErrorBody{Code: code, Message: Message(err)})
}

// Message returns the envelope's public message.
func Message(err error) string {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.Message != "" {
		return rich.Message
	}
	return http.StatusText(apperr.HTTPStatus(err))
}
