package oauth

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/IoTMirror/GoogleWebService/internal/apperr"
	"github.com/IoTMirror/GoogleWebService/internal/handler/response"
)

const (
	htmlPage    = `<html><body><h1>%s</h1><p>%s</p></body></html>`
	htmlSuccess = "Signed in"
	htmlDenied  = "Sign-in cancelled"
	htmlError   = "Sign-in failed"
)

type FlowService interface {
	Begin(ctx context.Context, userID string) (string, error)
	Complete(ctx context.Context, stateToken, code string) (string, error)
	SignOut(ctx context.Context, userID string) error
}

type OAuthHandler struct {
	flow FlowService
}

func NewOAuthHandler(flow FlowService) *OAuthHandler {
	return &OAuthHandler{flow: flow}
}

// SignIn redirects the user to Google's consent page.
// GET /signin/{userID}
func (h *OAuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	redirectURL, err := h.flow.Begin(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		response.Error(w, err)
		return
	}
	http.Redirect(w, r, redirectURL, http.StatusFound)
}

// HandleCallback completes the flow Google redirects back to. An error parameter
// without a code means the user declined.
// GET /signin?state=&code=&error=
func (h *OAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code := q.Get("code")

	userID, err := h.flow.Complete(r.Context(), q.Get("state"), code)
	if err != nil {
		slog.Warn("failed to complete oauth2 flow", "user_id", userID, "error", err)
		writeHTML(w, apperr.HTTPStatus(err), htmlError, response.Message(err))
		return
	}

	if code == "" {
		writeHTML(w, http.StatusOK, htmlDenied, q.Get("error"))
		return
	}
	writeHTML(w, http.StatusOK, htmlSuccess, "You can close this window.")
}

// SignOut revokes and forgets the user's credentials.
// DELETE /signout/{userID}, DELETE /users/{userID}/access_tokens
func (h *OAuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.flow.SignOut(r.Context(), chi.URLParam(r, "userID")); err != nil {
		response.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeHTML(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, htmlPage, html.EscapeString(title), html.EscapeString(detail))
}
