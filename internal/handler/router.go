// Package handler wires the HTTP surface onto a chi router.
package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/IoTMirror/GoogleWebService/internal/handler/oauth"
	"github.com/IoTMirror/GoogleWebService/internal/handler/user"
)

type RouterDeps struct {
	Flow    FlowService
	Account user.AccountService
	Metrics http.Handler
}

// FlowService is the sign-in flow plus the cleanup operations exposed under /users.
type FlowService interface {
	oauth.FlowService
	user.CleanupService
}

func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(NewLoggingMiddleware())
	r.Use(chimiddleware.Recoverer)

	oauthHandler := oauth.NewOAuthHandler(deps.Flow)
	userHandler := user.NewUserHandler(deps.Account, deps.Flow)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	r.Get("/signin", oauthHandler.HandleCallback)
	r.Get("/signin/{userID}", oauthHandler.SignIn)
	r.Delete("/signout/{userID}", oauthHandler.SignOut)

	r.Route("/users/{userID}", func(r chi.Router) {
		r.Get("/", userHandler.Profile)
		r.Delete("/", userHandler.Delete)
		r.Get("/tasks", userHandler.Tasks)
		r.Get("/events", userHandler.Events)
		r.Get("/inbox", userHandler.Inbox)
		r.Delete("/access_tokens", oauthHandler.SignOut)
		r.Delete("/oauth2_states", userHandler.DeleteStates)
	})

	return r
}
