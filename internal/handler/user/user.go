package user

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/IoTMirror/GoogleWebService/internal/apperr"
	calendar_domain "github.com/IoTMirror/GoogleWebService/internal/domain/calendar"
	gmail_domain "github.com/IoTMirror/GoogleWebService/internal/domain/gmail"
	profile_domain "github.com/IoTMirror/GoogleWebService/internal/domain/profile"
	"github.com/IoTMirror/GoogleWebService/internal/handler/response"
	"github.com/IoTMirror/GoogleWebService/internal/service/resource"
)

type AccountService interface {
	GetProfile(ctx context.Context, userID string) (*profile_domain.Profile, error)
	GetTasks(ctx context.Context, userID string, opts resource.TaskOptions) (*resource.TaskSelection, error)
	GetEvents(ctx context.Context, userID string, opts resource.EventOptions) ([]calendar_domain.Event, error)
	GetInbox(ctx context.Context, userID string) ([]gmail_domain.Message, error)
}

type CleanupService interface {
	DeleteStates(ctx context.Context, userID string) error
	DeleteUserData(ctx context.Context, userID string) error
}

type UserHandler struct {
	account AccountService
	cleanup CleanupService
}

func NewUserHandler(account AccountService, cleanup CleanupService) *UserHandler {
	return &UserHandler{account: account, cleanup: cleanup}
}

// GET /users/{userID}
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	p, err := h.account.GetProfile(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, p)
}

// Tasks returns the selected tasks. Query flags task_ids, tasklist_info and
// tasklist_ids enrich each task.
// GET /users/{userID}/tasks
func (h *UserHandler) Tasks(w http.ResponseWriter, r *http.Request) {
	var opts resource.TaskOptions
	if err := parseFlags(r, map[string]*bool{
		"task_ids":      &opts.WithTaskIDs,
		"tasklist_info": &opts.WithListInfo,
		"tasklist_ids":  &opts.WithListIDs,
	}); err != nil {
		response.Error(w, err)
		return
	}

	sel, err := h.account.GetTasks(r.Context(), chi.URLParam(r, "userID"), opts)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, sel)
}

// GET /users/{userID}/events
func (h *UserHandler) Events(w http.ResponseWriter, r *http.Request) {
	var opts resource.EventOptions
	if err := parseFlags(r, map[string]*bool{
		"calendar_info": &opts.WithCalendarInfo,
		"calendar_ids":  &opts.WithCalendarIDs,
	}); err != nil {
		response.Error(w, err)
		return
	}

	events, err := h.account.GetEvents(r.Context(), chi.URLParam(r, "userID"), opts)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, events)
}

// GET /users/{userID}/inbox
func (h *UserHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.account.GetInbox(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, msgs)
}

// DELETE /users/{userID}/oauth2_states
func (h *UserHandler) DeleteStates(w http.ResponseWriter, r *http.Request) {
	if err := h.cleanup.DeleteStates(r.Context(), chi.URLParam(r, "userID")); err != nil {
		response.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /users/{userID}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.cleanup.DeleteUserData(r.Context(), chi.URLParam(r, "userID")); err != nil {
		response.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseFlags(r *http.Request, flags map[string]*bool) error {
	q := r.URL.Query()
	for name, dst := range flags {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return apperr.BadRequest("query parameter " + name + " must be a boolean")
		}
		*dst = v
	}
	return nil
}
