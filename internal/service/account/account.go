// Package account serves one user's Google data: it loads the stored credentials,
// authorizes a client, runs the aggregation and persists any refreshed token.
package account

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/IoTMirror/GoogleWebService/internal/apperr"
	calendar_domain "github.com/IoTMirror/GoogleWebService/internal/domain/calendar"
	gmail_domain "github.com/IoTMirror/GoogleWebService/internal/domain/gmail"
	profile_domain "github.com/IoTMirror/GoogleWebService/internal/domain/profile"
	token_domain "github.com/IoTMirror/GoogleWebService/internal/domain/token"
	"github.com/IoTMirror/GoogleWebService/internal/infrastructure/google"
	"github.com/IoTMirror/GoogleWebService/internal/metrics"
	"github.com/IoTMirror/GoogleWebService/internal/service/resource"
)

const (
	resourceProfile = "profile"
	resourceTasks   = "tasks"
	resourceEvents  = "events"
	resourceInbox   = "inbox"
)

type Authorizer interface {
	Authorize(pair token_domain.Pair) *google.Client
}

// ServicesFactory builds the per-user APIs over an authorized client.
type ServicesFactory func(ctx context.Context, client *http.Client) (*google.Services, error)

type Limits struct {
	TaskQuota int
	EventsMax int
	InboxMax  int
}

type Service struct {
	tokens      token_domain.Repo
	authorizer  Authorizer
	newServices ServicesFactory
	limits      Limits
	metrics     metrics.Recorder

	now     func() time.Time
	shuffle resource.Shuffler
}

func NewService(tokens token_domain.Repo, authorizer Authorizer, newServices ServicesFactory, limits Limits, recorder metrics.Recorder) *Service {
	if newServices == nil {
		newServices = func(ctx context.Context, client *http.Client) (*google.Services, error) {
			return google.NewServices(ctx, client)
		}
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Service{
		tokens:      tokens,
		authorizer:  authorizer,
		newServices: newServices,
		limits:      limits,
		metrics:     recorder,
		now:         time.Now,
		shuffle:     resource.RandomShuffle,
	}
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*profile_domain.Profile, error) {
	var p *profile_domain.Profile
	err := s.run(ctx, userID, resourceProfile, func(svcs *google.Services) (int, error) {
		var err error
		p, err = svcs.Profile.Get(ctx)
		return 1, err
	})
	return p, err
}

// GetTasks returns the quota-bounded selection of the user's incomplete tasks.
func (s *Service) GetTasks(ctx context.Context, userID string, opts resource.TaskOptions) (*resource.TaskSelection, error) {
	var sel resource.TaskSelection
	err := s.run(ctx, userID, resourceTasks, func(svcs *google.Services) (int, error) {
		tasks, err := resource.FetchTasks(ctx, svcs.Tasks, opts)
		if err != nil {
			return 0, err
		}
		sel = resource.SelectTasks(tasks, s.limits.TaskQuota, s.shuffle)
		return len(sel.Timed) + len(sel.Untimed), nil
	})
	if err != nil {
		return nil, err
	}
	return &sel, nil
}

func (s *Service) GetEvents(ctx context.Context, userID string, opts resource.EventOptions) ([]calendar_domain.Event, error) {
	var events []calendar_domain.Event
	err := s.run(ctx, userID, resourceEvents, func(svcs *google.Services) (int, error) {
		var err error
		events, err = resource.FetchEvents(ctx, svcs.Calendar, s.now(), s.limits.EventsMax, opts)
		return len(events), err
	})
	return events, err
}

func (s *Service) GetInbox(ctx context.Context, userID string) ([]gmail_domain.Message, error) {
	var msgs []gmail_domain.Message
	err := s.run(ctx, userID, resourceInbox, func(svcs *google.Services) (int, error) {
		var err error
		msgs, err = resource.FetchInbox(ctx, svcs.Gmail, s.limits.InboxMax)
		return len(msgs), err
	})
	return msgs, err
}

func (s *Service) run(ctx context.Context, userID, resourceName string, fetch func(*google.Services) (int, error)) error {
	start := time.Now()

	pair, err := s.tokens.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, token_domain.ErrNotFound) {
			return apperr.NotFoundOrExpired("no credentials stored for user")
		}
		return apperr.Internal(err, "failed to load tokens")
	}

	client := s.authorizer.Authorize(*pair)
	svcs, err := s.newServices(ctx, client.HTTP)
	if err != nil {
		return apperr.Internal(err, "failed to create google services")
	}

	count, err := fetch(svcs)
	s.persistRefreshed(ctx, *pair, client)
	if err != nil {
		err = google.Classify(err)
		s.metrics.RecordUpstreamError(apperr.TextCode(err))
		slog.Warn("aggregation failed", "user_id", userID, "resource", resourceName, "error", err)
		return err
	}

	s.metrics.RecordUpstreamItems(resourceName, count)
	s.metrics.RecordAggregation(resourceName, time.Since(start))
	return nil
}

// persistRefreshed stores a token minted during the request so the next request
// starts from it.
func (s *Service) persistRefreshed(ctx context.Context, stored token_domain.Pair, client *google.Client) {
	if !client.Refreshed() {
		return
	}
	tok := client.Token()

	var err error
	if tok.RefreshToken != "" && tok.RefreshToken != stored.RefreshToken {
		err = s.tokens.UpdateTokens(ctx, stored.UserID, tok.AccessToken, tok.RefreshToken)
	} else {
		err = s.tokens.UpdateAccessToken(ctx, stored.UserID, tok.AccessToken)
	}
	if err != nil {
		slog.Warn("failed to persist refreshed access token", "user_id", stored.UserID, "error", err)
	}
}
