// Package auth drives the three-legged OAuth2 sign-in: it issues single-use states,
// completes the redirect back from Google, and tears credentials down on sign-out.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/oauth2"

	"github.com/IoTMirror/GoogleWebService/internal/apperr"
	state_domain "github.com/IoTMirror/GoogleWebService/internal/domain/state"
	token_domain "github.com/IoTMirror/GoogleWebService/internal/domain/token"
	"github.com/IoTMirror/GoogleWebService/internal/infrastructure/google"
	"github.com/IoTMirror/GoogleWebService/internal/metrics"
)

// Authority is the part of google.Authority the flow needs.
type Authority interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Authorize(pair token_domain.Pair) *google.Client
	Revoke(ctx context.Context, client *google.Client) error
}

var _ Authority = (*google.Authority)(nil)

const (
	stepBegin    = "begin"
	stepComplete = "complete"
	stepSignOut  = "signout"
	stepRevoke   = "revoke"
)

type Service struct {
	authority Authority
	states    state_domain.Repo
	tokens    token_domain.Repo
	metrics   metrics.Recorder
}

func NewService(authority Authority, states state_domain.Repo, tokens token_domain.Repo, recorder metrics.Recorder) *Service {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Service{
		authority: authority,
		states:    states,
		tokens:    tokens,
		metrics:   recorder,
	}
}

// Begin records a pending authorization for userID and returns the consent URL to
// redirect the user to.
func (s *Service) Begin(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", apperr.BadRequest("user id is required")
	}

	stateToken, err := s.states.Create(ctx, userID)
	if err != nil {
		s.metrics.RecordFlowStep(stepBegin, "error")
		return "", apperr.Internal(err, "failed to create oauth2 state")
	}

	s.metrics.RecordFlowStep(stepBegin, "success")
	slog.Info("oauth2 flow started", "user_id", userID)
	return s.authority.AuthCodeURL(stateToken), nil
}

// Complete handles the redirect back from Google. The state is consumed before
// anything else, so an empty code (the user denied consent) still ends the flow.
// It returns the user the state belonged to.
func (s *Service) Complete(ctx context.Context, stateToken, code string) (string, error) {
	if stateToken == "" {
		s.metrics.RecordFlowStep(stepComplete, "bad_request")
		return "", apperr.BadRequest("state is required")
	}

	userID, err := s.states.Consume(ctx, stateToken)
	if err != nil {
		if errors.Is(err, state_domain.ErrNotFound) {
			s.metrics.RecordFlowStep(stepComplete, "invalid_state")
			return "", apperr.NotFoundOrExpired("oauth2 state not found or expired")
		}
		s.metrics.RecordFlowStep(stepComplete, "error")
		return "", apperr.Internal(err, "failed to consume oauth2 state")
	}

	if code == "" {
		s.metrics.RecordFlowStep(stepComplete, "denied")
		slog.Info("oauth2 consent denied", "user_id", userID)
		return userID, nil
	}

	tok, err := s.authority.Exchange(ctx, code)
	if err != nil {
		s.metrics.RecordFlowStep(stepComplete, "exchange_failed")
		return userID, apperr.ExchangeFailed(err)
	}

	if err := s.storeTokens(ctx, userID, tok); err != nil {
		s.metrics.RecordFlowStep(stepComplete, "error")
		return userID, err
	}

	s.metrics.RecordFlowStep(stepComplete, "success")
	slog.Info("oauth2 flow completed", "user_id", userID, "refresh_token_issued", tok.RefreshToken != "")
	return userID, nil
}

// storeTokens inserts the pair and falls back to an update when the user already has
// one. A round without a refresh token keeps the stored refresh token.
func (s *Service) storeTokens(ctx context.Context, userID string, tok *oauth2.Token) error {
	err := s.tokens.Insert(ctx, token_domain.Pair{
		UserID:       userID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	})
	if err == nil {
		return nil
	}
	if !errors.Is(err, token_domain.ErrDuplicateKey) {
		return apperr.Internal(err, "failed to store tokens")
	}

	if tok.RefreshToken == "" {
		err = s.tokens.UpdateAccessToken(ctx, userID, tok.AccessToken)
	} else {
		err = s.tokens.UpdateTokens(ctx, userID, tok.AccessToken, tok.RefreshToken)
	}
	if err != nil {
		return apperr.Internal(err, "failed to update tokens")
	}
	return nil
}

// SignOut revokes the user's grant and deletes the stored pair. Revocation is best
// effort; the local record is deleted even when Google rejects it.
func (s *Service) SignOut(ctx context.Context, userID string) error {
	pair, err := s.tokens.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, token_domain.ErrNotFound) {
			s.metrics.RecordFlowStep(stepSignOut, "not_found")
			return apperr.NotFoundOrExpired("no credentials stored for user")
		}
		return apperr.Internal(err, "failed to load tokens")
	}

	if err := s.authority.Revoke(ctx, s.authority.Authorize(*pair)); err != nil {
		s.metrics.RecordFlowStep(stepRevoke, "failed")
		slog.Warn("token revocation failed", "user_id", userID, "error", err)
	}

	if err := s.tokens.Delete(ctx, userID); err != nil {
		return apperr.Internal(err, "failed to delete tokens")
	}

	s.metrics.RecordFlowStep(stepSignOut, "success")
	slog.Info("user signed out", "user_id", userID)
	return nil
}

// DeleteStates drops every pending authorization of the user.
func (s *Service) DeleteStates(ctx context.Context, userID string) error {
	if err := s.states.DeleteAllForUser(ctx, userID); err != nil {
		return apperr.Internal(err, "failed to delete oauth2 states")
	}
	return nil
}

// DeleteUserData signs the user out if needed and drops pending states.
func (s *Service) DeleteUserData(ctx context.Context, userID string) error {
	if err := s.SignOut(ctx, userID); err != nil && !apperr.Is(err, apperr.CodeNotFoundOrExpired) {
		return err
	}
	return s.DeleteStates(ctx, userID)
}
