package google

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

var ErrNoRefreshToken = errors.New("no refresh token stored")

// RefreshError reports that the stored refresh token could not mint a new access
// token; the user has to consent again.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("token refresh failed: %v", e.Err)
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}

// Client is an HTTP client bound to one user's credentials.
type Client struct {
	HTTP   *http.Client
	source *refreshingSource
}

// Token returns a copy of the current token, refreshed or not.
func (c *Client) Token() oauth2.Token {
	return c.source.current()
}

// Refreshed reports whether a new access token was minted during the client's life.
func (c *Client) Refreshed() bool {
	return c.source.wasRefreshed()
}

type refreshingSource struct {
	authority *Authority

	mu        sync.Mutex
	token     *oauth2.Token
	refreshed bool
}

func (s *refreshingSource) current() oauth2.Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.token
}

func (s *refreshingSource) wasRefreshed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshed
}

// refresh mints a new access token unless another request already replaced stale.
func (s *refreshingSource) refresh(req *http.Request, stale string) (oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token.AccessToken != "" && s.token.AccessToken != stale {
		return *s.token, nil
	}
	if s.token.RefreshToken == "" {
		return oauth2.Token{}, &RefreshError{Err: ErrNoRefreshToken}
	}

	ctx := s.authority.withBaseClient(req.Context())
	fresh, err := s.authority.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: s.token.RefreshToken}).Token()
	if err != nil {
		return oauth2.Token{}, &RefreshError{Err: err}
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = s.token.RefreshToken
	}
	s.token = fresh
	s.refreshed = true
	return *fresh, nil
}

// refreshingTransport signs requests and, on a 401, refreshes once and replays.
type refreshingTransport struct {
	base   http.RoundTripper
	source *refreshingSource
}

func (t *refreshingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok := t.source.current()
	if tok.AccessToken == "" {
		fresh, err := t.source.refresh(req, "")
		if err != nil {
			return nil, err
		}
		tok = fresh
	}

	resp, err := t.base.RoundTrip(authorized(req, tok, req.Body))
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		return resp, nil
	}

	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	resp.Body.Close()

	fresh, err := t.source.refresh(req, tok.AccessToken)
	if err != nil {
		return nil, err
	}

	body := req.Body
	if req.GetBody != nil {
		body, err = req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("failed to rewind request body: %w", err)
		}
	}
	return t.base.RoundTrip(authorized(req, fresh, body))
}

func authorized(req *http.Request, tok oauth2.Token, body io.ReadCloser) *http.Request {
	out := req.Clone(req.Context())
	out.Body = body
	tok.SetAuthHeader(out)
	return out
}

// limitedTransport waits on a shared limiter before every outbound call.
type limitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}
