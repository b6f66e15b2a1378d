// Package google talks to Google's OAuth2 authority: consent URLs, code exchange,
// refreshing HTTP clients and token revocation.
package google

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	googleauth "golang.org/x/oauth2/google"
	"golang.org/x/time/rate"

	"github.com/IoTMirror/GoogleWebService/internal/domain/token"
)

const DefaultRevokeURL = "https://oauth2.googleapis.com/revoke"

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string

	// Endpoint and RevokeURL default to Google's; tests point them elsewhere.
	Endpoint  oauth2.Endpoint
	RevokeURL string

	// Transport is the base round tripper for every outbound call.
	Transport http.RoundTripper
	// Limiter throttles every outbound call when set.
	Limiter *rate.Limiter
	Timeout time.Duration
}

type Authority struct {
	oauth     *oauth2.Config
	revokeURL string
	base      *http.Client
}

func NewAuthority(cfg Config) *Authority {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" && endpoint.TokenURL == "" {
		endpoint = googleauth.Endpoint
	}
	revokeURL := cfg.RevokeURL
	if revokeURL == "" {
		revokeURL = DefaultRevokeURL
	}

	var transport http.RoundTripper = http.DefaultTransport
	if cfg.Transport != nil {
		transport = cfg.Transport
	}
	if cfg.Limiter != nil {
		transport = &limitedTransport{base: transport, limiter: cfg.Limiter}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Authority{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     endpoint,
		},
		revokeURL: revokeURL,
		base:      &http.Client{Transport: transport, Timeout: timeout},
	}
}

// AuthCodeURL builds the consent URL. Offline access makes Google issue a refresh
// token on first consent.
func (a *Authority) AuthCodeURL(state string) string {
	return a.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (a *Authority) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := a.oauth.Exchange(a.withBaseClient(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	return tok, nil
}

// Authorize returns a client that signs requests with the pair's access token and
// refreshes it with the refresh token when Google rejects it.
func (a *Authority) Authorize(pair token.Pair) *Client {
	src := &refreshingSource{
		authority: a,
		token: &oauth2.Token{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
			TokenType:    "Bearer",
		},
	}
	return &Client{
		HTTP: &http.Client{
			Transport: &refreshingTransport{base: a.base.Transport, source: src},
			Timeout:   a.base.Timeout,
		},
		source: src,
	}
}

// Revoke asks Google to revoke the client's grant. The refresh token is preferred
// since revoking it also invalidates the access tokens minted from it.
func (a *Authority) Revoke(ctx context.Context, client *Client) error {
	tok := client.Token()
	value := tok.RefreshToken
	if value == "" {
		value = tok.AccessToken
	}
	if value == "" {
		return fmt.Errorf("no token to revoke")
	}

	form := url.Values{"token": {value}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.base.Do(req)
	if err != nil {
		return fmt.Errorf("revoke request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return fmt.Errorf("revoke failed with status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func (a *Authority) withBaseClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, a.base)
}
