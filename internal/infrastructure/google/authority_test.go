package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/IoTMirror/GoogleWebService/internal/apperr"
	"github.com/IoTMirror/GoogleWebService/internal/domain/token"
)

type fakeAuthority struct {
	server       *httptest.Server
	tokenCalls   atomic.Int32
	revoked      atomic.Value
	tokenStatus  int
	freshToken   string
	revokeStatus int
}

func newFakeAuthority(t *testing.T) *fakeAuthority {
	t.Helper()
	f := &fakeAuthority{tokenStatus: http.StatusOK, freshToken: "fresh", revokeStatus: http.StatusOK}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		if f.tokenStatus != http.StatusOK {
			w.WriteHeader(f.tokenStatus)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		resp := map[string]any{"access_token": f.freshToken, "token_type": "Bearer", "expires_in": 3600}
		if r.Form.Get("grant_type") == "authorization_code" {
			resp["refresh_token"] = "refresh-" + r.Form.Get("code")
		}
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/revoke", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.revoked.Store(r.Form.Get("token"))
		w.WriteHeader(f.revokeStatus)
	})
	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+f.freshToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte("ok"))
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAuthority) authority() *Authority {
	return NewAuthority(Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "https://mirror.example/signin",
		Scopes:       []string{"openid", "email"},
		Endpoint:     oauth2.Endpoint{AuthURL: f.server.URL + "/auth", TokenURL: f.server.URL + "/token"},
		RevokeURL:    f.server.URL + "/revoke",
	})
}

func TestAuthority_AuthCodeURLRequestsOfflineAccess(t *testing.T) {
	f := newFakeAuthority(t)

	raw := f.authority().AuthCodeURL("state-1")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "client", q.Get("client_id"))
	assert.Equal(t, "https://mirror.example/signin", q.Get("redirect_uri"))
	assert.Equal(t, "openid email", q.Get("scope"))
}

func TestAuthority_Exchange(t *testing.T) {
	f := newFakeAuthority(t)

	tok, err := f.authority().Exchange(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok.AccessToken)
	assert.Equal(t, "refresh-code-1", tok.RefreshToken)
}

func TestAuthority_ExchangeFailure(t *testing.T) {
	f := newFakeAuthority(t)
	f.tokenStatus = http.StatusBadRequest

	_, err := f.authority().Exchange(context.Background(), "bad")
	require.Error(t, err)
	var retrieveErr *oauth2.RetrieveError
	assert.True(t, errors.As(err, &retrieveErr))
}

func TestClient_RefreshesOnUnauthorized(t *testing.T) {
	f := newFakeAuthority(t)
	client := f.authority().Authorize(token.Pair{UserID: "u1", AccessToken: "stale", RefreshToken: "r1"})

	resp, err := client.HTTP.Get(f.server.URL + "/api")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, client.Refreshed())
	assert.Equal(t, "fresh", client.Token().AccessToken)
	assert.Equal(t, "r1", client.Token().RefreshToken)
	assert.Equal(t, int32(1), f.tokenCalls.Load())
}

func TestClient_ValidTokenIsNotRefreshed(t *testing.T) {
	f := newFakeAuthority(t)
	client := f.authority().Authorize(token.Pair{UserID: "u1", AccessToken: "fresh", RefreshToken: "r1"})

	resp, err := client.HTTP.Get(f.server.URL + "/api")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, client.Refreshed())
	assert.Zero(t, f.tokenCalls.Load())
}

func TestClient_MissingAccessTokenRefreshesFirst(t *testing.T) {
	f := newFakeAuthority(t)
	client := f.authority().Authorize(token.Pair{UserID: "u1", RefreshToken: "r1"})

	resp, err := client.HTTP.Get(f.server.URL + "/api")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, client.Refreshed())
}

func TestClient_NoRefreshTokenFailsAsAuthRefresh(t *testing.T) {
	f := newFakeAuthority(t)
	client := f.authority().Authorize(token.Pair{UserID: "u1", AccessToken: "stale"})

	_, err := client.HTTP.Get(f.server.URL + "/api")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoRefreshToken)
	assert.True(t, apperr.Is(Classify(err), apperr.CodeAuthRefreshFailed))
}

func TestClient_RejectedRefreshFailsAsAuthRefresh(t *testing.T) {
	f := newFakeAuthority(t)
	f.tokenStatus = http.StatusBadRequest
	client := f.authority().Authorize(token.Pair{UserID: "u1", AccessToken: "stale", RefreshToken: "revoked"})

	_, err := client.HTTP.Get(f.server.URL + "/api")
	require.Error(t, err)
	var refreshErr *RefreshError
	require.True(t, errors.As(err, &refreshErr))
	assert.True(t, apperr.Is(Classify(err), apperr.CodeAuthRefreshFailed))
	assert.False(t, client.Refreshed())
}

func TestAuthority_RevokePrefersRefreshToken(t *testing.T) {
	f := newFakeAuthority(t)
	a := f.authority()

	require.NoError(t, a.Revoke(context.Background(), a.Authorize(token.Pair{AccessToken: "a1", RefreshToken: "r1"})))
	assert.Equal(t, "r1", f.revoked.Load())

	require.NoError(t, a.Revoke(context.Background(), a.Authorize(token.Pair{AccessToken: "a2"})))
	assert.Equal(t, "a2", f.revoked.Load())
}

func TestAuthority_RevokeRejected(t *testing.T) {
	f := newFakeAuthority(t)
	f.revokeStatus = http.StatusBadRequest
	a := f.authority()

	err := a.Revoke(context.Background(), a.Authorize(token.Pair{AccessToken: "a1", RefreshToken: "r1"}))
	assert.Error(t, err)
}
