package google

import (
	"errors"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"github.com/IoTMirror/GoogleWebService/internal/apperr"
)

// Classify maps an upstream failure to an error kind. Errors that already carry a
// kind pass through unchanged.
func Classify(err error) error {
	if err == nil || apperr.Kinded(err) {
		return err
	}

	var refreshErr *RefreshError
	if errors.As(err, &refreshErr) {
		return apperr.AuthRefreshFailed(err)
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return apperr.AuthRefreshFailed(err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests, http.StatusForbidden:
			return apperr.RateLimited(err)
		case http.StatusUnauthorized:
			return apperr.AuthRefreshFailed(err)
		}
	}

	return apperr.Upstream(err)
}
