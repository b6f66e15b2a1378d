// Package apperr defines the error kinds surfaced by the broker. Every kind is a
// go-errors envelope with a stable text code and the HTTP status it maps to.
package apperr

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

const (
	CodeBadRequest        = "BAD_REQUEST"
	CodeNotFoundOrExpired = "NOT_FOUND_OR_EXPIRED"
	CodeExchangeFailed    = "EXCHANGE_FAILED"
	CodeAuthRefreshFailed = "AUTH_REFRESH_FAILED"
	CodeRateLimited       = "RATE_LIMITED"
	CodeUpstream          = "UPSTREAM_ERROR"
	CodeInternal          = "INTERNAL_ERROR"
)

func BadRequest(message string) error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(CodeBadRequest)
}

func NotFoundOrExpired(message string) error {
	return goerrors.New(message, goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode(CodeNotFoundOrExpired)
}

func ExchangeFailed(source error) error {
	return wrap(source, goerrors.CategoryAuth, "authorization code exchange failed", http.StatusUnauthorized, CodeExchangeFailed)
}

func AuthRefreshFailed(source error) error {
	return wrap(source, goerrors.CategoryAuth, "stored credentials are no longer valid", http.StatusUnauthorized, CodeAuthRefreshFailed)
}

func RateLimited(source error) error {
	return wrap(source, goerrors.CategoryRateLimit, "upstream quota exceeded", http.StatusTooManyRequests, CodeRateLimited)
}

func Upstream(source error) error {
	return wrap(source, goerrors.CategoryExternal, "upstream request failed", http.StatusBadGateway, CodeUpstream)
}

func Internal(source error, message string) error {
	return wrap(source, goerrors.CategoryInternal, message, http.StatusInternalServerError, CodeInternal)
}

func wrap(source error, category goerrors.Category, message string, status int, textCode string) error {
	if source == nil {
		return goerrors.New(message, category).
			WithCode(status).
			WithTextCode(textCode)
	}
	return goerrors.Wrap(source, category, message).
		WithCode(status).
		WithTextCode(textCode)
}

// TextCode returns the kind of err, or "" when err carries no envelope.
func TextCode(err error) string {
	var rich *goerrors.Error
	if err == nil || !goerrors.As(err, &rich) {
		return ""
	}
	return rich.TextCode
}

// Is reports whether err is an envelope of the given kind.
func Is(err error, textCode string) bool {
	return err != nil && TextCode(err) == textCode
}

// Kinded reports whether err already carries a kind.
func Kinded(err error) bool {
	return TextCode(err) != ""
}

// HTTPStatus maps err to a response status; errors without an envelope are 500.
func HTTPStatus(err error) int {
	var rich *goerrors.Error
	if err == nil {
		return http.StatusOK
	}
	if goerrors.As(err, &rich) && rich.Code != 0 {
		return rich.Code
	}
	return http.StatusInternalServerError
}
