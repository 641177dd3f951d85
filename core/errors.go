package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ServiceErrorBadInput         = "BRIDGE_BAD_INPUT"
	ServiceErrorUnauthorized     = "BRIDGE_UNAUTHORIZED"
	ServiceErrorMethodNotAllowed = "BRIDGE_METHOD_NOT_ALLOWED"
	ServiceErrorAccountNotFound  = "BRIDGE_ACCOUNT_NOT_FOUND"
	ServiceErrorIdentityUpstream = "BRIDGE_IDENTITY_UPSTREAM"
	ServiceErrorMailUpstream     = "BRIDGE_MAIL_UPSTREAM"
	ServiceErrorInternal         = "BRIDGE_INTERNAL_ERROR"
)

// MapError normalizes any error into the service error envelope so callers
// can rely on Category, Code, and TextCode being populated.
func MapError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureServiceErrorEnvelope(richErr)
	}
	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureServiceErrorEnvelope(mapped)
}

func ensureServiceErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = HTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultServiceTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultServiceTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ServiceErrorBadInput
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return ServiceErrorUnauthorized
	case goerrors.CategoryNotFound:
		return ServiceErrorAccountNotFound
	case goerrors.CategoryExternal:
		return ServiceErrorIdentityUpstream
	default:
		return ServiceErrorInternal
	}
}

func HTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
