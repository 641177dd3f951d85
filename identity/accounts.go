package identity

import (
	"context"
	"errors"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/precisionx/cakto-bridge/core"
)

var ErrAccountNotFound = errors.New("identity: account not found")

// AccountNotFoundError distinguishes a genuine lookup miss from any other
// provider failure. Only this error may trigger account creation.
type AccountNotFoundError struct {
	Cause error
}

func (e *AccountNotFoundError) Error() string {
	if e == nil || e.Cause == nil {
		return ErrAccountNotFound.Error()
	}
	return ErrAccountNotFound.Error() + ": " + e.Cause.Error()
}

func (e *AccountNotFoundError) Unwrap() error {
	if e == nil {
		return nil
	}
	if e.Cause == nil {
		return ErrAccountNotFound
	}
	return errors.Join(ErrAccountNotFound, e.Cause)
}

func (e *AccountNotFoundError) ToServiceError() *goerrors.Error {
	message := ErrAccountNotFound.Error()
	if e != nil && e.Cause != nil {
		message = e.Error()
	}
	return goerrors.New(message, goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode(core.ServiceErrorAccountNotFound)
}

func accountNotFound(cause error) error {
	return &AccountNotFoundError{Cause: cause}
}

type Account struct {
	UID         string
	Email       string
	DisplayName string
}

type CreateAccountInput struct {
	Email       string
	Password    string
	DisplayName string
}

type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (Account, error)
	Create(ctx context.Context, in CreateAccountInput) (Account, error)
}
