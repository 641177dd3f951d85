package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"

	"github.com/precisionx/cakto-bridge/core"
)

type Config struct {
	Store       AccountStore
	NewPassword func() string
	Logger      core.Logger
}

// Resolver finds an account by email and creates one on a genuine miss.
// The created account gets a throwaway random password; the user resets it
// through the "forgot password" flow on first login.
type Resolver struct {
	store       AccountStore
	newPassword func() string
	logger      core.Logger
}

func NewResolver(cfg Config) *Resolver {
	newPassword := cfg.NewPassword
	if newPassword == nil {
		newPassword = uuid.NewString
	}
	logger := cfg.Logger
	if logger == nil {
		logger = glog.Nop()
	}
	return &Resolver{
		store:       cfg.Store,
		newPassword: newPassword,
		logger:      logger,
	}
}

// Resolve returns the account for email, creating it when the store reports
// not-found. The second return reports whether a new account was created.
func (r *Resolver) Resolve(ctx context.Context, email string, displayName string) (Account, bool, error) {
	if r == nil || r.store == nil {
		return Account{}, false, goerrors.New(
			"identity: resolver requires an account store",
			goerrors.CategoryInternal,
		).WithTextCode(core.ServiceErrorInternal)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return Account{}, false, goerrors.New(
			"identity: email is required",
			goerrors.CategoryBadInput,
		).WithCode(http.StatusBadRequest).WithTextCode(core.ServiceErrorBadInput)
	}

	account, err := r.store.FindByEmail(ctx, email)
	if err == nil {
		core.LogWithFields(r.logger, "info", "account reused", map[string]any{
			"uid":   account.UID,
			"email": email,
		})
		return account, false, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return Account{}, false, goerrors.Wrap(
			err,
			goerrors.CategoryExternal,
			"identity: account lookup failed",
		).WithTextCode(core.ServiceErrorIdentityUpstream).
			WithMetadata(map[string]any{"email": email})
	}

	created, err := r.store.Create(ctx, CreateAccountInput{
		Email:       email,
		Password:    r.newPassword(),
		DisplayName: strings.TrimSpace(displayName),
	})
	if err != nil {
		return Account{}, false, goerrors.Wrap(
			err,
			goerrors.CategoryExternal,
			"identity: account creation failed",
		).WithTextCode(core.ServiceErrorIdentityUpstream).
			WithMetadata(map[string]any{"email": email})
	}
	core.LogWithFields(r.logger, "info", "account created", map[string]any{
		"uid":   created.UID,
		"email": email,
	})
	return created, true, nil
}
