package webhook

import (
	"context"
	"net/http"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/precisionx/cakto-bridge/core"
	"github.com/precisionx/cakto-bridge/identity"
	"github.com/precisionx/cakto-bridge/mailer"
)

const defaultCallTimeout = 10 * time.Second

// Response is the JSON body returned to Cakto. Field names follow the
// contract the sender already consumes.
type Response struct {
	Ok            bool   `json:"ok"`
	Preflight     bool   `json:"preflight,omitempty"`
	Message       string `json:"message,omitempty"`
	Ignored       bool   `json:"ignored,omitempty"`
	Reason        string `json:"reason,omitempty"`
	EventRecebido string `json:"eventRecebido,omitempty"`
	Error         string `json:"error,omitempty"`
	Details       string `json:"details,omitempty"`
	Email         string `json:"email,omitempty"`
	UID           string `json:"uid,omitempty"`
	ProductName   string `json:"productName,omitempty"`
}

type Result struct {
	StatusCode int
	Body       Response
}

type AccountResolver interface {
	Resolve(ctx context.Context, email string, displayName string) (identity.Account, bool, error)
}

// Processor implements the POST decision sequence. Client-facing terminal
// outcomes (unauthorized, ignored, bad request, success) come back as a
// Result; upstream failures come back as an error for the transport layer
// to collapse into the generic internal-error response.
type Processor struct {
	Verifier    SecretVerifier
	Accounts    AccountResolver
	Mailer      mailer.Sender
	Composer    mailer.WelcomeComposer
	Logger      core.Logger
	CallTimeout time.Duration
}

func NewProcessor(verifier SecretVerifier, accounts AccountResolver, sender mailer.Sender) *Processor {
	return &Processor{
		Verifier:    verifier,
		Accounts:    accounts,
		Mailer:      sender,
		Logger:      glog.Nop(),
		CallTimeout: defaultCallTimeout,
	}
}

func (p *Processor) Process(ctx context.Context, payload Payload) (Result, error) {
	if p == nil || p.Accounts == nil || p.Mailer == nil {
		return Result{}, goerrors.New(
			"webhook: processor requires accounts and mailer",
			goerrors.CategoryInternal,
		).WithTextCode(core.ServiceErrorInternal)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if err := p.Verifier.Verify(ctx, payload.Secret); err != nil {
		core.LogWithFields(p.logger(), "warn", "invalid webhook secret received", map[string]any{
			"secret": payload.Secret,
		})
		return Result{
			StatusCode: http.StatusUnauthorized,
			Body:       Response{Ok: false, Error: "Unauthorized"},
		}, nil
	}

	if payload.Event != EventPurchaseApproved {
		core.LogWithFields(p.logger(), "info", "event ignored", map[string]any{
			"event": payload.Event,
		})
		return Result{
			StatusCode: http.StatusOK,
			Body: Response{
				Ok:            true,
				Ignored:       true,
				Reason:        "Evento não é purchase_approved",
				EventRecebido: payload.Event,
			},
		}, nil
	}

	purchase := ExtractPurchase(payload.Data)
	if purchase.Email == "" {
		core.LogWithFields(p.logger(), "error", "payload is missing customer email", map[string]any{
			"event":         payload.Event,
			"order_id":      string(payload.Data.ID),
			"customer_name": payload.Data.Customer.Name,
		})
		return Result{
			StatusCode: http.StatusBadRequest,
			Body:       Response{Ok: false, Error: "Email ausente no payload"},
		}, nil
	}

	account, created, err := p.resolveAccount(ctx, purchase)
	if err != nil {
		return Result{}, err
	}

	if err := p.sendWelcome(ctx, purchase); err != nil {
		return Result{}, err
	}

	core.LogWithFields(p.logger(), "info", "purchase processed", map[string]any{
		"uid":             account.UID,
		"email":           purchase.Email,
		"product":         purchase.ProductName,
		"order_id":        purchase.OrderID,
		"account_created": created,
	})
	return Result{
		StatusCode: http.StatusOK,
		Body: Response{
			Ok:          true,
			Message:     "Usuário processado e e-mail enviado.",
			Email:       purchase.Email,
			UID:         account.UID,
			ProductName: purchase.ProductName,
		},
	}, nil
}

func (p *Processor) resolveAccount(ctx context.Context, purchase Purchase) (identity.Account, bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout())
	defer cancel()
	return p.Accounts.Resolve(callCtx, purchase.Email, purchase.Name)
}

func (p *Processor) sendWelcome(ctx context.Context, purchase Purchase) error {
	message, err := p.Composer.Compose(mailer.WelcomeData{
		Name:        purchase.Name,
		ProductName: purchase.ProductName,
		Email:       purchase.Email,
		OrderID:     purchase.OrderID,
		CheckoutURL: purchase.CheckoutURL,
	})
	if err != nil {
		return goerrors.Wrap(
			err,
			goerrors.CategoryInternal,
			"webhook: compose welcome email",
		).WithTextCode(core.ServiceErrorInternal)
	}

	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout())
	defer cancel()
	if err := p.Mailer.Send(callCtx, message); err != nil {
		return goerrors.Wrap(
			err,
			goerrors.CategoryExternal,
			"webhook: welcome email delivery failed",
		).WithTextCode(core.ServiceErrorMailUpstream).
			WithMetadata(map[string]any{"email": purchase.Email})
	}
	return nil
}

func (p *Processor) logger() core.Logger {
	if p != nil && p.Logger != nil {
		return p.Logger
	}
	return glog.Nop()
}

func (p *Processor) callTimeout() time.Duration {
	if p != nil && p.CallTimeout > 0 {
		return p.CallTimeout
	}
	return defaultCallTimeout
}
