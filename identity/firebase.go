package identity

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// FirebaseStore backs the AccountStore contract with Firebase Auth.
type FirebaseStore struct {
	client *auth.Client
}

func NewFirebaseStore(ctx context.Context, credentialsJSON string) (*FirebaseStore, error) {
	if strings.TrimSpace(credentialsJSON) == "" {
		return nil, fmt.Errorf("identity: firebase service account credentials are required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON([]byte(credentialsJSON)))
	if err != nil {
		return nil, fmt.Errorf("identity: initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("identity: initialize firebase auth client: %w", err)
	}
	return &FirebaseStore{client: client}, nil
}

func (s *FirebaseStore) FindByEmail(ctx context.Context, email string) (Account, error) {
	if s == nil || s.client == nil {
		return Account{}, fmt.Errorf("identity: firebase store is not initialized")
	}
	record, err := s.client.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if auth.IsUserNotFound(err) {
			return Account{}, accountNotFound(err)
		}
		return Account{}, fmt.Errorf("identity: firebase lookup by email: %w", err)
	}
	return accountFromRecord(record), nil
}

func (s *FirebaseStore) Create(ctx context.Context, in CreateAccountInput) (Account, error) {
	if s == nil || s.client == nil {
		return Account{}, fmt.Errorf("identity: firebase store is not initialized")
	}
	params := (&auth.UserToCreate{}).
		Email(strings.TrimSpace(in.Email)).
		Password(in.Password)
	if name := strings.TrimSpace(in.DisplayName); name != "" {
		params = params.DisplayName(name)
	}
	record, err := s.client.CreateUser(ctx, params)
	if err != nil {
		return Account{}, fmt.Errorf("identity: firebase create user: %w", err)
	}
	return accountFromRecord(record), nil
}

func accountFromRecord(record *auth.UserRecord) Account {
	if record == nil {
		return Account{}
	}
	return Account{
		UID:         record.UID,
		Email:       record.Email,
		DisplayName: record.DisplayName,
	}
}
