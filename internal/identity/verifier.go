package identity

import (
	"context"
	"fmt"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/launchpad-labs/copilot-backend/internal/entity"
	"go.uber.org/zap"
)

// FirebaseVerifier checks Firebase ID tokens.
type FirebaseVerifier struct {
	client *auth.Client
}

func NewFirebaseVerifier(client *auth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*entity.Identity, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", entity.ErrUnauthorized)
	}

	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		ctxzap.Debug(ctx, "id token rejected", zap.Error(err))
		return nil, fmt.Errorf("%w: invalid token", entity.ErrUnauthorized)
	}

	return fromToken(decoded), nil
}

func fromToken(t *auth.Token) *entity.Identity {
	id := &entity.Identity{UserID: t.UID}
	if email, ok := t.Claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := t.Claims["name"].(string); ok {
		id.DisplayName = strings.TrimSpace(name)
	}
	return id
}

// MockVerifier accepts any non-empty token as the user id. A token of the
// form "uid|email" also sets the email.
type MockVerifier struct{}

func NewMockVerifier() *MockVerifier {
	return &MockVerifier{}
}

func (v *MockVerifier) Verify(ctx context.Context, token string) (*entity.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", entity.ErrUnauthorized)
	}

	uid, email, _ := strings.Cut(token, "|")
	ctxzap.Debug(ctx, "[MOCK] accepting token", zap.String("user_id", uid))

	return &entity.Identity{UserID: uid, Email: email}, nil
}
