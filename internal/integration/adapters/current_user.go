package adapters

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/importer/internal/application/adapter"
	domainerror "github.com/finance-tracker/importer/internal/domain/error"
)

type userIDKey struct{}

// WithUserID returns a context carrying the authenticated user.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// contextUserProvider resolves the user the auth middleware stored in the request context.
type contextUserProvider struct{}

// NewContextUserProvider creates a CurrentUserProvider backed by the request context.
func NewContextUserProvider() adapter.CurrentUserProvider {
	return contextUserProvider{}
}

func (contextUserProvider) CurrentUserID(ctx context.Context) (uuid.UUID, error) {
	userID, ok := ctx.Value(userIDKey{}).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, domainerror.ErrUserNotResolved
	}
	return userID, nil
}

// staticUserProvider always acts as one user. Used by the CLI.
type staticUserProvider struct {
	userID uuid.UUID
}

// NewStaticUserProvider creates a CurrentUserProvider that always returns userID.
// A nil userID resolves to ErrUserNotResolved.
func NewStaticUserProvider(userID uuid.UUID) adapter.CurrentUserProvider {
	return staticUserProvider{userID: userID}
}

func (p staticUserProvider) CurrentUserID(context.Context) (uuid.UUID, error) {
	if p.userID == uuid.Nil {
		return uuid.Nil, domainerror.ErrUserNotResolved
	}
	return p.userID, nil
}
