package handlers

import (
	"context"

	"microblogTTS/internal/models"
)

type identityKey struct{}

func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom returns the authenticated caller, if any.
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(models.Identity)
	return identity, ok
}

func viewer(ctx context.Context) *models.Identity {
	if identity, ok := IdentityFrom(ctx); ok {
		return &identity
	}
	return nil
}
