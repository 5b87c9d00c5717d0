package profile

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"storefront/models"
)

// ErrNotFound is returned by Load when nothing is stored under the key.
var ErrNotFound = errors.New("profile not found")

// Store keeps the signed in user per session key.
type Store interface {
	Load(ctx context.Context, key string) (models.User, error)
	Save(ctx context.Context, key string, user models.User) error
	Clear(ctx context.Context, key string) error
}

// Current returns the stored user for key. A missing or unreadable profile
// yields the guest user.
func Current(ctx context.Context, store Store, key string) models.User {
	if store == nil {
		return models.Guest()
	}
	u, err := store.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			zap.L().Warn("reading profile", zap.String("key", key), zap.Error(err))
		}
		return models.Guest()
	}
	if u.Username == "" {
		u.Username = models.GuestName
	}
	return u
}
