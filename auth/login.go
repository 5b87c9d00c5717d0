package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"storefront/models"
	"storefront/profile"
	"storefront/remote"
)

// LoginAPI is the part of the store API used to sign in.
type LoginAPI interface {
	Login(ctx context.Context, req remote.LoginRequest) (remote.LoginResult, error)
}

// LoginError is a rejected login with the message to show.
type LoginError struct {
	Message string
}

func (e *LoginError) Error() string { return e.Message }

// Login validates the form, signs in against the store API and stores the
// returned user as the profile of key.
func Login(ctx context.Context, api LoginAPI, store profile.Store, key string, form LoginForm) (models.User, error) {
	if errs := ValidateLogin(form); len(errs) > 0 {
		return models.User{}, &ValidationError{Fields: errs}
	}

	res, err := api.Login(ctx, remote.LoginRequest{Email: form.Email, Password: form.Password})
	if err != nil {
		msg := "Server error"
		var apiErr *remote.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			msg = apiErr.Message
		}
		zap.L().Info("login rejected", zap.String("email", form.Email), zap.Error(err))
		return models.User{}, &LoginError{Message: msg}
	}
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = "Login failed"
		}
		return models.User{}, &LoginError{Message: msg}
	}

	if err := store.Save(ctx, key, res.User); err != nil {
		return models.User{}, err
	}
	zap.L().Info("login", zap.String("username", res.User.Username))
	return res.User, nil
}

// Logout forgets the stored profile of key.
func Logout(ctx context.Context, store profile.Store, key string) error {
	return store.Clear(ctx, key)
}
