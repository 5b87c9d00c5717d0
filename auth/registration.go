package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront/remote"
)

// Registration form fields.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"
)

// ErrUnknownField rejects a change to a field the form does not have.
var ErrUnknownField = errors.New("unknown field")

// DefaultDebounce is the quiet period before a field is checked.
const DefaultDebounce = 500 * time.Millisecond

// RegisterAPI is the part of the store API the registration form uses.
type RegisterAPI interface {
	CheckDuplicate(ctx context.Context, field, value string) (bool, error)
	Register(ctx context.Context, req remote.RegisterRequest) (string, error)
}

// Registration holds the registration form of one session. Field changes are
// checked after a quiet period; username and email are also checked against
// the store API for duplicates.
type Registration struct {
	api      RegisterAPI
	debounce *Debouncer
	onChange func(errs map[string]string)

	mu     sync.Mutex
	form   RegisterForm
	errors map[string]string
}

// NewRegistration creates the form. onChange, when set, receives the field
// errors after every completed check.
func NewRegistration(api RegisterAPI, delay time.Duration, onChange func(map[string]string)) *Registration {
	return &Registration{
		api:      api,
		debounce: NewDebouncer(delay),
		onChange: onChange,
		errors:   make(map[string]string),
	}
}

// Change stores a new field value and schedules its check, replacing any
// check still pending or running for that field.
func (r *Registration) Change(field, value string) error {
	r.mu.Lock()
	switch field {
	case FieldUsername:
		r.form.Username = value
	case FieldEmail:
		r.form.Email = value
	case FieldPassword:
		r.form.Password = value
	default:
		r.mu.Unlock()
		return fmt.Errorf("%w %q", ErrUnknownField, field)
	}
	delete(r.errors, field)
	r.mu.Unlock()

	r.debounce.Schedule(field, func(ctx context.Context) {
		msg := r.check(ctx, field, value)
		if ctx.Err() != nil {
			return
		}
		if errs, ok := r.record(field, value, msg); ok && r.onChange != nil {
			r.onChange(errs)
		}
	})
	return nil
}

// record stores msg as the error of field if the form still holds value. A
// result for a value that has since been replaced is dropped.
func (r *Registration) record(field, value, msg string) (map[string]string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.form.value(field) != value {
		return nil, false
	}
	r.errors[field] = msg
	return r.errorsLocked(), true
}

func (r *Registration) check(ctx context.Context, field, value string) string {
	if msg := ValidateField(field, value); msg != "" {
		return msg
	}
	if field == FieldPassword {
		return ""
	}
	exists, err := r.api.CheckDuplicate(ctx, field, value)
	if err != nil {
		if ctx.Err() == nil {
			zap.L().Warn("duplicate check failed", zap.String("field", field), zap.Error(err))
		}
		return MsgDuplicateFailed
	}
	if exists {
		return field + " already exists."
	}
	return ""
}

func (r *Registration) errorsLocked() map[string]string {
	out := make(map[string]string, len(r.errors))
	for k, v := range r.errors {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// Errors returns the non-empty field errors.
func (r *Registration) Errors() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errorsLocked()
}

// Form returns the current field values.
func (r *Registration) Form() RegisterForm {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.form
}

// Submit validates the whole form, reusing the duplicate check results, and
// posts it. It returns the server message on success.
func (r *Registration) Submit(ctx context.Context) (string, error) {
	r.mu.Lock()
	form := r.form
	final := ValidateRegistration(form)
	for field, value := range map[string]string{FieldUsername: form.Username, FieldEmail: form.Email} {
		if strings.TrimSpace(value) == "" {
			continue
		}
		delete(final, field)
		if prev := r.errors[field]; prev != "" {
			final[field] = prev
		} else if msg := ValidateField(field, value); msg != "" {
			final[field] = msg
		}
	}
	if len(final) > 0 {
		r.errors = final
		r.mu.Unlock()
		return "", &ValidationError{Fields: final}
	}
	r.mu.Unlock()

	msg, err := r.api.Register(ctx, remote.RegisterRequest{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		zap.L().Warn("register failed", zap.String("username", form.Username), zap.Error(err))
		return "", fmt.Errorf("register failed: %w", err)
	}

	r.Reset()
	return msg, nil
}

// Reset clears the form and drops pending checks.
func (r *Registration) Reset() {
	r.debounce.Cancel(FieldUsername)
	r.debounce.Cancel(FieldEmail)
	r.debounce.Cancel(FieldPassword)
	r.mu.Lock()
	r.form = RegisterForm{}
	r.errors = make(map[string]string)
	r.mu.Unlock()
}

// Close stops the debouncer for good.
func (r *Registration) Close() {
	r.debounce.Stop()
}
