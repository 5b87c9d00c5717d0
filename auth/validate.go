package auth

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	passwordChars   = regexp.MustCompile(`^[A-Za-z\d]{6,}$`)
	hasLetter       = regexp.MustCompile(`[A-Za-z]`)
	hasDigit        = regexp.MustCompile(`\d`)
)

// Messages shown next to the form fields.
const (
	MsgEmailRequired    = "Email is required"
	MsgEmailFormat      = "Invalid email format"
	MsgPasswordRequired = "Password is required"
	MsgPasswordShort    = "Password must be at least 6 characters"

	MsgUsernameRequired = "Username is required"
	MsgUsernameInvalid  = "Username must be 3-20 characters and only letters, numbers, underscores."
	MsgEmailInvalid     = "Email is invalid."
	MsgPasswordWeak     = "Password must contain at least one letter, one number, and be at least 6 characters long."
	MsgDuplicateFailed  = "Could not check duplicate."
)

// ValidationError carries per-field messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	must := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	must("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	must("store_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	must("store_username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	must("store_password", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	return v
}

// StrongPassword accepts six or more letters and digits with at least one of
// each.
func StrongPassword(s string) bool {
	return passwordChars.MatchString(s) && hasLetter.MatchString(s) && hasDigit.MatchString(s)
}

// LoginForm is the body of the login form.
type LoginForm struct {
	Email    string `json:"email" validate:"notblank,store_email"`
	Password string `json:"password" validate:"notblank,min=6"`
}

var loginMessages = map[string]map[string]string{
	"email":    {"notblank": MsgEmailRequired, "store_email": MsgEmailFormat},
	"password": {"notblank": MsgPasswordRequired, "min": MsgPasswordShort},
}

// ValidateLogin returns the field errors of a login form; empty when valid.
func ValidateLogin(form LoginForm) map[string]string {
	return fieldErrors(validate.Struct(form), loginMessages)
}

// RegisterForm is the body of the registration form.
type RegisterForm struct {
	Username string `json:"username" validate:"notblank,store_username"`
	Email    string `json:"email" validate:"notblank,store_email"`
	Password string `json:"password" validate:"notblank,store_password"`
}

func (f RegisterForm) value(field string) string {
	switch field {
	case FieldUsername:
		return f.Username
	case FieldEmail:
		return f.Email
	case FieldPassword:
		return f.Password
	}
	return ""
}

var registerMessages = map[string]map[string]string{
	"username": {"notblank": MsgUsernameRequired, "store_username": MsgUsernameInvalid},
	"email":    {"notblank": MsgEmailRequired, "store_email": MsgEmailInvalid},
	"password": {"notblank": MsgPasswordRequired, "store_password": MsgPasswordWeak},
}

// ValidateRegistration checks every registration field against its pattern.
func ValidateRegistration(form RegisterForm) map[string]string {
	return fieldErrors(validate.Struct(form), registerMessages)
}

// ValidateField checks a single registration field.
func ValidateField(field, value string) string {
	var tag string
	switch field {
	case FieldUsername:
		tag = "store_username"
	case FieldEmail:
		tag = "store_email"
	case FieldPassword:
		tag = "store_password"
	default:
		return ""
	}
	if err := validate.Var(value, tag); err != nil {
		return registerMessages[field][tag]
	}
	return ""
}

func fieldErrors(err error, messages map[string]map[string]string) map[string]string {
	out := make(map[string]string)
	if err == nil {
		return out
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["global"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		msg := messages[fe.Field()][fe.Tag()]
		if msg == "" {
			msg = fe.Error()
		}
		out[fe.Field()] = msg
	}
	return out
}
