package forms

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// User-facing messages.
const (
	MsgNameRequired      = "Name is required."
	MsgEmailRequired     = "Email is required."
	MsgEmailInvalid      = "Please enter a valid email address."
	MsgPasswordRequired  = "Password is required."
	MsgPasswordTooShort  = "Password must be at least 6 characters."
	MsgPasswordsMismatch = "Passwords do not match."
	MsgUserExists        = "A user with this email already exists. Please log in instead."
	MsgBadCredentials    = "Email or password is incorrect."
)

// emailPattern is deliberately loose: something@something.something, no
// whitespace, exactly one @ before the domain.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	validate *validator.Validate
	once     sync.Once
)

// messages is keyed by "<field>.<tag>".
var messages = map[string]string{
	FieldFullName + ".notblank":       MsgNameRequired,
	FieldEmail + ".notblank":          MsgEmailRequired,
	FieldEmail + ".simpleemail":       MsgEmailInvalid,
	FieldEmail + ".trimmedemail":      MsgEmailInvalid,
	FieldPassword + ".required":       MsgPasswordRequired,
	FieldPassword + ".min":            MsgPasswordTooShort,
	FieldConfirmPassword + ".eqfield": MsgPasswordsMismatch,
}

func getValidator() *validator.Validate {
	once.Do(initValidator)
	return validate
}

func initValidator() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = validate.RegisterValidation("simpleemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("trimmedemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
}

// ValidateSignup returns one message per failing field; every field is
// checked, not just the first failure.
func ValidateSignup(values SignupValues) FieldErrors {
	return collect(getValidator().Struct(values))
}

// ValidateLogin returns one message per failing field.
func ValidateLogin(values LoginValues) FieldErrors {
	return collect(getValidator().Struct(values))
}

func collect(err error) FieldErrors {
	out := FieldErrors{}
	if err == nil {
		return out
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		out[FieldGeneral] = err.Error()
		return out
	}
	for _, fe := range validationErrors {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fe.Error()
		}
		out[fe.Field()] = msg
	}
	return out
}
