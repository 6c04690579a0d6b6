// Package forms models the signup and login forms as state plus pure
// reducers, validates their values and drives submissions through a
// controller.
package forms

// Field names, shared by values, errors and SetField actions.
const (
	FieldFullName        = "fullName"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	// FieldGeneral carries errors that belong to no single input.
	FieldGeneral = "general"
)

// FieldErrors maps a field name to its message. Empty means valid.
type FieldErrors map[string]string

// SignupValues are the signup form inputs.
type SignupValues struct {
	FullName        string `json:"fullName" validate:"notblank"`
	Email           string `json:"email" validate:"simpleemail"`
	Password        string `json:"password" validate:"min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
}

// LoginValues are the login form inputs.
type LoginValues struct {
	Email    string `json:"email" validate:"notblank,trimmedemail"`
	Password string `json:"password" validate:"required"`
}

// FormState is the state of one form.
type FormState[V any] struct {
	Values     V
	Errors     FieldErrors
	Submitting bool
}

// SignupState is the signup form state.
type SignupState = FormState[SignupValues]

// LoginState is the login form state.
type LoginState = FormState[LoginValues]

// Action is a form state transition: SetField, SetErrors, SetSubmitting or
// Reset.
type Action interface {
	isFormAction()
}

// SetField assigns Value to the named field.
type SetField struct {
	Field string
	Value string
}

// SetErrors replaces the error set.
type SetErrors struct {
	Errors FieldErrors
}

// SetSubmitting flags an in-flight submission.
type SetSubmitting struct {
	Submitting bool
}

// Reset clears values, errors and the submitting flag.
type Reset struct{}

func (SetField) isFormAction()      {}
func (SetErrors) isFormAction()     {}
func (SetSubmitting) isFormAction() {}
func (Reset) isFormAction()         {}

// ReduceSignup applies action to the signup form. Unknown fields and actions
// leave the state unchanged.
func ReduceSignup(state SignupState, action Action) SignupState {
	if a, ok := action.(SetField); ok {
		switch a.Field {
		case FieldFullName:
			state.Values.FullName = a.Value
		case FieldEmail:
			state.Values.Email = a.Value
		case FieldPassword:
			state.Values.Password = a.Value
		case FieldConfirmPassword:
			state.Values.ConfirmPassword = a.Value
		}
		return state
	}
	return reduceCommon(state, action)
}

// ReduceLogin applies action to the login form.
func ReduceLogin(state LoginState, action Action) LoginState {
	if a, ok := action.(SetField); ok {
		switch a.Field {
		case FieldEmail:
			state.Values.Email = a.Value
		case FieldPassword:
			state.Values.Password = a.Value
		}
		return state
	}
	return reduceCommon(state, action)
}

func reduceCommon[V any](state FormState[V], action Action) FormState[V] {
	switch a := action.(type) {
	case SetErrors:
		state.Errors = copyErrors(a.Errors)
	case SetSubmitting:
		state.Submitting = a.Submitting
	case Reset:
		return FormState[V]{Errors: FieldErrors{}}
	}
	return state
}

func copyErrors(in FieldErrors) FieldErrors {
	out := make(FieldErrors, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
