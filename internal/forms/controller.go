package forms

import (
	"errors"
	"sync"

	"github.com/spec-kit/ticketflex/internal/domain"
	"github.com/spec-kit/ticketflex/pkg/util/errorutil"
)

// MsgUnexpected is shown when a submission fails for a reason that maps to no
// field.
const MsgUnexpected = "Something went wrong. Please try again."

// ErrSubmissionInFlight is returned by Submit while a previous submission
// has not completed.
var ErrSubmissionInFlight = errors.New("forms: submission already in flight")

// SignupSubmitter starts a signup submission.
type SignupSubmitter interface {
	SubmitSignup(values SignupValues) *Submission[domain.User]
}

// LoginSubmitter starts a login submission.
type LoginSubmitter interface {
	SubmitLogin(values LoginValues) *Submission[domain.Session]
}

// Controller owns one form's state. Dispatch applies reducer actions; Submit
// hands the current values to the backend and, when it completes, either
// records the errors or resets the form.
type Controller[V, T any] struct {
	mu     sync.Mutex
	state  FormState[V]
	reduce func(FormState[V], Action) FormState[V]
	submit func(V) *Submission[T]
}

// SignupController drives the signup form.
type SignupController = Controller[SignupValues, domain.User]

// LoginController drives the login form.
type LoginController = Controller[LoginValues, domain.Session]

// NewSignupController binds a signup form to s.
func NewSignupController(s SignupSubmitter) *SignupController {
	return &SignupController{
		state:  SignupState{Errors: FieldErrors{}},
		reduce: ReduceSignup,
		submit: s.SubmitSignup,
	}
}

// NewLoginController binds a login form to s.
func NewLoginController(s LoginSubmitter) *LoginController {
	return &LoginController{
		state:  LoginState{Errors: FieldErrors{}},
		reduce: ReduceLogin,
		submit: s.SubmitLogin,
	}
}

// State returns a copy of the form state.
func (c *Controller[V, T]) State() FormState[V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshot(c.state)
}

// Dispatch applies action and returns the resulting state.
func (c *Controller[V, T]) Dispatch(action Action) FormState[V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = c.reduce(c.state, action)
	return snapshot(c.state)
}

// Submit clears previous errors, marks the form as submitting and starts the
// backend submission. The returned handle completes after the form state
// reflects the outcome.
func (c *Controller[V, T]) Submit() (*Submission[T], error) {
	c.mu.Lock()
	if c.state.Submitting {
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	c.state = c.reduce(c.state, SetErrors{})
	c.state = c.reduce(c.state, SetSubmitting{Submitting: true})
	values := c.state.Values
	c.mu.Unlock()

	inner := c.submit(values)
	outer := NewSubmission[T]()
	go func() {
		result, err := inner.Wait()

		c.mu.Lock()
		if err != nil {
			c.state = c.reduce(c.state, SetErrors{Errors: errorsFor(err)})
		} else {
			c.state = c.reduce(c.state, Reset{})
		}
		c.state = c.reduce(c.state, SetSubmitting{Submitting: false})
		c.mu.Unlock()

		outer.Complete(result, err)
	}()
	return outer, nil
}

func errorsFor(err error) FieldErrors {
	fields := errorutil.FieldErrors(err)
	if len(fields) == 0 {
		return FieldErrors{FieldGeneral: MsgUnexpected}
	}
	return FieldErrors(fields)
}

func snapshot[V any](state FormState[V]) FormState[V] {
	state.Errors = copyErrors(state.Errors)
	return state
}
