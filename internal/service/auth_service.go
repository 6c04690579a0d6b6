package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketflex/internal/auth"
	"github.com/spec-kit/ticketflex/internal/clock"
	"github.com/spec-kit/ticketflex/internal/domain"
	"github.com/spec-kit/ticketflex/internal/events"
	"github.com/spec-kit/ticketflex/internal/forms"
	"github.com/spec-kit/ticketflex/internal/observability"
	"github.com/spec-kit/ticketflex/internal/repository"
	"github.com/spec-kit/ticketflex/pkg/util/errorutil"
)

const (
	flowSignup = "signup"
	flowLogin  = "login"
)

// AuthService coordinates the signup, login and logout flows against the
// users and session entries.
type AuthService struct {
	mu         sync.Mutex
	users      repository.UserRepository
	sessions   repository.SessionRepository
	hasher     auth.PasswordHasher
	minter     auth.TokenMinter
	clock      clock.Clock
	delay      time.Duration
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	SessionRepo repository.SessionRepository
	Hasher      auth.PasswordHasher
	Minter      auth.TokenMinter
	Clock       clock.Clock
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	// SubmitDelay is waited between validation and the store operations.
	SubmitDelay time.Duration
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	hasher := deps.Hasher
	if hasher == nil {
		hasher = auth.PlainHasher{}
	}
	minter := deps.Minter
	if minter == nil {
		minter = auth.NewOpaqueMinter(clk)
	}
	return &AuthService{
		users:      deps.UserRepo,
		sessions:   deps.SessionRepo,
		hasher:     hasher,
		minter:     minter,
		clock:      clk,
		delay:      deps.SubmitDelay,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		metrics:    deps.Metrics,
	}
}

// SubmitSignup validates values and, when they pass, registers the account
// after the submit delay. Invalid input completes the submission at once
// with a VALIDATION_FAILED error carrying every failing field.
func (s *AuthService) SubmitSignup(values forms.SignupValues) *forms.Submission[domain.User] {
	if errs := forms.ValidateSignup(values); len(errs) > 0 {
		err := errorutil.NewFieldErrors(errs)
		s.metrics.RecordAuthSubmission(flowSignup, outcomeOf(err))
		return forms.Completed(domain.User{}, err)
	}

	sub := forms.NewSubmission[domain.User]()
	wait := s.clock.After(s.delay)
	go func() {
		<-wait
		user, err := s.register(context.Background(), values)
		s.metrics.RecordAuthSubmission(flowSignup, outcomeOf(err))
		sub.Complete(user, err)
	}()
	return sub
}

// SubmitLogin validates values and, when they pass, checks the credentials
// and stores a new session after the submit delay.
func (s *AuthService) SubmitLogin(values forms.LoginValues) *forms.Submission[domain.Session] {
	if errs := forms.ValidateLogin(values); len(errs) > 0 {
		err := errorutil.NewFieldErrors(errs)
		s.metrics.RecordAuthSubmission(flowLogin, outcomeOf(err))
		return forms.Completed(domain.Session{}, err)
	}

	sub := forms.NewSubmission[domain.Session]()
	wait := s.clock.After(s.delay)
	go func() {
		<-wait
		session, err := s.authenticate(context.Background(), values)
		s.metrics.RecordAuthSubmission(flowLogin, outcomeOf(err))
		sub.Complete(session, err)
	}()
	return sub
}

// Signup runs SubmitSignup and waits for the outcome.
func (s *AuthService) Signup(values forms.SignupValues) (domain.User, error) {
	return s.SubmitSignup(values).Wait()
}

// Login runs SubmitLogin and waits for the outcome.
func (s *AuthService) Login(values forms.LoginValues) (domain.Session, error) {
	return s.SubmitLogin(values).Wait()
}

// Logout removes the stored session. Logging out without a session is not
// an error.
func (s *AuthService) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.sessions.Get(ctx)
	if err != nil && !errors.Is(err, repository.ErrNotFound) && !errors.Is(err, repository.ErrCorruptEntry) {
		return errorutil.NewInternalError(err)
	}
	if err := s.sessions.Delete(ctx); err != nil {
		return errorutil.NewInternalError(err)
	}
	if current != nil {
		s.publish(ctx, events.New(events.EventSessionEnded, current.Email, s.clock.Now(), events.SessionPayload{Email: current.Email}))
	}
	return nil
}

// CurrentSession returns the stored session. A corrupt entry is removed and
// reported as UNAUTHORIZED, the same as a missing one.
func (s *AuthService) CurrentSession(ctx context.Context) (*domain.Session, error) {
	session, err := s.sessions.Get(ctx)
	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, repository.ErrNotFound):
		return nil, errorutil.NewUnauthorized("not logged in")
	case errors.Is(err, repository.ErrCorruptEntry):
		s.logger.Warn("removing corrupt session entry", zap.Error(err))
		if err := s.sessions.Delete(ctx); err != nil {
			return nil, errorutil.NewInternalError(err)
		}
		return nil, errorutil.NewUnauthorized("not logged in")
	default:
		return nil, errorutil.NewInternalError(err)
	}
}

func (s *AuthService) register(ctx context.Context, values forms.SignupValues) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.users.GetByEmail(ctx, values.Email); err == nil {
		return domain.User{}, errorutil.NewConflict(forms.FieldEmail, forms.MsgUserExists)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, errorutil.NewInternalError(err)
	}

	stored, err := s.hasher.Hash(values.Password)
	if err != nil {
		return domain.User{}, errorutil.NewInternalError(err)
	}
	user := domain.User{
		FullName: values.FullName,
		Email:    values.Email,
		Password: stored,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, errorutil.NewInternalError(err)
	}

	s.logger.Info("user registered", zap.String("email", user.Email))
	s.publish(ctx, events.New(events.EventUserRegistered, user.Email, s.clock.Now(), events.UserRegisteredPayload{
		FullName: user.FullName,
		Email:    user.Email,
	}))
	return user, nil
}

// authenticate looks the account up by the email exactly as typed. Unknown
// email and wrong password fail identically.
func (s *AuthService) authenticate(ctx context.Context, values forms.LoginValues) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.users.GetByEmail(ctx, values.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Session{}, errorutil.NewInvalidCredentials(forms.MsgBadCredentials)
		}
		return domain.Session{}, errorutil.NewInternalError(err)
	}
	if !s.hasher.Matches(user.Password, values.Password) {
		return domain.Session{}, errorutil.NewInvalidCredentials(forms.MsgBadCredentials)
	}

	token, err := s.minter.Mint(user.Email)
	if err != nil {
		return domain.Session{}, errorutil.NewInternalError(err)
	}
	session := domain.Session{Email: user.Email, Token: token}
	if err := s.sessions.Save(ctx, session); err != nil {
		return domain.Session{}, errorutil.NewInternalError(err)
	}

	s.logger.Info("session started", zap.String("email", session.Email))
	s.publish(ctx, events.New(events.EventSessionStarted, session.Email, s.clock.Now(), events.SessionPayload{Email: session.Email}))
	return session, nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	switch errorutil.ToDomainError(err).Code {
	case errorutil.CodeValidationFailed:
		return "invalid"
	case errorutil.CodeConflict:
		return "conflict"
	case errorutil.CodeInvalidCredentials:
		return "rejected"
	default:
		return "error"
	}
}
