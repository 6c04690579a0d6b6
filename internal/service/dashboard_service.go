package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketflex/internal/domain"
	"github.com/spec-kit/ticketflex/internal/repository"
	"github.com/spec-kit/ticketflex/internal/tickets"
	"github.com/spec-kit/ticketflex/pkg/util/errorutil"
)

// DefaultDisplayName greets a session whose account cannot be found.
const DefaultDisplayName = "User"

// Overview is what the dashboard shows.
type Overview struct {
	FullName string        `json:"fullName"`
	Email    string        `json:"email"`
	Stats    tickets.Stats `json:"stats"`
}

// DashboardService aggregates ticket counts for the dashboard.
type DashboardService struct {
	store  *tickets.Store
	users  repository.UserRepository
	logger *zap.Logger
}

// NewDashboardService constructs the service. Counts come from store, the
// same collection TicketService reads.
func NewDashboardService(store *tickets.Store, userRepo repository.UserRepository, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{store: store, users: userRepo, logger: logger}
}

// Overview counts the current tickets by status and greets the session's
// account by name.
func (s *DashboardService) Overview(ctx context.Context, session domain.Session) (*Overview, error) {
	name := DefaultDisplayName
	user, err := s.users.GetByEmail(ctx, session.Email)
	switch {
	case err == nil:
		if strings.TrimSpace(user.FullName) != "" {
			name = user.FullName
		}
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrCorruptEntry):
	default:
		return nil, errorutil.NewInternalError(err)
	}

	return &Overview{
		FullName: name,
		Email:    session.Email,
		Stats:    tickets.Summarize(s.store.Snapshot().Tickets),
	}, nil
}
