package tickets

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketflex/internal/domain"
	"github.com/spec-kit/ticketflex/internal/observability"
	"github.com/spec-kit/ticketflex/internal/repository"
)

// Store owns the authoritative ticket collection. Every dispatched action is
// reduced and then mirrored to the repository; the repository never feeds
// back into the Store except through Reload.
type Store struct {
	mu      sync.Mutex
	state   State
	repo    repository.TicketRepository
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewStore seeds the collection from repo. A corrupt mirror is logged,
// cleared and treated as an empty collection.
func NewStore(ctx context.Context, repo repository.TicketRepository, logger *zap.Logger, metrics *observability.Metrics) (*Store, error) {
	s := &Store{repo: repo, logger: logger, metrics: metrics}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the in-memory collection with the persisted mirror.
func (s *Store) Reload(ctx context.Context) error {
	loaded, err := s.repo.Load(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrCorruptEntry) {
			return fmt.Errorf("load tickets: %w", err)
		}
		s.logger.Warn("discarding corrupt ticket collection", zap.Error(err))
		if err := s.repo.Clear(ctx); err != nil {
			return fmt.Errorf("clear corrupt tickets: %w", err)
		}
		loaded = []domain.Ticket{}
	}
	sortNewestFirst(loaded)

	s.mu.Lock()
	s.state = State{Tickets: loaded}
	s.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{Tickets: slices.Clone(s.state.Tickets)}
}

// Dispatch reduces action against the current state and persists the
// result. On a persistence failure the in-memory state is left unchanged.
func (s *Store) Dispatch(ctx context.Context, action Action) (State, error) {
	next, _, err := s.Apply(ctx, func(State) (Action, error) { return action, nil })
	return next, err
}

// Apply builds an action from the current state and dispatches it while
// holding the store lock, so reads that decide the action (id assignment,
// field carry-over) cannot interleave with other mutations. A build error
// aborts without touching state.
func (s *Store) Apply(ctx context.Context, build func(State) (Action, error)) (State, Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := State{Tickets: slices.Clone(s.state.Tickets)}
	action, err := build(current)
	if err != nil {
		return current, nil, err
	}
	if action == nil {
		return current, nil, nil
	}

	next := Reduce(current, action)
	if err := s.repo.Save(ctx, next.Tickets); err != nil {
		return current, action, fmt.Errorf("persist tickets: %w", err)
	}
	s.state = next
	s.metrics.RecordTicketAction(action.Name())
	s.logger.Debug("ticket action applied",
		zap.String("action", action.Name()),
		zap.Int("count", len(next.Tickets)))

	return State{Tickets: slices.Clone(next.Tickets)}, action, nil
}
