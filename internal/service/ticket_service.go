package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketflex/internal/clock"
	"github.com/spec-kit/ticketflex/internal/domain"
	"github.com/spec-kit/ticketflex/internal/events"
	"github.com/spec-kit/ticketflex/internal/tickets"
	"github.com/spec-kit/ticketflex/pkg/util/errorutil"
)

// MsgTitleRequired is reported when a ticket has no title.
const MsgTitleRequired = "Please provide a title."

// TicketService validates ticket input and turns it into store actions.
type TicketService struct {
	store      *tickets.Store
	clock      clock.Clock
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles requirements for the ticket service.
type TicketDependencies struct {
	Store      *tickets.Store
	Clock      clock.Clock
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// TicketInput describes the editable ticket fields. Empty priority and
// status fall back to Low and Open.
type TicketInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Status      domain.TicketStatus
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		store:      deps.Store,
		clock:      clk,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// List returns the tickets newest first.
func (s *TicketService) List(ctx context.Context) []domain.Ticket {
	return s.store.Snapshot().Tickets
}

// Get returns one ticket or NOT_FOUND.
func (s *TicketService) Get(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, ok := s.store.Snapshot().Find(id)
	if !ok {
		return nil, errorutil.NewNotFound("ticket", map[string]any{"id": id})
	}
	return &ticket, nil
}

// Create adds a ticket. Its id is the current unix millisecond time, bumped
// past the newest existing id when the clock has not moved beyond it.
func (s *TicketService) Create(ctx context.Context, actor string, input TicketInput) (*domain.Ticket, error) {
	input, err := normalizeTicketInput(input)
	if err != nil {
		return nil, err
	}

	_, action, err := s.store.Apply(ctx, func(state tickets.State) (tickets.Action, error) {
		now := s.clock.Now()
		id := now.UnixMilli()
		if highest := state.MaxID(); id <= highest {
			id = highest + 1
		}
		return tickets.AddTicket{Ticket: domain.Ticket{
			ID:          id,
			Title:       input.Title,
			Description: input.Description,
			Priority:    input.Priority,
			Status:      input.Status,
			CreatedAt:   domain.FormatCreatedAt(now),
		}}, nil
	})
	if err != nil {
		return nil, errorutil.NewInternalError(err)
	}

	created := action.(tickets.AddTicket).Ticket
	s.logger.Info("ticket created", zap.Int64("ticket_id", created.ID))
	s.publish(ctx, events.New(events.EventTicketCreated, actor, s.clock.Now(), events.TicketPayload{
		TicketID: created.ID,
		Title:    created.Title,
		Priority: created.Priority,
		Status:   created.Status,
	}))
	return &created, nil
}

// Update replaces the editable fields of an existing ticket. The id and
// createdAt are kept.
func (s *TicketService) Update(ctx context.Context, actor string, id int64, input TicketInput) (*domain.Ticket, error) {
	input, err := normalizeTicketInput(input)
	if err != nil {
		return nil, err
	}

	var previous domain.Ticket
	_, action, err := s.store.Apply(ctx, func(state tickets.State) (tickets.Action, error) {
		existing, ok := state.Find(id)
		if !ok {
			return nil, errorutil.NewNotFound("ticket", map[string]any{"id": id})
		}
		previous = existing
		return tickets.UpdateTicket{Ticket: domain.Ticket{
			ID:          id,
			Title:       input.Title,
			Description: input.Description,
			Priority:    input.Priority,
			Status:      input.Status,
			CreatedAt:   existing.CreatedAt,
		}}, nil
	})
	if err != nil {
		if errorutil.HasCode(err, errorutil.CodeNotFound) {
			return nil, err
		}
		return nil, errorutil.NewInternalError(err)
	}

	updated := action.(tickets.UpdateTicket).Ticket
	payload := events.TicketPayload{
		TicketID: updated.ID,
		Title:    updated.Title,
		Priority: updated.Priority,
		Status:   updated.Status,
	}
	if previous.Status != updated.Status {
		payload.PreviousStatus = previous.Status
	}
	s.logger.Info("ticket updated", zap.Int64("ticket_id", updated.ID))
	s.publish(ctx, events.New(events.EventTicketUpdated, actor, s.clock.Now(), payload))
	return &updated, nil
}

// Delete removes a ticket. Deleting an unknown id succeeds without effect
// on the collection.
func (s *TicketService) Delete(ctx context.Context, actor string, id int64) error {
	existed := false
	_, _, err := s.store.Apply(ctx, func(state tickets.State) (tickets.Action, error) {
		_, existed = state.Find(id)
		return tickets.DeleteTicket{ID: id}, nil
	})
	if err != nil {
		return errorutil.NewInternalError(err)
	}

	s.logger.Info("ticket deleted", zap.Int64("ticket_id", id), zap.Bool("existed", existed))
	s.publish(ctx, events.New(events.EventTicketDeleted, actor, s.clock.Now(), events.TicketDeletedPayload{
		TicketID: id,
		Existed:  existed,
	}))
	return nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func normalizeTicketInput(input TicketInput) (TicketInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Priority == "" {
		input.Priority = domain.TicketPriorityLow
	}
	if input.Status == "" {
		input.Status = domain.TicketStatusOpen
	}

	fields := map[string]string{}
	if input.Title == "" {
		fields["title"] = MsgTitleRequired
	}
	if !input.Priority.Valid() {
		fields["priority"] = "Priority must be Low, Medium or High."
	}
	if !input.Status.Valid() {
		fields["status"] = "Status must be Open, In Progress or Closed."
	}
	if len(fields) > 0 {
		return input, errorutil.NewFieldErrors(fields)
	}
	return input, nil
}
