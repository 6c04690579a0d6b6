package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketflex/internal/events"
)

// ActivityService records domain events in the structured log.
type ActivityService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewActivityService creates the service.
func NewActivityService(dispatcher events.Dispatcher, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(a.handleTicketEvent,
		events.EventTicketCreated, events.EventTicketUpdated, events.EventTicketDeleted)
	a.dispatcher.Subscribe(a.handleAccountEvent,
		events.EventUserRegistered, events.EventSessionStarted, events.EventSessionEnded)
}

func (a *ActivityService) handleTicketEvent(ctx context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("actor", event.Actor),
		zap.Any("payload", event.Payload),
	}
	if p, ok := event.Payload.(events.TicketPayload); ok && p.PreviousStatus != "" {
		fields = append(fields, zap.String("status_change", string(p.PreviousStatus)+" -> "+string(p.Status)))
	}
	a.logger.Info(string(event.Type), fields...)
	return nil
}

func (a *ActivityService) handleAccountEvent(ctx context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("actor", event.Actor),
		zap.Time("at", event.Timestamp))
	return nil
}
