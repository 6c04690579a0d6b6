package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/ticketflex/internal/domain"
	"github.com/spec-kit/ticketflex/internal/persistence"
)

// TicketRepository mirrors the ticket collection under KeyTickets.
type TicketRepository interface {
	Load(ctx context.Context) ([]domain.Ticket, error)
	Save(ctx context.Context, tickets []domain.Ticket) error
	Clear(ctx context.Context) error
}

type ticketRepository struct {
	kv persistence.KV
}

// NewTicketRepository returns a KV-backed implementation.
func NewTicketRepository(kv persistence.KV) TicketRepository {
	return &ticketRepository{kv: kv}
}

// Load returns an empty, non-nil slice when nothing is stored.
func (r *ticketRepository) Load(ctx context.Context) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	if err := loadJSON(ctx, r.kv, KeyTickets, &tickets); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return []domain.Ticket{}, nil
		}
		return nil, err
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return tickets, nil
}

func (r *ticketRepository) Save(ctx context.Context, tickets []domain.Ticket) error {
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return saveJSON(ctx, r.kv, KeyTickets, tickets)
}

func (r *ticketRepository) Clear(ctx context.Context) error {
	return removeKey(ctx, r.kv, KeyTickets)
}
