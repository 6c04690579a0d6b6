package dto

import (
	"github.com/spec-kit/ticketflex/internal/domain"
	"github.com/spec-kit/ticketflex/internal/service"
)

// TicketRequest is the create and update payload.
type TicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.TicketStatus   `json:"status"`
}

// Input converts the payload for the ticket service.
func (r TicketRequest) Input() service.TicketInput {
	return service.TicketInput{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Status:      r.Status,
	}
}

// TicketResponse mirrors the stored ticket shape.
type TicketResponse struct {
	ID          int64                 `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.TicketStatus   `json:"status"`
	CreatedAt   string                `json:"createdAt"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
	}
}

// NewTicketList maps tickets, keeping their order.
func NewTicketList(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		items = append(items, NewTicketResponse(t))
	}
	return items
}
