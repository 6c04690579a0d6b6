package tickets

import "github.com/spec-kit/ticketflex/internal/domain"

// Stats counts tickets per status. Tickets with any other status only count
// toward Total.
type Stats struct {
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Closed     int `json:"closed"`
	Total      int `json:"total"`
}

// Summarize computes Stats from scratch; there is no incremental form.
func Summarize(tickets []domain.Ticket) Stats {
	stats := Stats{Total: len(tickets)}
	for _, t := range tickets {
		switch t.Status {
		case domain.TicketStatusOpen:
			stats.Open++
		case domain.TicketStatusInProgress:
			stats.InProgress++
		case domain.TicketStatusClosed:
			stats.Closed++
		}
	}
	return stats
}
