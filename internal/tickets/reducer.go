// Package tickets holds the ticket collection state, the pure reducer that
// transitions it, and the Store that persists each transition.
package tickets

import (
	"cmp"
	"slices"

	"github.com/spec-kit/ticketflex/internal/domain"
)

// State is the in-memory ticket collection, newest (highest id) first.
type State struct {
	Tickets []domain.Ticket
}

// Action is the closed set of ticket mutations: AddTicket, UpdateTicket and
// DeleteTicket.
type Action interface {
	// Name is a stable label for logs and metrics.
	Name() string
	isAction()
}

// AddTicket inserts Ticket. The caller supplies a unique id.
type AddTicket struct {
	Ticket domain.Ticket
}

// UpdateTicket replaces the entry whose id equals Ticket.ID.
type UpdateTicket struct {
	Ticket domain.Ticket
}

// DeleteTicket removes the entry with ID.
type DeleteTicket struct {
	ID int64
}

func (AddTicket) Name() string    { return "add" }
func (UpdateTicket) Name() string { return "update" }
func (DeleteTicket) Name() string { return "delete" }

func (AddTicket) isAction()    {}
func (UpdateTicket) isAction() {}
func (DeleteTicket) isAction() {}

// Reduce computes the state that follows action. It never mutates state and
// never fails: duplicate ids are accepted, and updates or deletes of unknown
// ids leave the collection as it was. Unrecognized actions, nil included,
// return state unchanged.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case AddTicket:
		next := make([]domain.Ticket, 0, len(state.Tickets)+1)
		next = append(next, state.Tickets...)
		next = append(next, a.Ticket)
		sortNewestFirst(next)
		return State{Tickets: next}

	case UpdateTicket:
		next := make([]domain.Ticket, len(state.Tickets))
		for i, t := range state.Tickets {
			if t.ID == a.Ticket.ID {
				next[i] = a.Ticket
				continue
			}
			next[i] = t
		}
		sortNewestFirst(next)
		return State{Tickets: next}

	case DeleteTicket:
		next := make([]domain.Ticket, 0, len(state.Tickets))
		for _, t := range state.Tickets {
			if t.ID != a.ID {
				next = append(next, t)
			}
		}
		return State{Tickets: next}

	default:
		return state
	}
}

// Find returns the ticket with id, if present.
func (s State) Find(id int64) (domain.Ticket, bool) {
	for _, t := range s.Tickets {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Ticket{}, false
}

// MaxID is the highest id in the collection, or 0 when empty.
func (s State) MaxID() int64 {
	var highest int64
	for _, t := range s.Tickets {
		if t.ID > highest {
			highest = t.ID
		}
	}
	return highest
}

func sortNewestFirst(tickets []domain.Ticket) {
	slices.SortStableFunc(tickets, func(a, b domain.Ticket) int {
		return cmp.Compare(b.ID, a.ID)
	})
}
