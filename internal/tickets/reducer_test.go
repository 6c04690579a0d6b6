package tickets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticketflex/internal/domain"
)

func ticket(id int64, status domain.TicketStatus) domain.Ticket {
	return domain.Ticket{
		ID:        id,
		Title:     "ticket",
		Priority:  domain.TicketPriorityLow,
		Status:    status,
		CreatedAt: "1/1/2025, 9:00:00 AM",
	}
}

func ids(state State) []int64 {
	out := make([]int64, 0, len(state.Tickets))
	for _, t := range state.Tickets {
		out = append(out, t.ID)
	}
	return out
}

type unknownAction struct{}

func (unknownAction) Name() string { return "unknown" }
func (unknownAction) isAction()    {}

func TestReduceAddOrdersNewestFirst(t *testing.T) {
	state := Reduce(State{}, AddTicket{Ticket: ticket(1, domain.TicketStatusOpen)})
	state = Reduce(state, AddTicket{Ticket: ticket(2, domain.TicketStatusOpen)})

	assert.Equal(t, []int64{2, 1}, ids(state))

	state = Reduce(state, AddTicket{Ticket: ticket(0, domain.TicketStatusOpen)})
	assert.Equal(t, []int64{2, 1, 0}, ids(state))
}

func TestReduceAddAcceptsDuplicateIDs(t *testing.T) {
	state := Reduce(State{}, AddTicket{Ticket: ticket(5, domain.TicketStatusOpen)})
	state = Reduce(state, AddTicket{Ticket: ticket(5, domain.TicketStatusClosed)})

	assert.Len(t, state.Tickets, 2)
}

func TestReduceUpdate(t *testing.T) {
	state := State{Tickets: []domain.Ticket{ticket(3, domain.TicketStatusOpen), ticket(1, domain.TicketStatusOpen)}}

	updated := ticket(1, domain.TicketStatusClosed)
	updated.Title = "renamed"
	next := Reduce(state, UpdateTicket{Ticket: updated})

	assert.Equal(t, []int64{3, 1}, ids(next))
	got, ok := next.Find(1)
	require.True(t, ok)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, domain.TicketStatusClosed, got.Status)

	// input state is not mutated
	original, _ := state.Find(1)
	assert.Equal(t, "ticket", original.Title)
}

func TestReduceUpdateUnknownIDIsNoOp(t *testing.T) {
	state := State{Tickets: []domain.Ticket{ticket(3, domain.TicketStatusOpen), ticket(1, domain.TicketStatusInProgress)}}

	next := Reduce(state, UpdateTicket{Ticket: ticket(99, domain.TicketStatusClosed)})

	assert.ElementsMatch(t, state.Tickets, next.Tickets)
}

func TestReduceDeleteIsIdempotent(t *testing.T) {
	state := State{Tickets: []domain.Ticket{ticket(3, domain.TicketStatusOpen), ticket(1, domain.TicketStatusOpen)}}

	once := Reduce(state, DeleteTicket{ID: 3})
	twice := Reduce(once, DeleteTicket{ID: 3})

	assert.Equal(t, []int64{1}, ids(once))
	assert.Equal(t, once, twice)
	assert.Len(t, state.Tickets, 2)
}

func TestReduceUnknownActionReturnsStateUnchanged(t *testing.T) {
	state := State{Tickets: []domain.Ticket{ticket(1, domain.TicketStatusOpen)}}

	assert.Equal(t, state, Reduce(state, unknownAction{}))
	assert.Equal(t, state, Reduce(state, nil))
}

func TestStateHelpers(t *testing.T) {
	state := State{Tickets: []domain.Ticket{ticket(7, domain.TicketStatusOpen), ticket(4, domain.TicketStatusOpen)}}

	assert.Equal(t, int64(7), state.MaxID())
	assert.Equal(t, int64(0), State{}.MaxID())

	_, ok := state.Find(5)
	assert.False(t, ok)
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		tickets []domain.Ticket
		want    Stats
	}{
		{"empty", nil, Stats{}},
		{
			name: "one of each",
			tickets: []domain.Ticket{
				ticket(1, domain.TicketStatusOpen),
				ticket(2, domain.TicketStatusInProgress),
				ticket(3, domain.TicketStatusClosed),
			},
			want: Stats{Open: 1, InProgress: 1, Closed: 1, Total: 3},
		},
		{
			name: "unknown status counts toward total only",
			tickets: []domain.Ticket{
				ticket(1, domain.TicketStatusOpen),
				ticket(2, "Archived"),
			},
			want: Stats{Open: 1, Total: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.tickets))
		})
	}
}
