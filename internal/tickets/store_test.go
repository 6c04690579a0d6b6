package tickets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketflex/internal/domain"
	"github.com/spec-kit/ticketflex/internal/observability"
	"github.com/spec-kit/ticketflex/internal/persistence"
	"github.com/spec-kit/ticketflex/internal/repository"
)

type failingTicketRepo struct {
	repository.TicketRepository
	saveErr error
}

func (f failingTicketRepo) Save(context.Context, []domain.Ticket) error {
	return f.saveErr
}

func newTestStore(t *testing.T, kv persistence.KV) *Store {
	t.Helper()
	store, err := NewStore(context.Background(), repository.NewTicketRepository(kv), zap.NewNop(), observability.NewMetrics())
	require.NoError(t, err)
	return store
}

func TestStorePersistsEveryMutation(t *testing.T) {
	ctx := context.Background()
	kv := persistence.NewMemoryKV()
	store := newTestStore(t, kv)
	repo := repository.NewTicketRepository(kv)

	_, err := store.Dispatch(ctx, AddTicket{Ticket: ticket(1, domain.TicketStatusOpen)})
	require.NoError(t, err)
	_, err = store.Dispatch(ctx, AddTicket{Ticket: ticket(2, domain.TicketStatusClosed)})
	require.NoError(t, err)

	persisted, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.Snapshot().Tickets, persisted)

	_, err = store.Dispatch(ctx, DeleteTicket{ID: 1})
	require.NoError(t, err)
	persisted, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Ticket{ticket(2, domain.TicketStatusClosed)}, persisted)
}

func TestStoreSurvivesReload(t *testing.T) {
	ctx := context.Background()
	kv := persistence.NewMemoryKV()
	store := newTestStore(t, kv)

	for _, tk := range []domain.Ticket{
		ticket(10, domain.TicketStatusOpen),
		ticket(30, domain.TicketStatusInProgress),
		ticket(20, domain.TicketStatusClosed),
	} {
		_, err := store.Dispatch(ctx, AddTicket{Ticket: tk})
		require.NoError(t, err)
	}

	// a fresh store over the same KV simulates a page reload
	reloaded := newTestStore(t, kv)
	assert.Equal(t, store.Snapshot(), reloaded.Snapshot())
	assert.Equal(t, []int64{30, 20, 10}, ids(reloaded.Snapshot()))
}

func TestStoreSortsUnorderedMirror(t *testing.T) {
	ctx := context.Background()
	kv := persistence.NewMemoryKV()
	require.NoError(t, repository.NewTicketRepository(kv).Save(ctx, []domain.Ticket{
		ticket(1, domain.TicketStatusOpen),
		ticket(3, domain.TicketStatusOpen),
	}))

	store := newTestStore(t, kv)
	assert.Equal(t, []int64{3, 1}, ids(store.Snapshot()))
}

func TestStoreDiscardsCorruptMirror(t *testing.T) {
	ctx := context.Background()
	kv := persistence.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, repository.KeyTickets, "[{broken"))

	store := newTestStore(t, kv)
	assert.Empty(t, store.Snapshot().Tickets)

	_, err := kv.Get(ctx, repository.KeyTickets)
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestStoreKeepsStateWhenPersistFails(t *testing.T) {
	ctx := context.Background()
	kv := persistence.NewMemoryKV()
	repo := failingTicketRepo{
		TicketRepository: repository.NewTicketRepository(kv),
		saveErr:          errors.New("disk full"),
	}
	store, err := NewStore(ctx, repo, zap.NewNop(), nil)
	require.NoError(t, err)

	_, err = store.Dispatch(ctx, AddTicket{Ticket: ticket(1, domain.TicketStatusOpen)})
	assert.Error(t, err)
	assert.Empty(t, store.Snapshot().Tickets)
}

func TestStoreApplyBuildErrorAborts(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, persistence.NewMemoryKV())
	buildErr := errors.New("rejected")

	_, action, err := store.Apply(ctx, func(State) (Action, error) { return nil, buildErr })
	assert.ErrorIs(t, err, buildErr)
	assert.Nil(t, action)
	assert.Empty(t, store.Snapshot().Tickets)
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, persistence.NewMemoryKV())
	_, err := store.Dispatch(ctx, AddTicket{Ticket: ticket(1, domain.TicketStatusOpen)})
	require.NoError(t, err)

	snap := store.Snapshot()
	snap.Tickets[0].Title = "mutated"

	got, ok := store.Snapshot().Find(1)
	require.True(t, ok)
	assert.Equal(t, "ticket", got.Title)
}
