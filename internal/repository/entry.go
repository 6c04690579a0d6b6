package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spec-kit/ticketflex/internal/persistence"
)

// Keys under which collections are mirrored.
const (
	KeyTickets = "tickets"
	KeyUsers   = "users"
	KeySession = "ticketapp_session"
)

var (
	// ErrNotFound reports an absent record.
	ErrNotFound = errors.New("record not found")
	// ErrCorruptEntry reports a stored value that does not decode. Callers
	// treat it as absent and remove the entry.
	ErrCorruptEntry = errors.New("corrupt stored entry")
)

// loadJSON decodes the value under key into dest. It returns
// persistence.ErrNotFound untouched so callers can pick their own default.
func loadJSON(ctx context.Context, kv persistence.KV, key string, dest any) error {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return err
		}
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptEntry, key, err)
	}
	return nil
}

func saveJSON(ctx context.Context, kv persistence.KV, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func removeKey(ctx context.Context, kv persistence.KV, key string) error {
	if err := kv.Remove(ctx, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}
