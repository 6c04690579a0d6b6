package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/ticketflex/internal/domain"
	"github.com/spec-kit/ticketflex/internal/persistence"
)

// SessionRepository holds the single session entry under KeySession.
type SessionRepository interface {
	Get(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
	Delete(ctx context.Context) error
}

type sessionRepository struct {
	kv persistence.KV
}

// NewSessionRepository returns a KV-backed implementation.
func NewSessionRepository(kv persistence.KV) SessionRepository {
	return &sessionRepository{kv: kv}
}

// Get returns ErrNotFound when no session is stored and ErrCorruptEntry when
// the stored value does not decode to a session with an email and token.
func (r *sessionRepository) Get(ctx context.Context) (*domain.Session, error) {
	var session domain.Session
	if err := loadJSON(ctx, r.kv, KeySession, &session); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !session.Valid() {
		return nil, fmt.Errorf("%w: %s: missing email or token", ErrCorruptEntry, KeySession)
	}
	return &session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session domain.Session) error {
	return saveJSON(ctx, r.kv, KeySession, session)
}

func (r *sessionRepository) Delete(ctx context.Context) error {
	return removeKey(ctx, r.kv, KeySession)
}
