package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketflex/internal/clock"
	"github.com/spec-kit/ticketflex/internal/config"
	"github.com/spec-kit/ticketflex/internal/domain"
	"github.com/spec-kit/ticketflex/internal/persistence"
	"github.com/spec-kit/ticketflex/internal/repository"
	"github.com/spec-kit/ticketflex/pkg/util/errorutil"
)

var epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestOpaqueMinter(t *testing.T) {
	m := NewOpaqueMinter(clock.Fake(epoch))
	token, err := m.Mint("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "fake_token_1748779200000", token)
}

func TestJWTMinterRoundTrip(t *testing.T) {
	clk := clock.Fake(epoch)
	m := NewJWTMinter("test-secret", 5, clk)

	token, err := m.Mint("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(token, "."))

	subject, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", subject)

	clk.Advance(6 * time.Minute)
	_, err = m.Parse(token)
	assert.Error(t, err)

	other := NewJWTMinter("other-secret", 5, clock.Fake(epoch))
	_, err = other.Parse(token)
	assert.Error(t, err)
}

func TestNewTokenMinter(t *testing.T) {
	clk := clock.Fake(epoch)

	m, err := NewTokenMinter(config.AuthConfig{TokenMode: config.TokenModeOpaque}, clk)
	require.NoError(t, err)
	assert.IsType(t, &OpaqueMinter{}, m)

	m, err = NewTokenMinter(config.AuthConfig{TokenMode: config.TokenModeJWT, JWTSecret: "s"}, clk)
	require.NoError(t, err)
	assert.IsType(t, &JWTMinter{}, m)

	_, err = NewTokenMinter(config.AuthConfig{TokenMode: "paseto"}, clk)
	assert.Error(t, err)
}

func TestPlainHasherKeepsPasswordVerbatim(t *testing.T) {
	h := NewPasswordHasher(config.AuthConfig{})
	stored, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.Equal(t, "secret1", stored)
	assert.True(t, h.Matches(stored, "secret1"))
	assert.False(t, h.Matches(stored, "Secret1"))
}

func TestBcryptHasher(t *testing.T) {
	h := NewPasswordHasher(config.AuthConfig{HashPasswords: true, BcryptCost: 4})
	stored, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored)
	assert.True(t, h.Matches(stored, "secret1"))
	assert.False(t, h.Matches(stored, "secret2"))
}

func newGuardApp(kv persistence.KV) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := errorutil.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"error": fiber.Map{
				"code":    de.Code,
				"details": de.Details,
			}})
		},
	})
	guard := NewSessionGuard(repository.NewSessionRepository(kv), zap.NewNop())
	app.Get("/private", guard.Handle, func(c *fiber.Ctx) error {
		session, ok := SessionFromContext(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.SendString(session.Email)
	})
	return app
}

type errorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func TestSessionGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("no session", func(t *testing.T) {
		app := newGuardApp(persistence.NewMemoryKV())
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/private", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var body errorBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, errorutil.CodeUnauthorized, body.Error.Code)
		assert.Equal(t, LoginPath, body.Error.Details["redirect"])
	})

	t.Run("valid session", func(t *testing.T) {
		kv := persistence.NewMemoryKV()
		require.NoError(t, repository.NewSessionRepository(kv).Save(ctx, domain.Session{Email: "a@x.com", Token: "fake_token_1"}))

		resp, err := newGuardApp(kv).Test(httptest.NewRequest(http.MethodGet, "/private", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("corrupt session is removed", func(t *testing.T) {
		kv := persistence.NewMemoryKV()
		require.NoError(t, kv.Set(ctx, repository.KeySession, "{{{"))

		resp, err := newGuardApp(kv).Test(httptest.NewRequest(http.MethodGet, "/private", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		_, err = kv.Get(ctx, repository.KeySession)
		assert.ErrorIs(t, err, persistence.ErrNotFound)
	})
}
