package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticketflex/internal/app"
	"github.com/spec-kit/ticketflex/internal/clock"
	"github.com/spec-kit/ticketflex/internal/config"
	"github.com/spec-kit/ticketflex/internal/domain"
	"github.com/spec-kit/ticketflex/internal/persistence"
	"github.com/spec-kit/ticketflex/pkg/util/errorutil"
)

// run executes one ticketctl invocation against a shared in-memory store.
func run(t *testing.T, kv persistence.KV, args ...string) (string, error) {
	t.Helper()
	return runWithAuth(t, kv, config.AuthConfig{TokenMode: config.TokenModeOpaque}, args...)
}

func runWithAuth(t *testing.T, kv persistence.KV, authCfg config.AuthConfig, args ...string) (string, error) {
	t.Helper()
	build := func(ctx context.Context) (*app.Container, error) {
		cfg := &config.Config{
			Store: config.StoreConfig{Driver: config.StoreDriverMemory},
			Auth:  authCfg,
		}
		return app.Build(ctx, cfg, app.Options{
			Clock: clock.Fake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
			Store: kv,
		})
	}
	var out bytes.Buffer
	root := newRootCmd(&out, build)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLIFlow(t *testing.T) {
	kv := persistence.NewMemoryKV()

	out, err := run(t, kv, "signup", "--name", "Ann", "--email", "a@x.com", "--password", "secret1", "--confirm", "secret1")
	require.NoError(t, err)
	assert.Contains(t, out, "Signup successful")

	_, err = run(t, kv, "tickets", "list")
	assert.ErrorIs(t, err, errLoginRequired)

	out, err = run(t, kv, "login", "--email", "a@x.com", "--password", "secret1")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as a@x.com")

	_, err = run(t, kv, "tickets", "add", "--title", "Printer", "--status", "In Progress")
	require.NoError(t, err)

	out, err = run(t, kv, "tickets", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Printer")
	assert.Contains(t, out, "In Progress")

	out, err = run(t, kv, "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome, Ann")
	assert.Regexp(t, `In Progress\s+1`, out)
	assert.Regexp(t, `Total\s+1`, out)

	_, err = run(t, kv, "logout")
	require.NoError(t, err)
	_, err = run(t, kv, "dashboard")
	assert.ErrorIs(t, err, errLoginRequired)
}

func TestCLIPrintsFieldErrors(t *testing.T) {
	kv := persistence.NewMemoryKV()

	out, err := run(t, kv, "signup", "--name", "Ann", "--email", "bad", "--password", "123", "--confirm", "123")
	require.Error(t, err)
	assert.Contains(t, out, "email: Please enter a valid email address.")
	assert.Contains(t, out, "password: Password must be at least 6 characters.")

	out, err = run(t, kv, "login", "--email", "a@x.com", "--password", "secret1")
	require.Error(t, err)
	assert.Contains(t, out, "general: Email or password is incorrect.")
}

func TestCLIRejectsBlankTitle(t *testing.T) {
	kv := persistence.NewMemoryKV()
	_, err := run(t, kv, "signup", "--name", "Ann", "--email", "a@x.com", "--password", "secret1", "--confirm", "secret1")
	require.NoError(t, err)
	_, err = run(t, kv, "login", "--email", "a@x.com", "--password", "secret1")
	require.NoError(t, err)

	out, err := run(t, kv, "tickets", "add", "--title", "  ")
	require.Error(t, err)
	assert.Contains(t, out, "title: Please provide a title.")
}

func TestCLIUpdateKeepsUnsetFields(t *testing.T) {
	kv := persistence.NewMemoryKV()
	_, err := run(t, kv, "signup", "--name", "Ann", "--email", "a@x.com", "--password", "secret1", "--confirm", "secret1")
	require.NoError(t, err)
	_, err = run(t, kv, "login", "--email", "a@x.com", "--password", "secret1")
	require.NoError(t, err)

	_, err = run(t, kv, "tickets", "add", "--title", "Printer", "--description", "3rd floor", "--priority", "High", "--status", "In Progress")
	require.NoError(t, err)
	out, err := run(t, kv, "tickets", "list", "--json")
	require.NoError(t, err)
	var list []domain.Ticket
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 1)
	id := strconv.FormatInt(list[0].ID, 10)

	_, err = run(t, kv, "tickets", "update", id, "--title", "Printer jam")
	require.NoError(t, err)

	out, err = run(t, kv, "tickets", "list", "--json")
	require.NoError(t, err)
	list = nil
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Printer jam", list[0].Title)
	assert.Equal(t, "3rd floor", list[0].Description)
	assert.Equal(t, domain.TicketPriorityHigh, list[0].Priority)
	assert.Equal(t, domain.TicketStatusInProgress, list[0].Status)

	_, err = run(t, kv, "tickets", "update", "42", "--title", "x")
	assert.True(t, errorutil.HasCode(err, errorutil.CodeNotFound))
}

func TestCLIWhoami(t *testing.T) {
	kv := persistence.NewMemoryKV()
	jwtAuth := config.AuthConfig{TokenMode: config.TokenModeJWT, JWTSecret: "s3cret", AccessTokenTTLMinutes: 30}

	_, err := runWithAuth(t, kv, jwtAuth, "whoami")
	assert.ErrorIs(t, err, errLoginRequired)

	_, err = runWithAuth(t, kv, jwtAuth, "signup", "--name", "Ann", "--email", "a@x.com", "--password", "secret1", "--confirm", "secret1")
	require.NoError(t, err)
	_, err = runWithAuth(t, kv, jwtAuth, "login", "--email", "a@x.com", "--password", "secret1")
	require.NoError(t, err)

	out, err := runWithAuth(t, kv, jwtAuth, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as a@x.com.")
	assert.Contains(t, out, "Token: valid")

	rotated := jwtAuth
	rotated.JWTSecret = "rotated"
	out, err = runWithAuth(t, kv, rotated, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Token: invalid")

	out, err = run(t, kv, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Token: opaque")
}
