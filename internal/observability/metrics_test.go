package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticketflex/internal/config"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/tickets", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/tickets", "GET", 200, 12*time.Millisecond)
	m.RecordError("/auth/login", "POST", "INVALID_CREDENTIALS")
	m.RecordTicketAction("add")
	m.RecordAuthSubmission("login", "success")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/tickets", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("/auth/login", "POST", "INVALID_CREDENTIALS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ticketActions.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authSubmissions.WithLabelValues("login", "success")))

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordTicketAction("add")
		m.RecordAuthSubmission("signup", "success")
	})
	assert.Nil(t, m.Registry())
}

func TestNewLoggerFallsBackOnUnknownLevel(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "loud"}, "ticketflex")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(0))
	assert.False(t, logger.Core().Enabled(-1))
}
