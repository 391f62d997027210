package keepalive

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shenikar/resqnet/internal/observability"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return logger
}

func TestPinger_Ping(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	metrics := observability.NewMetricsForTesting()
	p := NewPinger(srv.URL+"/", "@every 1m", newTestLogger(), metrics)

	require.NoError(t, p.Ping(context.Background()))
	assert.Equal(t, HealthPath, gotPath)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.KeepAlivePings.WithLabelValues("success")))
}

func TestPinger_Ping_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	metrics := observability.NewMetricsForTesting()
	p := NewPinger(srv.URL, "@every 1m", newTestLogger(), metrics)

	err := p.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.KeepAlivePings.WithLabelValues("error")))
}

func TestPinger_Start_InvalidSchedule(t *testing.T) {
	p := NewPinger("http://localhost", "not a schedule", newTestLogger(), nil)

	err := p.Start()
	assert.Error(t, err)
	p.Stop()
}

func TestPinger_StartStop(t *testing.T) {
	p := NewPinger("http://localhost", "*/10 * * * *", newTestLogger(), nil)

	require.NoError(t, p.Start())
	p.Stop()
}
