package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.HealthAddr)
	assert.Equal(t, "redis", cfg.Broker)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 168*time.Hour, cfg.Retention)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("WORKER_DB_HOST", "db.internal")
	t.Setenv("WORKER_DB_PORT", "6432")
	t.Setenv("WORKER_BROKER", "kafka")
	t.Setenv("WORKER_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("WORKER_BATCH_SIZE", "25")

	cfg, err := loadConfig()
	require.NoError(t, err)

	db := cfg.database()
	assert.Equal(t, "db.internal", db.Host)
	assert.Equal(t, 6432, db.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 25, cfg.processor().BatchSize)
}

func TestLoadConfig_RejectsBadDuration(t *testing.T) {
	t.Setenv("WORKER_POLL_INTERVAL", "soon")

	_, err := loadConfig()
	assert.Error(t, err)
}

func TestNewBroker(t *testing.T) {
	b, err := newBroker(&Config{Broker: "none"})
	require.NoError(t, err)
	assert.NoError(t, b.Close())

	_, err = newBroker(&Config{Broker: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestHealthMux(t *testing.T) {
	var pingErr error
	mux := healthMux(func(context.Context) error { return pingErr }, prometheus.NewRegistry())

	get := func(path string) int {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w.Code
	}

	assert.Equal(t, http.StatusOK, get("/health/live"))
	assert.Equal(t, http.StatusOK, get("/health/ready"))
	assert.Equal(t, http.StatusOK, get("/metrics"))

	pingErr = errors.New("connection refused")
	assert.Equal(t, http.StatusServiceUnavailable, get("/health/ready"))
}
