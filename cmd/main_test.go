package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shenikar/resqnet/internal/config"
	"github.com/shenikar/resqnet/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartKeepAlive_Disabled(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithOutput("debug", "json", &buf)

	assert.Nil(t, startKeepAlive(&config.Config{}, log, nil))
	assert.Empty(t, buf.String())
}

func TestStartKeepAlive_LogsStartOnce(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithOutput("debug", "json", &buf)
	cfg := &config.Config{KeepAliveURL: "http://127.0.0.1:1", KeepAliveSchedule: "@every 1h"}

	pinger := startKeepAlive(cfg, log, nil)
	require.NotNil(t, pinger)
	pinger.Stop()

	assert.Equal(t, 1, strings.Count(buf.String(), "Keep-alive pinger started"))
}

func TestStartKeepAlive_InvalidSchedule(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithOutput("debug", "json", &buf)
	cfg := &config.Config{KeepAliveURL: "http://127.0.0.1:1", KeepAliveSchedule: "not a schedule"}

	assert.Nil(t, startKeepAlive(cfg, log, nil))
	assert.Contains(t, buf.String(), "Failed to start keep-alive pinger")
}
