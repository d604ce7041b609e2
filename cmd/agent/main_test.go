package main

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banbrick/collector/internal/agent"
	models "github.com/banbrick/collector/internal/model"
)

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(errors.New("dial tcp: connection refused")))
	assert.True(t, isRetryableError(errors.New("context deadline exceeded (Client.Timeout exceeded)")))
	assert.True(t, isRetryableError(errors.New("read: connection reset by peer")))
	assert.False(t, isRetryableError(errors.New("collector rejected cpu: 406")))
}

func TestBuildEnvelope(t *testing.T) {
	config := &agent.AgentConfig{Key: "k1", Project: "p1"}
	envelope := buildEnvelope(config, agent.Reading{Item: "cpu_percent", Value: "12.5"})

	assert.Equal(t, "k1", envelope.Auth)
	assert.Equal(t, "p1", envelope.Project)
	assert.Equal(t, "cpu_percent", envelope.Item)
	require.NotNil(t, envelope.Value)
	assert.Equal(t, "12.5", *envelope.Value)
}

func TestSendReading(t *testing.T) {
	var received models.CollectRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gzip", r.Header.Get("Content-Encoding"))
		gzipReader, err := gzip.NewReader(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer gzipReader.Close()
		assert.NoError(t, json.NewDecoder(gzipReader).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer ts.Close()

	envelope := models.CollectRequest{Auth: "k1", Project: "p1", Item: "cpu_percent"}
	value := "12.5"
	envelope.Value = &value

	err := sendReading(ts.Client(), ts.URL+"/collect", envelope)
	require.NoError(t, err)
	assert.Equal(t, "cpu_percent", received.Item)
	assert.Equal(t, "12.5", *received.Value)
}

func TestSendReading_Rejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotAcceptable)
		json.NewEncoder(w).Encode(models.CollectResponse{
			OK: false, Detail: "value(abc) of item(cpu_percent) save failed",
		})
	}))
	defer ts.Close()

	value := "abc"
	err := sendReading(ts.Client(), ts.URL+"/collect", models.CollectRequest{
		Auth: "k1", Project: "p1", Item: "cpu_percent", Value: &value,
	})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "406"))
	assert.False(t, isRetryableError(err))
}

func TestCollectReadings(t *testing.T) {
	readings, err := agent.CollectReadings()
	require.NoError(t, err)
	require.NotEmpty(t, readings)

	names := make(map[string]bool)
	for _, reading := range readings {
		names[reading.Item] = true
		assert.NotEmpty(t, reading.Value)
	}
	assert.True(t, names["mem_used_percent"])
}
