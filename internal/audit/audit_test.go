package audit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	models "github.com/banbrick/collector/internal/model"
)

func TestAuditLogger_Log(t *testing.T) {
	logger := zap.NewNop().Sugar()
	eventChan := make(chan models.AuditEvent, 1)
	auditLogger := NewAuditLogger(eventChan, logger)

	auditLogger.Log("p1", "cpu", "agent-1", "127.0.0.1")

	evt := <-eventChan
	assert.Equal(t, "p1", evt.Project)
	assert.Equal(t, "cpu", evt.Item)
	assert.Equal(t, "agent-1", evt.User)
	assert.Equal(t, "127.0.0.1", evt.IPAddress)
	assert.NotEmpty(t, evt.TS)
}

func TestAuditLogger_FullChannelDropsEvent(t *testing.T) {
	logger := zap.NewNop().Sugar()
	eventChan := make(chan models.AuditEvent, 1)
	auditLogger := NewAuditLogger(eventChan, logger)

	auditLogger.Log("p1", "cpu", "agent-1", "127.0.0.1")
	// channel is full now; this must not block
	auditLogger.Log("p1", "mem", "agent-1", "127.0.0.1")

	assert.Len(t, eventChan, 1)
}

func TestBroadcaster(t *testing.T) {
	logger := zap.NewNop().Sugar()
	source := make(chan models.AuditEvent, 1)
	sub1 := make(chan models.AuditEvent, 1)
	sub2 := make(chan models.AuditEvent, 1)

	done := make(chan struct{})
	go func() {
		Broadcaster(source, logger, sub1, sub2)
		close(done)
	}()

	source <- models.AuditEvent{Project: "p1", Item: "cpu"}
	close(source)
	<-done

	evt1 := <-sub1
	evt2 := <-sub2
	assert.Equal(t, "cpu", evt1.Item)
	assert.Equal(t, "cpu", evt2.Item)
}

func TestFileSubscriber(t *testing.T) {
	logger := zap.NewNop().Sugar()
	fname := filepath.Join(t.TempDir(), "audit.log")
	events := make(chan models.AuditEvent, 2)

	done := make(chan struct{})
	go func() {
		FileSubscriber(events, fname, logger)
		close(done)
	}()

	events <- models.AuditEvent{TS: "2026-01-02T15:04:05Z", Project: "p1", Item: "cpu", User: "agent-1"}
	events <- models.AuditEvent{TS: "2026-01-02T15:04:06Z", Project: "p1", Item: "mem", User: "agent-1"}
	close(events)
	<-done

	data, err := os.ReadFile(fname)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var evt models.AuditEvent
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &evt))
	assert.Equal(t, "cpu", evt.Item)
	assert.Equal(t, "agent-1", evt.User)
}

func TestURLSubscriber(t *testing.T) {
	logger := zap.NewNop().Sugar()
	received := make(chan models.AuditEvent, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var evt models.AuditEvent
		if err := json.NewDecoder(r.Body).Decode(&evt); err == nil {
			received <- evt
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	events := make(chan models.AuditEvent, 1)
	done := make(chan struct{})
	go func() {
		URLSubscriber(events, ts.URL, logger)
		close(done)
	}()

	events <- models.AuditEvent{Project: "p1", Item: "cpu", User: "agent-1"}
	close(events)
	<-done

	evt := <-received
	assert.Equal(t, "cpu", evt.Item)
}
