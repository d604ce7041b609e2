// Package audit distributes ingestion audit events to multiple
// destinations.
//
// It implements a publish-subscribe pattern: the collector publishes one
// event per recorded value, a broadcaster fans events out to file and HTTP
// subscribers. Sends never block; a full channel drops the event.
package audit

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	models "github.com/banbrick/collector/internal/model"
)

// AuditLogger is an interface for publishing audit events.
type AuditLogger interface {
	// Log publishes an event for a value recorded against project/item by
	// user from ipAddress.
	Log(project, item, user, ipAddress string)
}

type auditLogger struct {
	eventChan chan<- models.AuditEvent
	logger    *zap.SugaredLogger
}

// NewAuditLogger creates an AuditLogger that publishes to the provided
// channel.
func NewAuditLogger(eventChan chan<- models.AuditEvent, logger *zap.SugaredLogger) AuditLogger {
	return &auditLogger{eventChan: eventChan, logger: logger}
}

func (a *auditLogger) Log(project, item, user, ipAddress string) {
	event := models.AuditEvent{
		TS:        time.Now().Format(time.RFC3339),
		Project:   project,
		Item:      item,
		User:      user,
		IPAddress: ipAddress,
	}

	select {
	case a.eventChan <- event:
	default:
		a.logger.Warn("audit channel is full, dropped event")
	}
}

// Broadcaster distributes audit events to the subscriber channels.
//
// A blocked subscriber channel discards the event rather than stalling the
// others.
func Broadcaster(source <-chan models.AuditEvent, logger *zap.SugaredLogger, subs ...chan<- models.AuditEvent) {
	for evt := range source {
		for _, subChan := range subs {
			select {
			case subChan <- evt:
			default:
				logger.Warn("dropped event for blocked subscriber channel")
			}
		}
	}
}

// FileSubscriber appends audit events to a file, one JSON object per line.
func FileSubscriber(events <-chan models.AuditEvent, fname string, logger *zap.SugaredLogger) {
	for evt := range events {
		data, err := json.Marshal(evt)
		if err != nil {
			logger.Errorf("marshalling audit event: %v", err)
			continue
		}
		f, err := os.OpenFile(fname, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			logger.Errorf("opening audit file %s: %v", fname, err)
			continue
		}
		if _, err = f.Write(append(data, '\n')); err != nil {
			logger.Errorf("writing audit file: %v", err)
		}
		f.Close()
	}
}

// URLSubscriber posts audit events to an HTTP endpoint.
func URLSubscriber(events <-chan models.AuditEvent, url string, logger *zap.SugaredLogger) {
	for evt := range events {
		data, err := json.Marshal(evt)
		if err != nil {
			logger.Errorf("marshalling audit event: %v", err)
			continue
		}
		resp, err := http.Post(url, "application/json", bytes.NewBuffer(data))
		if err != nil {
			logger.Errorf("sending audit event to %s: %v", url, err)
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
}
