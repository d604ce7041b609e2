// Package models defines the data structures used throughout the collector.
package models

import "time"

// Item type tags. Each tag selects the converter applied to submitted
// values before they are persisted.
const (
	TypeInteger = "integer"
	TypeFloat   = "float"
	TypeText    = "text"
	TypeBoolean = "boolean"
	TypeDecimal = "decimal"
)

// Statuses shared by projects and items. Only enabled records are visible
// to the ingestion flow.
const (
	StatusEnable    = "enable"
	StatusDisable   = "disable"
	StatusProtected = "protected"
)

// Project is an access-scoping container of items. It is administered out
// of band and read-only for the ingestion flow.
type Project struct {
	ID     int64
	Name   string
	Group  string
	Status string
}

// Item is a named monitored metric belonging to a project. The value is
// stored as text but is always coercible to the declared type.
type Item struct {
	ID        int64
	ProjectID int64
	Name      string
	Type      string
	Status    string
	Value     *string
	Tags      []string
	CreatedOn time.Time
	UpdatedOn time.Time
}

// ItemHistory is an append-only audit snapshot of an item mutation. Status
// and Value are denormalized copies taken at write time.
type ItemHistory struct {
	ID        int64
	ItemID    int64
	User      string
	Status    string
	Value     *string
	UpdatedOn time.Time
}

// User is an external identity resolved from an agent key. Groups scope
// which projects the user may submit values for.
type User struct {
	Name   string
	Groups []string
}

// CollectRequest is the ingestion request envelope.
type CollectRequest struct {
	Auth    string  `json:"auth"`
	Project string  `json:"project"`
	Item    string  `json:"item"`
	Value   *string `json:"value"`
}

// CollectResponse is the common response envelope. Detail carries either an
// error message or a CollectResult.
type CollectResponse struct {
	OK     bool `json:"ok"`
	Detail any  `json:"detail"`
}

// CollectResult identifies a successfully recorded value.
type CollectResult struct {
	Project int64 `json:"project"`
	Item    int64 `json:"item"`
	Value   any   `json:"value"`
}

// AuditEvent represents an audit log entry for a recorded value.
type AuditEvent struct {
	// TS is the timestamp of the event in ISO 8601 format
	TS string `json:"ts"`

	// Project and Item name the record that was updated
	Project string `json:"project"`
	Item    string `json:"item"`

	// User is the identity that submitted the value
	User string `json:"user"`

	// IPAddress is the address of the agent that submitted the value
	IPAddress string `json:"ip_address"`
}
