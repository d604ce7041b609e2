// Package repository provides storage for projects, items and item
// history, with in-memory and PostgreSQL implementations.
package repository

import (
	"context"

	models "github.com/banbrick/collector/internal/model"
)

// Repository is the storage contract used by the ingestion flow and the
// administration tooling.
//
// The lookup methods only see enabled records: any mismatch on name, group
// or status collapses into the same not-found error, so a caller cannot
// tell a forbidden record from a missing one.
type Repository interface {
	// GetEnabledProject resolves a project by name, constrained to the
	// given group memberships and enabled status.
	GetEnabledProject(ctx context.Context, name string, groups []string) (models.Project, error)

	// GetEnabledItem resolves an enabled item of a project by name.
	GetEnabledItem(ctx context.Context, projectID int64, name string) (models.Item, error)

	// SaveItemWithHistory persists the item's value and status and appends
	// a history snapshot, atomically: both commit or neither does. Field
	// validators run before anything is written.
	SaveItemWithHistory(ctx context.Context, item models.Item, user string) (models.Item, error)

	// CreateProject and CreateItem exist for out-of-band administration
	// (seeding, fixtures, tests); the ingestion flow never creates records.
	CreateProject(ctx context.Context, project models.Project) (models.Project, error)
	CreateItem(ctx context.Context, item models.Item) (models.Item, error)

	ListItems(ctx context.Context, projectID int64) ([]models.Item, error)
	ListItemHistory(ctx context.Context, itemID int64) ([]models.ItemHistory, error)

	Ping(ctx context.Context) error
	Close() error
}
