package repository

import (
	"context"
	"sync"
	"time"

	internalerrors "github.com/banbrick/collector/internal/errors"
	models "github.com/banbrick/collector/internal/model"
	"github.com/banbrick/collector/internal/validation"
)

// MemStorage implements the Repository interface using in-memory maps.
//
// The mutex serializes concurrent writers so the history sequence matches
// commit order, mirroring the row lock taken by the database storage.
type MemStorage struct {
	mu sync.RWMutex

	rules *validation.Rules

	projects map[int64]models.Project
	items    map[int64]models.Item
	history  []models.ItemHistory

	nextProjectID int64
	nextItemID    int64
	nextHistoryID int64
}

// NewMemStorage creates an in-memory storage instance with the given field
// validation rules.
func NewMemStorage(rules *validation.Rules) *MemStorage {
	return &MemStorage{
		rules:    rules,
		projects: make(map[int64]models.Project),
		items:    make(map[int64]models.Item),
	}
}

func (ms *MemStorage) GetEnabledProject(ctx context.Context, name string, groups []string) (models.Project, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	for _, project := range ms.projects {
		if project.Name != name || project.Status != models.StatusEnable {
			continue
		}
		for _, group := range groups {
			if project.Group == group {
				return project, nil
			}
		}
	}
	return models.Project{}, internalerrors.ErrProjectNotFound
}

func (ms *MemStorage) GetEnabledItem(ctx context.Context, projectID int64, name string) (models.Item, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	for _, item := range ms.items {
		if item.ProjectID == projectID && item.Name == name && item.Status == models.StatusEnable {
			return item, nil
		}
	}
	return models.Item{}, internalerrors.ErrItemNotFound
}

// SaveItemWithHistory persists the item's value and status and appends a
// history snapshot under one lock; a validation failure writes nothing.
func (ms *MemStorage) SaveItemWithHistory(ctx context.Context, item models.Item, user string) (models.Item, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if err := ms.rules.Validate("name", item.Name); err != nil {
		return models.Item{}, err
	}
	stored, exists := ms.items[item.ID]
	if !exists {
		return models.Item{}, internalerrors.ErrItemNotFound
	}

	stored.Value = item.Value
	stored.Status = item.Status
	stored.UpdatedOn = time.Now()
	ms.items[stored.ID] = stored

	ms.nextHistoryID++
	ms.history = append(ms.history, models.ItemHistory{
		ID:        ms.nextHistoryID,
		ItemID:    stored.ID,
		User:      user,
		Status:    stored.Status,
		Value:     stored.Value,
		UpdatedOn: stored.UpdatedOn,
	})
	return stored, nil
}

func (ms *MemStorage) CreateProject(ctx context.Context, project models.Project) (models.Project, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if err := ms.rules.Validate("name", project.Name); err != nil {
		return models.Project{}, err
	}
	for _, existing := range ms.projects {
		if existing.Name == project.Name {
			return models.Project{}, internalerrors.ErrConstraintViolation
		}
	}
	ms.nextProjectID++
	project.ID = ms.nextProjectID
	ms.projects[project.ID] = project
	return project, nil
}

func (ms *MemStorage) CreateItem(ctx context.Context, item models.Item) (models.Item, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if err := ms.rules.Validate("name", item.Name); err != nil {
		return models.Item{}, err
	}
	if _, exists := ms.projects[item.ProjectID]; !exists {
		return models.Item{}, internalerrors.ErrProjectNotFound
	}
	for _, existing := range ms.items {
		if existing.ProjectID == item.ProjectID && existing.Name == item.Name {
			return models.Item{}, internalerrors.ErrConstraintViolation
		}
	}
	ms.nextItemID++
	item.ID = ms.nextItemID
	now := time.Now()
	item.CreatedOn = now
	item.UpdatedOn = now
	ms.items[item.ID] = item
	return item, nil
}

func (ms *MemStorage) ListItems(ctx context.Context, projectID int64) ([]models.Item, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	var result []models.Item
	for _, item := range ms.items {
		if item.ProjectID == projectID {
			result = append(result, item)
		}
	}
	return result, nil
}

func (ms *MemStorage) ListItemHistory(ctx context.Context, itemID int64) ([]models.ItemHistory, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	var result []models.ItemHistory
	for _, record := range ms.history {
		if record.ItemID == itemID {
			result = append(result, record)
		}
	}
	return result, nil
}

// Close releases any resources held by the memory storage.
func (ms *MemStorage) Close() error {
	return nil
}

// Ping checks the health of the memory storage.
//
// For MemStorage this always returns nil since there are no external
// dependencies.
func (ms *MemStorage) Ping(ctx context.Context) error {
	return nil
}
