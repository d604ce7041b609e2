package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalerrors "github.com/banbrick/collector/internal/errors"
	models "github.com/banbrick/collector/internal/model"
	"github.com/banbrick/collector/internal/validation"
)

func strPtr(s string) *string {
	return &s
}

func newTestStorage(t *testing.T) (*MemStorage, models.Project, models.Item) {
	t.Helper()
	storage := NewMemStorage(validation.NewRules(validation.SafetyString()))
	ctx := context.Background()

	project, err := storage.CreateProject(ctx, models.Project{
		Name: "p1", Group: "ops", Status: models.StatusEnable,
	})
	require.NoError(t, err)

	item, err := storage.CreateItem(ctx, models.Item{
		ProjectID: project.ID, Name: "cpu", Type: models.TypeInteger,
		Status: models.StatusEnable, Value: strPtr("1"),
	})
	require.NoError(t, err)

	return storage, project, item
}

func TestMemStorage_GetEnabledProject(t *testing.T) {
	storage, project, _ := newTestStorage(t)
	ctx := context.Background()

	found, err := storage.GetEnabledProject(ctx, "p1", []string{"ops"})
	require.NoError(t, err)
	assert.Equal(t, project.ID, found.ID)
}

func TestMemStorage_GetEnabledProjectIndistinguishableFailures(t *testing.T) {
	storage, _, _ := newTestStorage(t)
	ctx := context.Background()

	_, err := storage.CreateProject(ctx, models.Project{
		Name: "p2", Group: "ops", Status: models.StatusDisable,
	})
	require.NoError(t, err)

	// wrong name, wrong group and disabled status all collapse into the
	// same outcome
	_, errName := storage.GetEnabledProject(ctx, "nope", []string{"ops"})
	_, errGroup := storage.GetEnabledProject(ctx, "p1", []string{"qa"})
	_, errStatus := storage.GetEnabledProject(ctx, "p2", []string{"ops"})
	_, errNoGroups := storage.GetEnabledProject(ctx, "p1", nil)

	for _, err := range []error{errName, errGroup, errStatus, errNoGroups} {
		assert.ErrorIs(t, err, internalerrors.ErrProjectNotFound)
		assert.EqualError(t, err, internalerrors.ErrProjectNotFound.Error())
	}
}

func TestMemStorage_GetEnabledItem(t *testing.T) {
	storage, project, item := newTestStorage(t)
	ctx := context.Background()

	found, err := storage.GetEnabledItem(ctx, project.ID, "cpu")
	require.NoError(t, err)
	assert.Equal(t, item.ID, found.ID)

	_, err = storage.GetEnabledItem(ctx, project.ID, "mem")
	assert.ErrorIs(t, err, internalerrors.ErrItemNotFound)

	// disabled items are invisible
	_, err = storage.CreateItem(ctx, models.Item{
		ProjectID: project.ID, Name: "disk", Type: models.TypeFloat, Status: models.StatusDisable,
	})
	require.NoError(t, err)
	_, err = storage.GetEnabledItem(ctx, project.ID, "disk")
	assert.ErrorIs(t, err, internalerrors.ErrItemNotFound)
}

func TestMemStorage_SaveItemWithHistory(t *testing.T) {
	storage, _, item := newTestStorage(t)
	ctx := context.Background()

	item.Value = strPtr("42")
	saved, err := storage.SaveItemWithHistory(ctx, item, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, "42", *saved.Value)

	records, err := storage.ListItemHistory(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "agent-1", records[0].User)
	assert.Equal(t, saved.Status, records[0].Status)
	assert.Equal(t, *saved.Value, *records[0].Value)
}

func TestMemStorage_SaveItemWithHistoryValidationWritesNothing(t *testing.T) {
	storage, project, item := newTestStorage(t)
	ctx := context.Background()

	item.Name = "cpu[0]"
	_, err := storage.SaveItemWithHistory(ctx, item, "agent-1")
	var fieldErr *internalerrors.FieldError
	require.ErrorAs(t, err, &fieldErr)

	stored, err := storage.GetEnabledItem(ctx, project.ID, "cpu")
	require.NoError(t, err)
	assert.Equal(t, "1", *stored.Value)

	records, err := storage.ListItemHistory(ctx, item.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMemStorage_SaveItemWithHistoryUnknownItem(t *testing.T) {
	storage, _, _ := newTestStorage(t)
	ctx := context.Background()

	_, err := storage.SaveItemWithHistory(ctx, models.Item{ID: 99, Name: "ghost"}, "agent-1")
	assert.ErrorIs(t, err, internalerrors.ErrItemNotFound)
}

func TestMemStorage_HistoryIsSnapshot(t *testing.T) {
	storage, _, item := newTestStorage(t)
	ctx := context.Background()

	item.Value = strPtr("42")
	_, err := storage.SaveItemWithHistory(ctx, item, "agent-1")
	require.NoError(t, err)

	item.Value = strPtr("43")
	_, err = storage.SaveItemWithHistory(ctx, item, "agent-1")
	require.NoError(t, err)

	records, err := storage.ListItemHistory(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "42", *records[0].Value)
	assert.Equal(t, "43", *records[1].Value)
}

func TestMemStorage_CreateDuplicates(t *testing.T) {
	storage, project, _ := newTestStorage(t)
	ctx := context.Background()

	_, err := storage.CreateProject(ctx, models.Project{
		Name: "p1", Group: "ops", Status: models.StatusEnable,
	})
	assert.ErrorIs(t, err, internalerrors.ErrConstraintViolation)

	_, err = storage.CreateItem(ctx, models.Item{
		ProjectID: project.ID, Name: "cpu", Type: models.TypeInteger, Status: models.StatusEnable,
	})
	assert.ErrorIs(t, err, internalerrors.ErrConstraintViolation)
}

func TestMemStorage_CreateItemRejectsUnsafeName(t *testing.T) {
	storage, project, _ := newTestStorage(t)

	_, err := storage.CreateItem(context.Background(), models.Item{
		ProjectID: project.ID, Name: "bad,name", Type: models.TypeText, Status: models.StatusEnable,
	})
	var fieldErr *internalerrors.FieldError
	assert.ErrorAs(t, err, &fieldErr)
}

func TestMemStorage_Ping(t *testing.T) {
	storage := NewMemStorage(validation.NewRules(validation.SafetyString()))
	assert.NoError(t, storage.Ping(context.Background()))
	assert.NoError(t, storage.Close())
}
