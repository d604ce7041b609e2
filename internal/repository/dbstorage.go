package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	internalerrors "github.com/banbrick/collector/internal/errors"
	models "github.com/banbrick/collector/internal/model"
	"github.com/banbrick/collector/internal/validation"
)

type DBStorage struct {
	db    *sql.DB
	rules *validation.Rules
}

func NewDBStorage(dsn string, rules *validation.Rules) (*DBStorage, error) {
	dbConnect, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &DBStorage{db: dbConnect, rules: rules}, nil
}

func (storage *DBStorage) Close() error {
	return storage.db.Close()
}

func (storage *DBStorage) GetEnabledProject(ctx context.Context, name string, groups []string) (models.Project, error) {
	if len(groups) == 0 {
		return models.Project{}, internalerrors.ErrProjectNotFound
	}
	placeholders := make([]string, len(groups))
	args := []any{name, models.StatusEnable}
	for i, group := range groups {
		placeholders[i] = fmt.Sprintf("$%d", i+3)
		args = append(args, group)
	}
	query := fmt.Sprintf(
		`SELECT id, name, "group", status FROM projects WHERE name = $1 AND status = $2 AND "group" IN (%s)`,
		strings.Join(placeholders, ", "),
	)

	var project models.Project
	err := storage.db.QueryRowContext(ctx, query, args...).Scan(
		&project.ID, &project.Name, &project.Group, &project.Status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Project{}, internalerrors.ErrProjectNotFound
		}
		return models.Project{}, fmt.Errorf("error retrieving project: %w", classify(err))
	}
	return project, nil
}

func (storage *DBStorage) GetEnabledItem(ctx context.Context, projectID int64, name string) (models.Item, error) {
	query := `SELECT id, project_id, name, type, status, value, tags, created_on, updated_on
		FROM items WHERE project_id = $1 AND name = $2 AND status = $3`

	var item models.Item
	var value sql.NullString
	var tags string
	err := storage.db.QueryRowContext(ctx, query, projectID, name, models.StatusEnable).Scan(
		&item.ID, &item.ProjectID, &item.Name, &item.Type, &item.Status,
		&value, &tags, &item.CreatedOn, &item.UpdatedOn,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Item{}, internalerrors.ErrItemNotFound
		}
		return models.Item{}, fmt.Errorf("error retrieving item: %w", classify(err))
	}
	if value.Valid {
		item.Value = &value.String
	}
	item.Tags = splitTags(tags)
	return item, nil
}

// SaveItemWithHistory updates the item row and appends the history snapshot
// in one transaction. The UPDATE takes the row lock, so concurrent writers
// to the same item serialize and the history sequence follows commit order.
func (storage *DBStorage) SaveItemWithHistory(ctx context.Context, item models.Item, user string) (models.Item, error) {
	if err := storage.rules.Validate("name", item.Name); err != nil {
		return models.Item{}, err
	}

	tx, err := storage.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Item{}, fmt.Errorf("%w: %v", internalerrors.ErrTransactionFailed, err)
	}
	defer tx.Rollback()

	query := "UPDATE items SET value = $1, status = $2, updated_on = NOW() WHERE id = $3 RETURNING updated_on"
	err = tx.QueryRowContext(ctx, query, nullable(item.Value), item.Status, item.ID).Scan(&item.UpdatedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Item{}, internalerrors.ErrItemNotFound
		}
		return models.Item{}, fmt.Errorf("error saving item: %w", classify(err))
	}

	query = `INSERT INTO item_history (item_id, "user", status, value, updated_on) VALUES ($1, $2, $3, $4, NOW())`
	_, err = tx.ExecContext(ctx, query, item.ID, user, item.Status, nullable(item.Value))
	if err != nil {
		return models.Item{}, fmt.Errorf("error saving item history: %w", classify(err))
	}

	if err = tx.Commit(); err != nil {
		return models.Item{}, fmt.Errorf("%w: %v", internalerrors.ErrTransactionFailed, err)
	}
	return item, nil
}

func (storage *DBStorage) CreateProject(ctx context.Context, project models.Project) (models.Project, error) {
	if err := storage.rules.Validate("name", project.Name); err != nil {
		return models.Project{}, err
	}
	query := `INSERT INTO projects (name, "group", status) VALUES ($1, $2, $3) RETURNING id`
	err := storage.db.QueryRowContext(ctx, query, project.Name, project.Group, project.Status).Scan(&project.ID)
	if err != nil {
		return models.Project{}, fmt.Errorf("error creating project: %w", classify(err))
	}
	return project, nil
}

func (storage *DBStorage) CreateItem(ctx context.Context, item models.Item) (models.Item, error) {
	if err := storage.rules.Validate("name", item.Name); err != nil {
		return models.Item{}, err
	}
	query := `INSERT INTO items (project_id, name, type, status, value, tags, created_on, updated_on)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW()) RETURNING id, created_on, updated_on`
	err := storage.db.QueryRowContext(ctx, query,
		item.ProjectID, item.Name, item.Type, item.Status, nullable(item.Value), joinTags(item.Tags),
	).Scan(&item.ID, &item.CreatedOn, &item.UpdatedOn)
	if err != nil {
		return models.Item{}, fmt.Errorf("error creating item: %w", classify(err))
	}
	return item, nil
}

func (storage *DBStorage) ListItems(ctx context.Context, projectID int64) ([]models.Item, error) {
	query := `SELECT id, project_id, name, type, status, value, tags, created_on, updated_on
		FROM items WHERE project_id = $1 ORDER BY name`
	rows, err := storage.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving items: %w", classify(err))
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var item models.Item
		var value sql.NullString
		var tags string
		err = rows.Scan(
			&item.ID, &item.ProjectID, &item.Name, &item.Type, &item.Status,
			&value, &tags, &item.CreatedOn, &item.UpdatedOn,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning item: %w", err)
		}
		if value.Valid {
			item.Value = &value.String
		}
		item.Tags = splitTags(tags)
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over items: %w", err)
	}
	return items, nil
}

func (storage *DBStorage) ListItemHistory(ctx context.Context, itemID int64) ([]models.ItemHistory, error) {
	query := `SELECT id, item_id, "user", status, value, updated_on FROM item_history WHERE item_id = $1 ORDER BY id`
	rows, err := storage.db.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving item history: %w", classify(err))
	}
	defer rows.Close()

	var records []models.ItemHistory
	for rows.Next() {
		var record models.ItemHistory
		var value sql.NullString
		err = rows.Scan(&record.ID, &record.ItemID, &record.User, &record.Status, &value, &record.UpdatedOn)
		if err != nil {
			return nil, fmt.Errorf("error scanning item history: %w", err)
		}
		if value.Valid {
			record.Value = &value.String
		}
		records = append(records, record)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over item history: %w", err)
	}
	return records, nil
}

func (storage *DBStorage) Ping(ctx context.Context) error {
	err := storage.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("database ping failed: %v", err)
	}
	return nil
}

// classify maps PostgreSQL error codes onto the repository sentinels.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
			return fmt.Errorf("%w: %s", internalerrors.ErrConstraintViolation, pgErr.Message)
		}
		if pgerrcode.IsConnectionException(pgErr.Code) {
			return fmt.Errorf("%w: %s", internalerrors.ErrDatabaseConnection, pgErr.Message)
		}
	}
	return err
}

func nullable(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

// Tags are stored comma-joined; the safety-string rule keeps commas out of
// tag names.
func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func splitTags(tags string) []string {
	if tags == "" {
		return nil
	}
	return strings.Split(tags, ",")
}
