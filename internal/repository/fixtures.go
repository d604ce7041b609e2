package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/banbrick/collector/internal/coerce"
	models "github.com/banbrick/collector/internal/model"
)

// Fixtures describes projects and items loaded out of band, either into
// MemStorage at startup or into PostgreSQL by the seed tool.
type Fixtures struct {
	Projects []FixtureProject `json:"projects"`
	Items    []FixtureItem    `json:"items"`
}

type FixtureProject struct {
	Name   string `json:"name"`
	Group  string `json:"group"`
	Status string `json:"status"`
}

type FixtureItem struct {
	Project string   `json:"project"`
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Status  string   `json:"status"`
	Value   *string  `json:"value"`
	Tags    []string `json:"tags"`
}

// LoadFixtures reads a fixture file and creates its projects and items,
// returning the created project IDs by name.
//
// Item values go through the lenient coercion path: an unconvertible value
// is nulled with a warning rather than aborting the load.
func LoadFixtures(ctx context.Context, repo Repository, fname string, fixer *coerce.Fixer, logger *zap.SugaredLogger) (map[string]int64, error) {
	if _, err := os.Stat(fname); os.IsNotExist(err) {
		logger.Infof("fixture file not exists %s", fname)
		return nil, nil
	}

	file, err := os.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("error while opening fixture file: %w", err)
	}
	defer file.Close()

	var fixtures Fixtures
	if err := json.NewDecoder(file).Decode(&fixtures); err != nil {
		return nil, fmt.Errorf("error while decoding fixture file: %w", err)
	}

	projects := make(map[string]int64, len(fixtures.Projects))
	for _, fp := range fixtures.Projects {
		project, err := repo.CreateProject(ctx, models.Project{
			Name:   fp.Name,
			Group:  fp.Group,
			Status: fp.Status,
		})
		if err != nil {
			logger.Warnf("skipping project %s: %v", fp.Name, err)
			continue
		}
		projects[project.Name] = project.ID
	}

	for _, fi := range fixtures.Items {
		projectID, ok := projects[fi.Project]
		if !ok {
			logger.Warnf("skipping item %s: unknown project %s", fi.Name, fi.Project)
			continue
		}
		item := models.Item{
			ProjectID: projectID,
			Name:      fi.Name,
			Type:      fi.Type,
			Status:    fi.Status,
			Value:     fi.Value,
			Tags:      fi.Tags,
		}
		fixer.FixLenient(&item)
		if _, err := repo.CreateItem(ctx, item); err != nil {
			logger.Warnf("skipping item %s: %v", fi.Name, err)
		}
	}
	return projects, nil
}
