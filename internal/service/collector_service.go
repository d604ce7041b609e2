// Package service provides the business logic layer for the collector.
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/banbrick/collector/internal/audit"
	"github.com/banbrick/collector/internal/auth"
	"github.com/banbrick/collector/internal/coerce"
	models "github.com/banbrick/collector/internal/model"
	"github.com/banbrick/collector/internal/repository"
)

// CollectorService runs the value ingestion flow: authenticate the key,
// resolve the project within the user's groups, resolve the item, coerce
// the value strictly, then save value and history atomically.
//
// The first failing step short-circuits; nothing is persisted on any
// failure.
type CollectorService struct {
	repository repository.Repository
	auth       auth.Authenticator
	fixer      *coerce.Fixer
	audit      audit.AuditLogger
	logger     *zap.SugaredLogger
}

// NewCollectorService creates a collector service. auditLogger may be nil
// when no audit fan-out is configured.
func NewCollectorService(
	repo repository.Repository,
	authenticator auth.Authenticator,
	fixer *coerce.Fixer,
	auditLogger audit.AuditLogger,
	logger *zap.SugaredLogger,
) *CollectorService {
	return &CollectorService{
		repository: repo,
		auth:       authenticator,
		fixer:      fixer,
		audit:      auditLogger,
		logger:     logger,
	}
}

// Collect handles one validated request envelope and returns the recorded
// identifiers together with the coerced value.
func (cs *CollectorService) Collect(ctx context.Context, req models.CollectRequest, remoteAddr string) (models.CollectResult, error) {
	user, err := cs.auth.Authenticate(ctx, req.Auth)
	if err != nil {
		return models.CollectResult{}, err
	}

	project, err := cs.repository.GetEnabledProject(ctx, req.Project, user.Groups)
	if err != nil {
		return models.CollectResult{}, err
	}

	item, err := cs.repository.GetEnabledItem(ctx, project.ID, req.Item)
	if err != nil {
		return models.CollectResult{}, err
	}

	item.Value = req.Value
	value, err := cs.fixer.FixStrict(&item)
	if err != nil {
		return models.CollectResult{}, err
	}

	saved, err := cs.repository.SaveItemWithHistory(ctx, item, user.Name)
	if err != nil {
		return models.CollectResult{}, err
	}
	cs.logger.Infow("recorded value",
		"project", project.Name,
		"item", saved.Name,
		"user", user.Name,
	)

	if cs.audit != nil {
		cs.audit.Log(project.Name, saved.Name, user.Name, remoteAddr)
	}

	return models.CollectResult{
		Project: project.ID,
		Item:    saved.ID,
		Value:   value,
	}, nil
}

// Ping checks the repository connection, delegating to the repository
// implementation.
func (cs *CollectorService) Ping(ctx context.Context) error {
	return cs.repository.Ping(ctx)
}
