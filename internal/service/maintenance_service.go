package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/univ-erp/registrar-api/internal/access"
	"github.com/univ-erp/registrar-api/internal/models"
	appErrors "github.com/univ-erp/registrar-api/pkg/errors"
)

type maintenanceRepository interface {
	Get(ctx context.Context) (*models.MaintenanceSetting, error)
	Save(ctx context.Context, on bool) error
}

// MaintenanceService persists the maintenance flag and keeps the in-process
// write gate in sync with it.
type MaintenanceService struct {
	repo   maintenanceRepository
	gate   *access.Controller
	logger *zap.Logger
}

// NewMaintenanceService constructs a MaintenanceService instance.
func NewMaintenanceService(repo maintenanceRepository, gate *access.Controller, logger *zap.Logger) *MaintenanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaintenanceService{repo: repo, gate: gate, logger: logger}
}

// Status returns the current maintenance state.
func (s *MaintenanceService) Status(ctx context.Context) (bool, error) {
	setting, err := s.repo.Get(ctx)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load maintenance setting")
	}
	return setting.MaintenanceOn, nil
}

// Toggle persists and applies the new maintenance state. The gate flips only
// after the setting is durably stored so a restart re-reads the same state.
func (s *MaintenanceService) Toggle(ctx context.Context, enable bool) error {
	if err := s.repo.Save(ctx, enable); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save maintenance setting")
	}
	s.gate.SetMaintenanceMode(enable)
	s.logger.Info("maintenance mode changed", zap.Bool("enabled", enable))
	return nil
}
