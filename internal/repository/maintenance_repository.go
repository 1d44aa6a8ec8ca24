package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/univ-erp/registrar-api/internal/models"
)

// MaintenanceRepository persists the single-row maintenance flag.
type MaintenanceRepository struct {
	db *sqlx.DB
}

// NewMaintenanceRepository constructs the repository.
func NewMaintenanceRepository(db *sqlx.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

// Get returns the persisted maintenance setting, defaulting to off when the
// row has never been written.
func (r *MaintenanceRepository) Get(ctx context.Context) (*models.MaintenanceSetting, error) {
	const query = `SELECT maintenance_on FROM maintenance_settings WHERE id = 1 LIMIT 1`
	var setting models.MaintenanceSetting
	if err := r.db.GetContext(ctx, &setting, query); err != nil {
		if err == sql.ErrNoRows {
			return &models.MaintenanceSetting{MaintenanceOn: false}, nil
		}
		return nil, fmt.Errorf("load maintenance setting: %w", err)
	}
	return &setting, nil
}

// Save upserts the singleton maintenance row.
func (r *MaintenanceRepository) Save(ctx context.Context, on bool) error {
	const query = `INSERT INTO maintenance_settings (id, maintenance_on) VALUES (1, $1)
        ON CONFLICT (id) DO UPDATE SET maintenance_on = EXCLUDED.maintenance_on`
	if _, err := r.db.ExecContext(ctx, query, on); err != nil {
		return fmt.Errorf("save maintenance setting: %w", err)
	}
	return nil
}
