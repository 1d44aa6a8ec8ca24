package models

// MaintenanceSetting is the persisted process-wide read-only gate.
type MaintenanceSetting struct {
	MaintenanceOn bool `db:"maintenance_on" json:"maintenance_on"`
}
