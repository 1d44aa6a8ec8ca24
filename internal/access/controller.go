// Package access holds the maintenance-mode write gate consulted by the
// service layer. The controller is injected into services rather than kept as
// package state so tests can run isolated instances.
package access

import "sync/atomic"

// Controller answers whether a caller role may perform writes right now.
type Controller struct {
	maintenance atomic.Bool
}

// NewController returns a controller with the given initial maintenance state.
func NewController(maintenanceOn bool) *Controller {
	c := &Controller{}
	c.maintenance.Store(maintenanceOn)
	return c
}

// CanStudentWrite reports whether student-facing writes are allowed.
func (c *Controller) CanStudentWrite() bool {
	return !c.maintenance.Load()
}

// CanInstructorWrite reports whether instructor-facing writes are allowed.
func (c *Controller) CanInstructorWrite() bool {
	return !c.maintenance.Load()
}

// CanAdminWrite always allows admin writes, maintenance mode included.
func (c *Controller) CanAdminWrite() bool {
	return true
}

// MaintenanceMode returns the current gate state.
func (c *Controller) MaintenanceMode() bool {
	return c.maintenance.Load()
}

// SetMaintenanceMode flips the gate.
func (c *Controller) SetMaintenanceMode(on bool) {
	c.maintenance.Store(on)
}
