package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/univ-erp/registrar-api/internal/models"
	"github.com/univ-erp/registrar-api/internal/service"
	appErrors "github.com/univ-erp/registrar-api/pkg/errors"
	"github.com/univ-erp/registrar-api/pkg/response"
)

// AdminHandler wires account, catalog CRUD, maintenance, and backup
// endpoints.
type AdminHandler struct {
	admin       *service.AdminService
	maintenance *service.MaintenanceService
	backup      *service.BackupService
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(admin *service.AdminService, maintenance *service.MaintenanceService, backup *service.BackupService) *AdminHandler {
	return &AdminHandler{admin: admin, maintenance: maintenance, backup: backup}
}

// CreateUser godoc
// @Summary Create a user
// @Description Provision an account with a default role profile
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.CreateUserRequest true "User payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/users [post]
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid user payload"))
		return
	}

	info, err := h.admin.AddUser(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, info)
}

// LockUser godoc
// @Summary Lock a user
// @Description Set a manual lockout window in minutes
// @Tags Admin
// @Accept json
// @Produce json
// @Param username path string true "Username"
// @Param payload body models.LockUserRequest true "Lock payload"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/users/{username}/lock [post]
func (h *AdminHandler) LockUser(c *gin.Context) {
	var req models.LockUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid lock payload"))
		return
	}

	if err := h.admin.LockUser(c.Request.Context(), c.Param("username"), req.Minutes); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UnlockUser godoc
// @Summary Unlock a user
// @Description Clear any lockout window and the failure counter
// @Tags Admin
// @Produce json
// @Param username path string true "Username"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/users/{username}/unlock [post]
func (h *AdminHandler) UnlockUser(c *gin.Context) {
	if err := h.admin.UnlockUser(c.Request.Context(), c.Param("username")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SaveStudentProfile godoc
// @Summary Set a student profile
// @Description Replace the roll number, program, and year for a student account
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "User id"
// @Param payload body models.StudentProfileRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/students/{id}/profile [put]
func (h *AdminHandler) SaveStudentProfile(c *gin.Context) {
	var req models.StudentProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student profile payload"))
		return
	}

	student, err := h.admin.SaveStudentProfile(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// SaveInstructorProfile godoc
// @Summary Set an instructor profile
// @Description Replace the department and title for an instructor account
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "User id"
// @Param payload body models.InstructorProfileRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/instructors/{id}/profile [put]
func (h *AdminHandler) SaveInstructorProfile(c *gin.Context) {
	var req models.InstructorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid instructor profile payload"))
		return
	}

	instructor, err := h.admin.SaveInstructorProfile(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructor, nil)
}

// CreateCourse godoc
// @Summary Create a course
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/courses [post]
func (h *AdminHandler) CreateCourse(c *gin.Context) {
	var req models.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course payload"))
		return
	}

	course, err := h.admin.AddCourse(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// DeleteCourse godoc
// @Summary Delete a course
// @Description Fails while sections still reference the course
// @Tags Admin
// @Produce json
// @Param id path string true "Course id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/courses/{id} [delete]
func (h *AdminHandler) DeleteCourse(c *gin.Context) {
	if err := h.admin.RemoveCourse(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateSection godoc
// @Summary Create a section
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.CreateSectionRequest true "Section payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/sections [post]
func (h *AdminHandler) CreateSection(c *gin.Context) {
	var req models.CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid section payload"))
		return
	}

	section, err := h.admin.AddSection(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, section)
}

// DeleteSection godoc
// @Summary Delete a section
// @Description Fails while enrollments still reference the section
// @Tags Admin
// @Produce json
// @Param id path string true "Section id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/sections/{id} [delete]
func (h *AdminHandler) DeleteSection(c *gin.Context) {
	if err := h.admin.RemoveSection(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AssignInstructor godoc
// @Summary Assign an instructor
// @Description Rebind a section to a different instructor
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Section id"
// @Param payload body models.AssignInstructorRequest true "Instructor payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/sections/{id}/instructor [put]
func (h *AdminHandler) AssignInstructor(c *gin.Context) {
	var req models.AssignInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid instructor payload"))
		return
	}

	section, err := h.admin.AssignInstructor(c.Request.Context(), c.Param("id"), req.InstructorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, section, nil)
}

// MaintenanceStatus godoc
// @Summary Maintenance state
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/maintenance [get]
func (h *AdminHandler) MaintenanceStatus(c *gin.Context) {
	on, err := h.maintenance.Status(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"enabled": on}, nil)
}

// SetMaintenance godoc
// @Summary Toggle maintenance mode
// @Description Enable or disable student and instructor writes
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.MaintenanceRequest true "Maintenance payload"
// @Success 200 {object} response.Envelope
// @Router /admin/maintenance [put]
func (h *AdminHandler) SetMaintenance(c *gin.Context) {
	var req models.MaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid maintenance payload"))
		return
	}

	if err := h.maintenance.Toggle(c.Request.Context(), req.Enabled); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"enabled": req.Enabled}, nil)
}

// Backup godoc
// @Summary Export catalog backup
// @Description Download the course and section snapshot as plain text
// @Tags Admin
// @Produce text/plain
// @Success 200 {file} file
// @Router /admin/backup [get]
func (h *AdminHandler) Backup(c *gin.Context) {
	if h.backup == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "backups are disabled"))
		return
	}

	payload, err := h.backup.ExportSnapshot(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="erp-backup.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(payload))
}

// Restore godoc
// @Summary Restore catalog backup
// @Description Upsert courses and sections from a snapshot body
// @Tags Admin
// @Accept text/plain
// @Produce json
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/restore [post]
func (h *AdminHandler) Restore(c *gin.Context) {
	if h.backup == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "backups are disabled"))
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read backup body"))
		return
	}

	if err := h.backup.ImportSnapshot(c.Request.Context(), string(payload)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
