package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/univ-erp/registrar-api/internal/service"
	appErrors "github.com/univ-erp/registrar-api/pkg/errors"
	"github.com/univ-erp/registrar-api/pkg/response"
)

// StudentHandler wires the catalog, registration, and transcript endpoints.
type StudentHandler struct {
	service *service.StudentService
	metrics *service.MetricsService
}

// NewStudentHandler creates a new handler.
func NewStudentHandler(svc *service.StudentService, metrics *service.MetricsService) *StudentHandler {
	return &StudentHandler{service: svc, metrics: metrics}
}

type registerRequest struct {
	SectionID string `json:"section_id" binding:"required"`
}

// Catalog godoc
// @Summary Course catalog
// @Description List all sections with course, instructor, and seat data
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog [get]
func (h *StudentHandler) Catalog(c *gin.Context) {
	rows, err := h.service.ViewCatalog(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Register godoc
// @Summary Register for a section
// @Description Enroll the authenticated student in a section
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body registerRequest true "Section to register"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /students/me/registrations [post]
func (h *StudentHandler) Register(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}

	enrollment, err := h.service.RegisterSection(c.Request.Context(), claims.UserID, req.SectionID)
	if err != nil {
		h.metrics.RecordRegistration("rejected")
		response.Error(c, err)
		return
	}

	h.metrics.RecordRegistration("success")
	response.Created(c, enrollment)
}

// Drop godoc
// @Summary Drop a section
// @Description Remove the authenticated student's enrollment
// @Tags Students
// @Produce json
// @Param sectionId path string true "Section id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /students/me/registrations/{sectionId} [delete]
func (h *StudentHandler) Drop(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.DropSection(c.Request.Context(), claims.UserID, c.Param("sectionId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Timetable godoc
// @Summary Weekly timetable
// @Description List the authenticated student's enrolled sections by day and time
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students/me/timetable [get]
func (h *StudentHandler) Timetable(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	entries, err := h.service.ViewTimetable(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Grades godoc
// @Summary Grade view
// @Description Component scores and final grades per enrollment
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students/me/grades [get]
func (h *StudentHandler) Grades(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	views, err := h.service.ViewGrades(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// Transcript godoc
// @Summary Download transcript
// @Description Render the transcript as CSV (default) or PDF
// @Tags Students
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /students/me/transcript [get]
func (h *StudentHandler) Transcript(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := c.DefaultQuery("format", "csv")
	switch format {
	case "csv":
		payload, err := h.service.TranscriptCSV(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="transcript.csv"`)
		c.Data(http.StatusOK, "text/csv", payload)
	case "pdf":
		payload, err := h.service.TranscriptPDF(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="transcript.pdf"`)
		c.Data(http.StatusOK, "application/pdf", payload)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}
