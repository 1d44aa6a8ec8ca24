package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/univ-erp/registrar-api/internal/models"
	"github.com/univ-erp/registrar-api/internal/service"
	appErrors "github.com/univ-erp/registrar-api/pkg/errors"
	"github.com/univ-erp/registrar-api/pkg/response"
)

// InstructorHandler wires the section and grading endpoints.
type InstructorHandler struct {
	service *service.InstructorService
}

// NewInstructorHandler creates a new handler.
func NewInstructorHandler(svc *service.InstructorService) *InstructorHandler {
	return &InstructorHandler{service: svc}
}

type recordScoresRequest struct {
	Scores map[string]float64 `json:"scores" binding:"required"`
}

type finalGradesRequest struct {
	WeightOverrides map[string]float64 `json:"weight_overrides"`
}

type saveComponentsRequest struct {
	Components []models.GradeComponent `json:"components" binding:"required"`
}

type saveComponentsWithFinalRequest struct {
	Components []models.GradeComponent `json:"components" binding:"required"`
	FinalGrade float64                 `json:"final_grade"`
}

// Sections godoc
// @Summary List taught sections
// @Tags Instructors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /instructors/me/sections [get]
func (h *InstructorHandler) Sections(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	sections, err := h.service.ListMySections(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections, nil)
}

// SectionGrades godoc
// @Summary Section gradebooks
// @Description Gradebook rows for every enrollment in an owned section
// @Tags Instructors
// @Produce json
// @Param id path string true "Section id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructors/me/sections/{id}/grades [get]
func (h *InstructorHandler) SectionGrades(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	rows, err := h.service.ViewSectionGrades(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// RecordScores godoc
// @Summary Record raw scores
// @Description Store unweighted scores for one student in an owned section
// @Tags Instructors
// @Accept json
// @Produce json
// @Param id path string true "Section id"
// @Param studentId path string true "Student id"
// @Param payload body recordScoresRequest true "Scores by component name"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /instructors/me/sections/{id}/students/{studentId}/scores [post]
func (h *InstructorHandler) RecordScores(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req recordScoresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid scores payload"))
		return
	}

	if err := h.service.RecordScores(c.Request.Context(), claims.UserID, c.Param("id"), c.Param("studentId"), req.Scores); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ComputeFinalGrades godoc
// @Summary Compute final grades
// @Description Recompute weighted totals for every enrollment in an owned section
// @Tags Instructors
// @Accept json
// @Produce json
// @Param id path string true "Section id"
// @Param payload body finalGradesRequest true "Optional weight overrides"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /instructors/me/sections/{id}/final-grades [post]
func (h *InstructorHandler) ComputeFinalGrades(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req finalGradesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid final grades payload"))
		return
	}

	if err := h.service.ComputeFinalGrades(c.Request.Context(), claims.UserID, c.Param("id"), req.WeightOverrides); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SaveComponents godoc
// @Summary Save weighted components
// @Description Replace a student's gradebook; weights must sum to 1.0
// @Tags Instructors
// @Accept json
// @Produce json
// @Param id path string true "Section id"
// @Param studentId path string true "Student id"
// @Param payload body saveComponentsRequest true "Weighted components"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /instructors/me/sections/{id}/students/{studentId}/components [put]
func (h *InstructorHandler) SaveComponents(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req saveComponentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid components payload"))
		return
	}

	if err := h.service.SaveGradeComponents(c.Request.Context(), claims.UserID, c.Param("id"), c.Param("studentId"), req.Components); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SaveComponentsWithFinal godoc
// @Summary Save components with explicit final grade
// @Description Replace a student's gradebook with a caller-supplied final grade
// @Tags Instructors
// @Accept json
// @Produce json
// @Param id path string true "Section id"
// @Param studentId path string true "Student id"
// @Param payload body saveComponentsWithFinalRequest true "Components and final grade"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /instructors/me/sections/{id}/students/{studentId}/components/final [put]
func (h *InstructorHandler) SaveComponentsWithFinal(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req saveComponentsWithFinalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid components payload"))
		return
	}

	if err := h.service.SaveGradeComponentsWithFinal(c.Request.Context(), claims.UserID, c.Param("id"), c.Param("studentId"), req.Components, req.FinalGrade); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
