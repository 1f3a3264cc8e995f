package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edubridge/engagement-service/internal/models"
	"github.com/edubridge/engagement-service/internal/services"
	"github.com/edubridge/engagement-service/internal/utils"
)

type ProgressHandler struct {
	BaseHandler
	service services.ProgressService
}

func NewProgressHandler(service services.ProgressService, logger utils.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Record stores a subject record for a student. Teacher/admin gated in
// the router.
func (h *ProgressHandler) Record(c *gin.Context) {
	teacherID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req models.RecordProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	progress, err := h.service.Record(c.Request.Context(), teacherID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, progress)
}

// GetOverall returns all records with cross-subject stats.
func (h *ProgressHandler) GetOverall(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	studentID := h.parseIDParam(c, "studentId")
	if studentID == 0 {
		return
	}

	resp, err := h.service.GetOverallProgress(c.Request.Context(), userID, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetSubject returns one subject's history with trend stats.
func (h *ProgressHandler) GetSubject(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	studentID := h.parseIDParam(c, "studentId")
	if studentID == 0 {
		return
	}

	resp, err := h.service.GetSubjectProgress(c.Request.Context(), userID, studentID, c.Param("subject"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetAttendance returns per-record attendance plus the average.
func (h *ProgressHandler) GetAttendance(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	studentID := h.parseIDParam(c, "studentId")
	if studentID == 0 {
		return
	}

	resp, err := h.service.GetAttendance(c.Request.Context(), userID, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetAssessments returns the flattened assessment history.
func (h *ProgressHandler) GetAssessments(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	studentID := h.parseIDParam(c, "studentId")
	if studentID == 0 {
		return
	}

	resp, err := h.service.GetAssessments(c.Request.Context(), userID, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetTermReport returns the report card for one term.
func (h *ProgressHandler) GetTermReport(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	studentID := h.parseIDParam(c, "studentId")
	if studentID == 0 {
		return
	}

	resp, err := h.service.GetTermReport(c.Request.Context(), userID, studentID, c.Param("term"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ExportTermReport streams the term report as an xlsx attachment.
func (h *ProgressHandler) ExportTermReport(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	studentID := h.parseIDParam(c, "studentId")
	if studentID == 0 {
		return
	}

	term := c.Param("term")

	h.LogRequest(c, "Exporting term report", "student_id", studentID, "term", term)

	data, err := h.service.ExportTermReport(c.Request.Context(), userID, studentID, term)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("term-report-%d.xlsx", studentID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
