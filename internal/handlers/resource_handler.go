package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edubridge/engagement-service/internal/models"
	"github.com/edubridge/engagement-service/internal/services"
	"github.com/edubridge/engagement-service/internal/utils"
)

type ResourceHandler struct {
	BaseHandler
	service services.ResourceService
}

func NewResourceHandler(service services.ResourceService, logger utils.Logger) *ResourceHandler {
	return &ResourceHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Upload publishes a new resource owned by the caller.
func (h *ResourceHandler) Upload(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	var req models.UploadResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resource, err := h.service.Upload(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resource)
}

// List returns a filtered, paginated page of active resources.
func (h *ResourceHandler) List(c *gin.Context) {
	var params models.ListResourcesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	resources, total, err := h.service.List(c.Request.Context(), &params)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ListResourcesResponse{
		Resources: resources,
		Total:     total,
		Page:      params.Page,
		Size:      params.Size,
	})
}

// Search is List keyed on the q query parameter.
func (h *ResourceHandler) Search(c *gin.Context) {
	var params models.ListResourcesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}
	if q := c.Query("q"); q != "" {
		params.Search = q
	}

	resources, total, err := h.service.List(c.Request.Context(), &params)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ListResourcesResponse{
		Resources: resources,
		Total:     total,
		Page:      params.Page,
		Size:      params.Size,
	})
}

// Popular returns the most-downloaded active resources.
func (h *ResourceHandler) Popular(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	resources, err := h.service.Popular(c.Request.Context(), limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resources)
}

// GetByID returns one resource.
func (h *ResourceHandler) GetByID(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	resource, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resource)
}

// Update edits a resource. Only the uploader or an admin may edit.
func (h *ResourceHandler) Update(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req models.UpdateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resource, err := h.service.Update(c.Request.Context(), id, userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resource)
}

// Delete removes a resource. Only the uploader or an admin may delete.
func (h *ResourceHandler) Delete(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting resource", "resource_id", id)

	if err := h.service.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Resource deleted"})
}

// Download records a download and returns the resource with its URL.
func (h *ResourceHandler) Download(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	resource, err := h.service.Download(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resource)
}

// Rate records or replaces the caller's rating.
func (h *ResourceHandler) Rate(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req models.RateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resource, err := h.service.Rate(c.Request.Context(), id, userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resource)
}
