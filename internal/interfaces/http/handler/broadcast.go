package handler

import (
	broadcastapp "github.com/dasbor/backend/internal/application/broadcast"
	"github.com/dasbor/backend/internal/interfaces/http/dto"
	"github.com/dasbor/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// BroadcastHandler handles WhatsApp broadcast campaign HTTP requests
type BroadcastHandler struct {
	BaseHandler
	broadcastService *broadcastapp.Service
}

// NewBroadcastHandler creates a new broadcast handler
func NewBroadcastHandler(broadcastService *broadcastapp.Service) *BroadcastHandler {
	return &BroadcastHandler{
		broadcastService: broadcastService,
	}
}

// RegisterRoutes registers the campaign endpoints
func (h *BroadcastHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/broadcast/businesses/:businessId/campaigns")
	group.Use(middleware.BusinessScope())
	{
		group.POST("", h.CreateCampaign)
		group.GET("", h.ListCampaigns)
		group.GET("/:id", h.GetCampaign)
		group.PUT("/:id", h.UpdateCampaign)
		group.DELETE("/:id", h.DeleteCampaign)
		group.POST("/:id/dispatch", h.Dispatch)
	}
}

// CreateCampaignRequest represents the request body for creating a campaign
type CreateCampaignRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=200"`
	Message string `json:"message" binding:"required,min=1,max=4096"`
	// ReservationDate narrows the audience to one reservation day (YYYY-MM-DD).
	// Empty means the whole customer list.
	ReservationDate string `json:"reservation_date" binding:"omitempty,datetime=2006-01-02"`
}

// UpdateCampaignRequest represents the request body for editing a draft
// campaign. Omitted fields are left unchanged.
type UpdateCampaignRequest struct {
	Name            *string `json:"name" binding:"omitempty,min=1,max=200"`
	Message         *string `json:"message" binding:"omitempty,min=1,max=4096"`
	ReservationDate *string `json:"reservation_date" binding:"omitempty"`
}

// CreateCampaign creates a draft campaign
func (h *BroadcastHandler) CreateCampaign(c *gin.Context) {
	businessID, ok := scopeBusinessID(c)
	if !ok {
		h.InternalError(c, "Business scope not resolved")
		return
	}

	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	input := broadcastapp.CreateCampaignInput{
		BusinessID:      businessID,
		Name:            req.Name,
		Message:         req.Message,
		ReservationDate: req.ReservationDate,
	}
	if userID, err := getUserID(c); err == nil {
		input.CreatedBy = &userID
	}

	result, err := h.broadcastService.CreateCampaign(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// ListCampaigns returns the business's campaigns matching the filter
func (h *BroadcastHandler) ListCampaigns(c *gin.Context) {
	businessID, ok := scopeBusinessID(c)
	if !ok {
		h.InternalError(c, "Business scope not resolved")
		return
	}

	list := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&list); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.broadcastService.ListCampaigns(c.Request.Context(), broadcastapp.ListCampaignsInput{
		BusinessID: businessID,
		Status:     c.Query("status"),
		Keyword:    list.Search,
		Page:       list.Page,
		PageSize:   list.PageSize,
		SortBy:     list.SortBy,
		SortOrder:  list.SortDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Campaigns, result.Total, result.Page, result.PageSize)
}

// GetCampaign returns one campaign
func (h *BroadcastHandler) GetCampaign(c *gin.Context) {
	businessID, ok := scopeBusinessID(c)
	if !ok {
		h.InternalError(c, "Business scope not resolved")
		return
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid campaign ID")
		return
	}

	result, err := h.broadcastService.GetCampaign(c.Request.Context(), businessID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// UpdateCampaign edits a draft campaign
func (h *BroadcastHandler) UpdateCampaign(c *gin.Context) {
	businessID, ok := scopeBusinessID(c)
	if !ok {
		h.InternalError(c, "Business scope not resolved")
		return
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid campaign ID")
		return
	}

	var req UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.broadcastService.UpdateCampaign(c.Request.Context(), businessID, id, broadcastapp.UpdateCampaignInput{
		Name:            req.Name,
		Message:         req.Message,
		ReservationDate: req.ReservationDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// DeleteCampaign removes a draft campaign. Dispatched campaigns are kept as
// the billing record.
func (h *BroadcastHandler) DeleteCampaign(c *gin.Context) {
	businessID, ok := scopeBusinessID(c)
	if !ok {
		h.InternalError(c, "Business scope not resolved")
		return
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid campaign ID")
		return
	}

	if err := h.broadcastService.DeleteCampaign(c.Request.Context(), businessID, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Dispatch resolves the audience from the customer sheet and posts the
// campaign to the business's workflow webhook
func (h *BroadcastHandler) Dispatch(c *gin.Context) {
	businessID, ok := scopeBusinessID(c)
	if !ok {
		h.InternalError(c, "Business scope not resolved")
		return
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid campaign ID")
		return
	}

	result, err := h.broadcastService.Dispatch(c.Request.Context(), businessID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
