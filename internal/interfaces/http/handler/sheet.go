package handler

import (
	"strconv"

	sheetapp "github.com/dasbor/backend/internal/application/sheet"
	"github.com/dasbor/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// SheetHandler exposes the spreadsheet ingestion pipeline. Every endpoint
// re-reads the linked sheet: the spreadsheet is the database and its owner
// edits it outside our control, so nothing is cached across requests.
type SheetHandler struct {
	BaseHandler
	sheetService *sheetapp.Service
}

// NewSheetHandler creates a new sheet handler
func NewSheetHandler(sheetService *sheetapp.Service) *SheetHandler {
	return &SheetHandler{
		sheetService: sheetService,
	}
}

// RegisterRoutes registers the sheet endpoints
func (h *SheetHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/sheet/businesses/:businessId")
	group.Use(middleware.BusinessScope())
	{
		group.GET("/customers", h.ListCustomers)
		group.GET("/customers/:externalId/menu-summary", h.MenuSummary)
		group.GET("/reservations", h.ListReservations)
		group.GET("/menu", h.ListMenu)
		group.GET("/places", h.PlaceAvailability)
		group.GET("/faq", h.ListFAQ)
		group.POST("/faq", h.AddFAQ)
		group.PUT("/faq/:row", h.UpdateFAQ)
	}
}

// FAQRequest represents the request body for FAQ mutations
type FAQRequest struct {
	Question string `json:"question" binding:"required,max=1000"`
	Answer   string `json:"answer" binding:"required,max=4000"`
}

// ListCustomers returns the customer tab listing
func (h *SheetHandler) ListCustomers(c *gin.Context) {
	businessID, ok := scopeBusinessID(c)
	if !ok {
		h.InternalError(c, "Business scope not resolved")
		return
	}

	result, err := h.sheetService.ListCustomers(c.Request.Context(), businessID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListReservations returns the reservation tab listing with derived dates
func (h *SheetHandler) ListReservations(c *gin.Context) {
	businessID, ok := scopeBusinessID(c)
	if !ok {
		h.InternalError(c, "Business scope not resolved")
		return
	}

	result, err := h.sheetService.ListReservations(c.Request.Context(), businessID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// MenuSummary returns aggregated menu counts for one customer
func (h *SheetHandler) MenuSummary(c *gin.Context) {
	businessID, ok := scopeBusinessID(c)
	if !ok {
		h.InternalError(c, "Business scope not resolved")
		return
	}

	result, err := h.sheetService.MenuSummary(c.Request.Context(), businessID, c.Param("externalId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListMenu returns the menu tab listing with normalized prices
func (h *SheetHandler) ListMenu(c *gin.Context) {
	businessID, ok := scopeBusinessID(c)
	if !ok {
		h.InternalError(c, "Business scope not resolved")
		return
	}

	result, err := h.sheetService.ListMenu(c.Request.Context(), businessID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// PlaceAvailability returns the place availability matrix
func (h *SheetHandler) PlaceAvailability(c *gin.Context) {
	businessID, ok := scopeBusinessID(c)
	if !ok {
		h.InternalError(c, "Business scope not resolved")
		return
	}

	result, err := h.sheetService.PlaceAvailability(c.Request.Context(), businessID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListFAQ returns the FAQ tab listing
func (h *SheetHandler) ListFAQ(c *gin.Context) {
	businessID, ok := scopeBusinessID(c)
	if !ok {
		h.InternalError(c, "Business scope not resolved")
		return
	}

	result, err := h.sheetService.ListFAQ(c.Request.Context(), businessID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// AddFAQ appends a question/answer pair to the FAQ tab
func (h *SheetHandler) AddFAQ(c *gin.Context) {
	businessID, ok := scopeBusinessID(c)
	if !ok {
		h.InternalError(c, "Business scope not resolved")
		return
	}

	var req FAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.sheetService.AddFAQ(c.Request.Context(), businessID, sheetapp.AddFAQInput{
		Question: req.Question,
		Answer:   req.Answer,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// UpdateFAQ overwrites one FAQ row. The :row parameter is the data row index
// as returned by the FAQ listing.
func (h *SheetHandler) UpdateFAQ(c *gin.Context) {
	businessID, ok := scopeBusinessID(c)
	if !ok {
		h.InternalError(c, "Business scope not resolved")
		return
	}

	rowIndex, err := strconv.Atoi(c.Param("row"))
	if err != nil || rowIndex < 0 {
		h.BadRequest(c, "Invalid row index")
		return
	}

	var req FAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.sheetService.UpdateFAQ(c.Request.Context(), businessID, sheetapp.UpdateFAQInput{
		RowIndex: rowIndex,
		Question: req.Question,
		Answer:   req.Answer,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
