package handler

import (
	"io"
	"net/http"

	businessapp "github.com/dasbor/backend/internal/application/business"
	sheetapp "github.com/dasbor/backend/internal/application/sheet"
	"github.com/dasbor/backend/internal/interfaces/http/dto"
	"github.com/dasbor/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// maxLogoUploadBytes bounds the multipart logo form; the service enforces the
// exact image size limit.
const maxLogoUploadBytes = 4 << 20

// BusinessHandler handles business administration HTTP requests. Creation,
// listing, archival and deletion are super-admin operations; settings and
// logo management are open to the business's own admin.
type BusinessHandler struct {
	BaseHandler
	businessService *businessapp.Service
	sheetService    *sheetapp.Service
}

// NewBusinessHandler creates a new business handler
func NewBusinessHandler(businessService *businessapp.Service, sheetService *sheetapp.Service) *BusinessHandler {
	return &BusinessHandler{
		businessService: businessService,
		sheetService:    sheetService,
	}
}

// RegisterRoutes registers the business endpoints
func (h *BusinessHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/business/businesses")

	super := group.Group("")
	super.Use(middleware.RequireSuperAdmin())
	{
		super.POST("", h.CreateBusiness)
		super.GET("", h.ListBusinesses)
		super.DELETE("/:businessId", middleware.BusinessScope(), h.DeleteBusiness)
		super.POST("/:businessId/archive", middleware.BusinessScope(), h.ArchiveBusiness)
		super.POST("/:businessId/restore", middleware.BusinessScope(), h.RestoreBusiness)
	}

	scoped := group.Group("/:businessId")
	scoped.Use(middleware.BusinessScope())
	{
		scoped.GET("", h.GetBusiness)
		scoped.PUT("", h.UpdateBusiness)
		scoped.PUT("/settings", h.UpdateSettings)
		scoped.POST("/logo", middleware.BodyLimit(maxLogoUploadBytes), h.UploadLogo)
		scoped.DELETE("/logo", h.DeleteLogo)
		scoped.GET("/write-capability", h.WriteCapability)
	}
}

// CreateBusinessRequest represents the request body for creating a business
type CreateBusinessRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=200"`
	Slug        string `json:"slug" binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"omitempty,max=1000"`
}

// UpdateBusinessRequest represents the request body for editing a business.
// Omitted fields are left unchanged.
type UpdateBusinessRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
}

// UpdateSettingsRequest represents the request body for the integration
// settings. Omitted fields are left unchanged; empty strings clear a setting.
type UpdateSettingsRequest struct {
	SheetURL       *string `json:"sheet_url" binding:"omitempty,spreadsheet_url"`
	WhatsAppSender *string `json:"whatsapp_sender" binding:"omitempty,phone"`
	WebhookURL     *string `json:"webhook_url" binding:"omitempty,url"`
}

// CreateBusiness creates a business
func (h *BusinessHandler) CreateBusiness(c *gin.Context) {
	var req CreateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.businessService.CreateBusiness(c.Request.Context(), businessapp.CreateBusinessInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// ListBusinesses returns businesses matching the filter
func (h *BusinessHandler) ListBusinesses(c *gin.Context) {
	list := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&list); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.businessService.ListBusinesses(c.Request.Context(), businessapp.ListBusinessesInput{
		Keyword:   list.Search,
		Status:    c.Query("status"),
		Page:      list.Page,
		PageSize:  list.PageSize,
		SortBy:    list.SortBy,
		SortOrder: list.SortDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Businesses, result.Total, result.Page, result.PageSize)
}

// GetBusiness returns one business
func (h *BusinessHandler) GetBusiness(c *gin.Context) {
	businessID, ok := scopeBusinessID(c)
	if !ok {
		h.InternalError(c, "Business scope not resolved")
		return
	}

	result, err := h.businessService.GetBusiness(c.Request.Context(), businessID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// UpdateBusiness edits the display fields
func (h *BusinessHandler) UpdateBusiness(c *gin.Context) {
	businessID, ok := scopeBusinessID(c)
	if !ok {
		h.InternalError(c, "Business scope not resolved")
		return
	}

	var req UpdateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.businessService.UpdateBusiness(c.Request.Context(), businessID, businessapp.UpdateBusinessInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// UpdateSettings stores the integration settings (spreadsheet link, WhatsApp
// sender, workflow webhook)
func (h *BusinessHandler) UpdateSettings(c *gin.Context) {
	businessID, ok := scopeBusinessID(c)
	if !ok {
		h.InternalError(c, "Business scope not resolved")
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.businessService.UpdateSettings(c.Request.Context(), businessID, businessapp.UpdateSettingsInput{
		SheetURL:       req.SheetURL,
		WhatsAppSender: req.WhatsAppSender,
		WebhookURL:     req.WebhookURL,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// UploadLogo stores a logo image sent as multipart form field "logo"
func (h *BusinessHandler) UploadLogo(c *gin.Context) {
	businessID, ok := scopeBusinessID(c)
	if !ok {
		h.InternalError(c, "Business scope not resolved")
		return
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		h.BadRequest(c, "Missing logo file")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Could not read logo file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.BadRequest(c, "Could not read logo file")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	result, err := h.businessService.UploadLogo(c.Request.Context(), businessID, businessapp.UploadLogoInput{
		Filename:    fileHeader.Filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// DeleteLogo removes the stored logo
func (h *BusinessHandler) DeleteLogo(c *gin.Context) {
	businessID, ok := scopeBusinessID(c)
	if !ok {
		h.InternalError(c, "Business scope not resolved")
		return
	}

	result, err := h.businessService.DeleteLogo(c.Request.Context(), businessID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// WriteCapability reports whether spreadsheet write credentials are
// configured. Absence is a valid state, not an error.
func (h *BusinessHandler) WriteCapability(c *gin.Context) {
	h.Success(c, h.sheetService.WriteCapability())
}

// ArchiveBusiness retires a business
func (h *BusinessHandler) ArchiveBusiness(c *gin.Context) {
	businessID, ok := scopeBusinessID(c)
	if !ok {
		h.InternalError(c, "Business scope not resolved")
		return
	}

	result, err := h.businessService.ArchiveBusiness(c.Request.Context(), businessID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RestoreBusiness reactivates an archived business
func (h *BusinessHandler) RestoreBusiness(c *gin.Context) {
	businessID, ok := scopeBusinessID(c)
	if !ok {
		h.InternalError(c, "Business scope not resolved")
		return
	}

	result, err := h.businessService.RestoreBusiness(c.Request.Context(), businessID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// DeleteBusiness removes a business permanently
func (h *BusinessHandler) DeleteBusiness(c *gin.Context) {
	businessID, ok := scopeBusinessID(c)
	if !ok {
		h.InternalError(c, "Business scope not resolved")
		return
	}

	if err := h.businessService.DeleteBusiness(c.Request.Context(), businessID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
