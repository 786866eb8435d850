package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/shopcore/backend/internal/application/inventory"
	"github.com/shopcore/backend/internal/interfaces/http/dto"
)

// StockHandler handles inventory and stock-reservation API endpoints
type StockHandler struct {
	BaseHandler
	service *inventoryapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(service *inventoryapp.StockService) *StockHandler {
	return &StockHandler{
		service: service,
	}
}

// itemIDParam parses the itemId path parameter
func (h *StockHandler) itemIDParam(c *gin.Context) (uuid.UUID, bool) {
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID format")
		return uuid.Nil, false
	}
	return itemID, true
}

// CreateStockRecord godoc
// @ID           createInventoryStockRecord
//
//	@Summary		Create stock record
//	@Description	Create an inventory stock record for a catalog item
//	@Tags			inventory
//	@Accept			json
//	@Produce		json
//	@Param			request	body		inventoryapp.CreateStockRecordRequest	true	"Stock record data"
//	@Success		201		{object}	APIResponse[inventoryapp.StockRecordResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/inventory/records [post]
func (h *StockHandler) CreateStockRecord(c *gin.Context) {
	var req inventoryapp.CreateStockRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
		return
	}

	record, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, record)
}

// GetStockRecord godoc
// @ID           getInventoryStockRecord
//
//	@Summary		Get stock record
//	@Description	Get the stock record for a catalog item
//	@Tags			inventory
//	@Produce		json
//	@Param			itemId	path		string	true	"Catalog item ID"
//	@Success		200		{object}	APIResponse[inventoryapp.StockRecordResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/inventory/records/{itemId} [get]
func (h *StockHandler) GetStockRecord(c *gin.Context) {
	itemID, ok := h.itemIDParam(c)
	if !ok {
		return
	}

	record, err := h.service.GetByItemID(c.Request.Context(), itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// ListStockRecords godoc
// @ID           listInventoryStockRecords
//
//	@Summary		List stock records
//	@Description	Get a paginated list of stock records
//	@Tags			inventory
//	@Produce		json
//	@Param			status		query		string	false	"Filter by stock status"	Enums(in_stock, low_stock, out_of_stock, discontinued)
//	@Param			page		query		int		false	"Page number"				default(1)
//	@Param			page_size	query		int		false	"Page size"					default(20)
//	@Param			order_by	query		string	false	"Sort field"
//	@Param			order_dir	query		string	false	"Sort direction"			Enums(asc, desc)
//	@Success		200			{object}	APIResponse[[]inventoryapp.StockRecordResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/inventory/records [get]
func (h *StockHandler) ListStockRecords(c *gin.Context) {
	var filter inventoryapp.StockRecordListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	records, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, records, total, filter.Page, filter.PageSize)
}

// SetThresholds godoc
// @ID           setInventoryThresholds
//
//	@Summary		Update stock thresholds
//	@Description	Update the low-stock threshold and reorder settings for an item
//	@Tags			inventory
//	@Accept			json
//	@Produce		json
//	@Param			itemId	path		string								true	"Catalog item ID"
//	@Param			request	body		inventoryapp.SetThresholdsRequest	true	"Threshold settings"
//	@Success		200		{object}	APIResponse[inventoryapp.StockRecordResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/inventory/records/{itemId}/thresholds [put]
func (h *StockHandler) SetThresholds(c *gin.Context) {
	itemID, ok := h.itemIDParam(c)
	if !ok {
		return
	}

	var req inventoryapp.SetThresholdsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
		return
	}

	record, err := h.service.SetThresholds(c.Request.Context(), itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// ReserveStock godoc
// @ID           reserveInventoryStock
//
//	@Summary		Reserve stock
//	@Description	Reserve units for an order. Returns reserved=false when available stock cannot cover the request.
//	@Tags			inventory
//	@Accept			json
//	@Produce		json
//	@Param			itemId	path		string								true	"Catalog item ID"
//	@Param			request	body		inventoryapp.ReserveStockRequest	true	"Reservation data"
//	@Success		200		{object}	APIResponse[inventoryapp.ReserveStockResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/inventory/records/{itemId}/reserve [post]
func (h *StockHandler) ReserveStock(c *gin.Context) {
	itemID, ok := h.itemIDParam(c)
	if !ok {
		return
	}

	var req inventoryapp.ReserveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
		return
	}

	result, err := h.service.Reserve(c.Request.Context(), itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ReleaseStock godoc
// @ID           releaseInventoryStock
//
//	@Summary		Release reserved stock
//	@Description	Return reserved units to the available pool, e.g. on order cancellation
//	@Tags			inventory
//	@Accept			json
//	@Produce		json
//	@Param			itemId	path		string								true	"Catalog item ID"
//	@Param			request	body		inventoryapp.ReleaseStockRequest	true	"Release data"
//	@Success		200		{object}	SuccessResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/inventory/records/{itemId}/release [post]
func (h *StockHandler) ReleaseStock(c *gin.Context) {
	itemID, ok := h.itemIDParam(c)
	if !ok {
		return
	}

	var req inventoryapp.ReleaseStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
		return
	}

	if err := h.service.Release(c.Request.Context(), itemID, req); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"released": true})
}

// ReduceStock godoc
// @ID           reduceInventoryStock
//
//	@Summary		Reduce stock
//	@Description	Permanently remove units on shipment or sale completion, consuming any matching reservation
//	@Tags			inventory
//	@Accept			json
//	@Produce		json
//	@Param			itemId	path		string								true	"Catalog item ID"
//	@Param			request	body		inventoryapp.ReduceStockRequest		true	"Reduction data"
//	@Success		200		{object}	APIResponse[inventoryapp.ReduceStockResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/inventory/records/{itemId}/reduce [post]
func (h *StockHandler) ReduceStock(c *gin.Context) {
	itemID, ok := h.itemIDParam(c)
	if !ok {
		return
	}

	var req inventoryapp.ReduceStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
		return
	}

	result, err := h.service.Reduce(c.Request.Context(), itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RestockStock godoc
// @ID           restockInventoryStock
//
//	@Summary		Restock
//	@Description	Add units on supplier delivery and stamp the restock audit fields
//	@Tags			inventory
//	@Accept			json
//	@Produce		json
//	@Param			itemId	path		string							true	"Catalog item ID"
//	@Param			request	body		inventoryapp.RestockRequest		true	"Restock data"
//	@Success		200		{object}	APIResponse[inventoryapp.StockRecordResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/inventory/records/{itemId}/restock [post]
func (h *StockHandler) RestockStock(c *gin.Context) {
	itemID, ok := h.itemIDParam(c)
	if !ok {
		return
	}

	var req inventoryapp.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
		return
	}

	record, err := h.service.Restock(c.Request.Context(), itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// AdjustStock godoc
// @ID           adjustInventoryStock
//
//	@Summary		Adjust stock
//	@Description	Apply a signed manual correction to on-hand quantity, e.g. after a physical count
//	@Tags			inventory
//	@Accept			json
//	@Produce		json
//	@Param			itemId	path		string								true	"Catalog item ID"
//	@Param			request	body		inventoryapp.AdjustStockRequest		true	"Adjustment data"
//	@Success		200		{object}	APIResponse[inventoryapp.StockRecordResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/inventory/records/{itemId}/adjust [post]
func (h *StockHandler) AdjustStock(c *gin.Context) {
	itemID, ok := h.itemIDParam(c)
	if !ok {
		return
	}

	var req inventoryapp.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
		return
	}

	record, err := h.service.Adjust(c.Request.Context(), itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// DiscontinueStock godoc
// @ID           discontinueInventoryStock
//
//	@Summary		Discontinue item
//	@Description	Move an item's stock record to the terminal discontinued state
//	@Tags			inventory
//	@Produce		json
//	@Param			itemId	path		string	true	"Catalog item ID"
//	@Success		200		{object}	APIResponse[inventoryapp.StockRecordResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/inventory/records/{itemId}/discontinue [post]
func (h *StockHandler) DiscontinueStock(c *gin.Context) {
	itemID, ok := h.itemIDParam(c)
	if !ok {
		return
	}

	record, err := h.service.Discontinue(c.Request.Context(), itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// ReinstateStock godoc
// @ID           reinstateInventoryStock
//
//	@Summary		Reinstate item
//	@Description	Return a discontinued stock record to automatic status derivation
//	@Tags			inventory
//	@Produce		json
//	@Param			itemId	path		string	true	"Catalog item ID"
//	@Success		200		{object}	APIResponse[inventoryapp.StockRecordResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/inventory/records/{itemId}/reinstate [post]
func (h *StockHandler) ReinstateStock(c *gin.Context) {
	itemID, ok := h.itemIDParam(c)
	if !ok {
		return
	}

	record, err := h.service.Reinstate(c.Request.Context(), itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, record)
}

// GetAvailability godoc
// @ID           getInventoryAvailability
//
//	@Summary		Get available quantity
//	@Description	Get how many units can still be promised for an item
//	@Tags			inventory
//	@Produce		json
//	@Param			itemId	path		string	true	"Catalog item ID"
//	@Success		200		{object}	APIResponse[inventoryapp.AvailabilityResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/inventory/records/{itemId}/availability [get]
func (h *StockHandler) GetAvailability(c *gin.Context) {
	itemID, ok := h.itemIDParam(c)
	if !ok {
		return
	}

	availability, err := h.service.GetAvailableQuantity(c.Request.Context(), itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, availability)
}

// CheckReorder godoc
// @ID           checkInventoryReorder
//
//	@Summary		Check reorder need
//	@Description	Report whether an item's available stock has fallen to or below its reorder point
//	@Tags			inventory
//	@Produce		json
//	@Param			itemId	path		string	true	"Catalog item ID"
//	@Success		200		{object}	APIResponse[ReorderCheckData]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/inventory/records/{itemId}/reorder-check [get]
func (h *StockHandler) CheckReorder(c *gin.Context) {
	itemID, ok := h.itemIDParam(c)
	if !ok {
		return
	}

	needsReorder, err := h.service.NeedsReorder(c.Request.Context(), itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ReorderCheckData{NeedsReorder: needsReorder})
}

// ListMovements godoc
// @ID           listInventoryMovements
//
//	@Summary		List stock movements
//	@Description	Get the newest-first movement ledger for an item, capped at the retention limit
//	@Tags			inventory
//	@Produce		json
//	@Param			itemId	path		string	true	"Catalog item ID"
//	@Param			limit	query		int		false	"Maximum entries to return"	default(100)
//	@Success		200		{object}	APIResponse[[]inventoryapp.StockMovementResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/inventory/records/{itemId}/movements [get]
func (h *StockHandler) ListMovements(c *gin.Context) {
	itemID, ok := h.itemIDParam(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.BadRequest(c, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	movements, err := h.service.ListMovements(c.Request.Context(), itemID, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, movements)
}

// GetForecast godoc
// @ID           getInventoryForecast
//
//	@Summary		Get demand forecast
//	@Description	Project demand over the next N days from recent outbound movements
//	@Tags			inventory
//	@Produce		json
//	@Param			itemId	path		string	true	"Catalog item ID"
//	@Param			days	query		int		false	"Forecast horizon in days"	default(30)
//	@Success		200		{object}	APIResponse[inventoryapp.DemandForecastResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/inventory/records/{itemId}/forecast [get]
func (h *StockHandler) GetForecast(c *gin.Context) {
	itemID, ok := h.itemIDParam(c)
	if !ok {
		return
	}

	days := 30
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 365 {
			h.BadRequest(c, "Invalid days parameter")
			return
		}
		days = parsed
	}

	forecast, err := h.service.GetForecast(c.Request.Context(), itemID, days)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, forecast)
}

// ListReorderNeeded godoc
// @ID           listInventoryReorderNeeded
//
//	@Summary		List items needing reorder
//	@Description	Get tracked stock records whose available stock is at or below their reorder point
//	@Tags			inventory
//	@Produce		json
//	@Param			page		query		int	false	"Page number"	default(1)
//	@Param			page_size	query		int	false	"Page size"		default(20)
//	@Success		200			{object}	APIResponse[[]inventoryapp.StockRecordResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/inventory/reorder-needed [get]
func (h *StockHandler) ListReorderNeeded(c *gin.Context) {
	var filter inventoryapp.StockRecordListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	records, total, err := h.service.ListBelowReorderPoint(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, records, total, filter.Page, filter.PageSize)
}

// RegisterRoutes registers all inventory routes
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	inventory := rg.Group("/inventory")
	{
		inventory.GET("/reorder-needed", h.ListReorderNeeded)

		records := inventory.Group("/records")
		{
			records.GET("", h.ListStockRecords)
			records.POST("", h.CreateStockRecord)
			records.GET("/:itemId", h.GetStockRecord)
			records.PUT("/:itemId/thresholds", h.SetThresholds)
			records.POST("/:itemId/reserve", h.ReserveStock)
			records.POST("/:itemId/release", h.ReleaseStock)
			records.POST("/:itemId/reduce", h.ReduceStock)
			records.POST("/:itemId/restock", h.RestockStock)
			records.POST("/:itemId/adjust", h.AdjustStock)
			records.POST("/:itemId/discontinue", h.DiscontinueStock)
			records.POST("/:itemId/reinstate", h.ReinstateStock)
			records.GET("/:itemId/availability", h.GetAvailability)
			records.GET("/:itemId/reorder-check", h.CheckReorder)
			records.GET("/:itemId/movements", h.ListMovements)
			records.GET("/:itemId/forecast", h.GetForecast)
		}
	}
}
