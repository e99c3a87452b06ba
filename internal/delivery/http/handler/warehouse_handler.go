package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"warehouse-manager/internal/usecase/warehouse"
	"warehouse-manager/pkg/utils"
)

type WarehouseHandler struct {
	service *warehouse.Service
}

func NewWarehouseHandler(service *warehouse.Service) *WarehouseHandler {
	return &WarehouseHandler{service: service}
}

// RegisterRoutes expects router to already require authentication.
func (h *WarehouseHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/add-warehouse", h.CreateWarehouse)

	warehouses := router.Group("/warehouses")
	{
		warehouses.GET("", h.ListWarehouses)
		warehouses.POST("", h.CreateWarehouse)
		warehouses.GET("/stats", h.GetStatistics)
		warehouses.GET("/:id", h.GetWarehouse)
		warehouses.PUT("/:id", h.UpdateWarehouse)
		warehouses.DELETE("/:id", h.DeleteWarehouse)
	}
}

func (h *WarehouseHandler) CreateWarehouse(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req warehouse.CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.service.CreateWarehouse(c.Request.Context(), ownerID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Warehouse created successfully", created)
}

func (h *WarehouseHandler) GetWarehouse(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}
	warehouseID, ok := parseWarehouseID(c)
	if !ok {
		return
	}

	w, err := h.service.GetWarehouse(c.Request.Context(), ownerID, warehouseID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Warehouse retrieved successfully", w)
}

func (h *WarehouseHandler) ListWarehouses(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var filter warehouse.WarehouseFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	list, err := h.service.ListWarehouses(c.Request.Context(), ownerID, &filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Warehouses retrieved successfully", list)
}

func (h *WarehouseHandler) UpdateWarehouse(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}
	warehouseID, ok := parseWarehouseID(c)
	if !ok {
		return
	}

	var req warehouse.UpdateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.service.UpdateWarehouse(c.Request.Context(), ownerID, warehouseID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Warehouse updated successfully", updated)
}

func (h *WarehouseHandler) DeleteWarehouse(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}
	warehouseID, ok := parseWarehouseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteWarehouse(c.Request.Context(), ownerID, warehouseID); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Warehouse deleted successfully", nil)
}

func (h *WarehouseHandler) GetStatistics(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.service.GetStatistics(c.Request.Context(), ownerID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Statistics retrieved successfully", stats)
}

func parseWarehouseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid warehouse ID")
		return 0, false
	}
	return id, true
}
