package warehouse

import (
	"encoding/json"
	"time"

	domainWarehouse "warehouse-manager/internal/domain/warehouse"
)

type AreaRequest struct {
	Method           string          `json:"method" validate:"required,area_method"`
	WidthM           *float64        `json:"width_m" validate:"omitempty,gt=0"`
	LengthM          *float64        `json:"length_m" validate:"omitempty,gt=0"`
	GeoJSON          json.RawMessage `json:"geojson_data"`
	CalculatedAreaM2 *float64        `json:"calculated_area_m2" validate:"omitempty,gte=0"`
}

type CreateWarehouseRequest struct {
	Name        string       `json:"name" validate:"required,max=120"`
	Location    string       `json:"location" validate:"required,max=255"`
	Description *string      `json:"description" validate:"omitempty,max=2000"`
	Type        string       `json:"type" validate:"required,warehouse_type"`
	Capacity    int          `json:"capacity" validate:"gte=0"`
	HeightM     *float64     `json:"height_m" validate:"omitempty,gte=0"`
	Area        *AreaRequest `json:"area"`
	FloorAreaM2 *float64     `json:"floor_area_m2" validate:"omitempty,gte=0"`
	ShelfCount  int          `json:"shelf_count" validate:"gte=0"`
	IsActive    *bool        `json:"is_active"`
}

// UpdateWarehouseRequest is a partial update: nil fields keep their value.
type UpdateWarehouseRequest struct {
	Name        *string      `json:"name" validate:"omitempty,min=1,max=120"`
	Location    *string      `json:"location" validate:"omitempty,min=1,max=255"`
	Description *string      `json:"description" validate:"omitempty,max=2000"`
	Type        *string      `json:"type" validate:"omitempty,warehouse_type"`
	Capacity    *int         `json:"capacity" validate:"omitempty,gte=0"`
	HeightM     *float64     `json:"height_m" validate:"omitempty,gte=0"`
	Area        *AreaRequest `json:"area"`
	FloorAreaM2 *float64     `json:"floor_area_m2" validate:"omitempty,gte=0"`
	ShelfCount  *int         `json:"shelf_count" validate:"omitempty,gte=0"`
	IsActive    *bool        `json:"is_active"`
}

type WarehouseFilterRequest struct {
	Type      *string `form:"type" json:"type" validate:"omitempty,warehouse_type"`
	IsActive  *bool   `form:"active" json:"active"`
	Search    string  `form:"search" json:"search" validate:"max=120"`
	Page      int     `form:"page" json:"page" validate:"omitempty,min=1"`
	PageSize  int     `form:"page_size" json:"page_size" validate:"omitempty,min=1,max=100"`
	SortBy    string  `form:"sort_by" json:"sort_by" validate:"omitempty,oneof=created_at name capacity"`
	SortOrder string  `form:"sort_order" json:"sort_order" validate:"omitempty,oneof=asc desc"`
}

type AreaResponse struct {
	Method           string          `json:"method"`
	WidthM           *float64        `json:"width_m"`
	LengthM          *float64        `json:"length_m"`
	GeoJSON          json.RawMessage `json:"geojson_data,omitempty"`
	CalculatedAreaM2 *float64        `json:"calculated_area_m2"`
}

type WarehouseResponse struct {
	ID          int64         `json:"id"`
	OwnerID     int64         `json:"owner_id"`
	Name        string        `json:"name"`
	Location    string        `json:"location"`
	Description *string       `json:"description"`
	Type        string        `json:"type"`
	Capacity    int           `json:"capacity"`
	HeightM     *float64      `json:"height_m"`
	Area        *AreaResponse `json:"area"`
	FloorAreaM2 *float64      `json:"floor_area_m2"`
	ShelfCount  int           `json:"shelf_count"`
	IsActive    bool          `json:"is_active"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type WarehouseListResponse struct {
	Warehouses []WarehouseResponse `json:"warehouses"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	TotalPages int                 `json:"total_pages"`
}

type WarehouseStatisticsResponse struct {
	TotalWarehouses  int64   `json:"total_warehouses"`
	OpenWarehouses   int64   `json:"open_warehouses"`
	ClosedWarehouses int64   `json:"closed_warehouses"`
	ActiveWarehouses int64   `json:"active_warehouses"`
	TotalCapacity    int64   `json:"total_capacity"`
	TotalFloorAreaM2 float64 `json:"total_floor_area_m2"`
}

func ToWarehouseResponse(w *domainWarehouse.Warehouse) *WarehouseResponse {
	if w == nil {
		return nil
	}
	resp := &WarehouseResponse{
		ID:          w.ID,
		OwnerID:     w.OwnerID,
		Name:        w.Name,
		Location:    w.Location,
		Description: w.Description,
		Type:        string(w.Type),
		Capacity:    w.Capacity,
		HeightM:     w.HeightM,
		FloorAreaM2: w.FloorAreaM2,
		ShelfCount:  w.ShelfCount,
		IsActive:    w.IsActive,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
	if a := w.Area; a != nil {
		resp.Area = &AreaResponse{
			Method:           a.Method,
			WidthM:           a.WidthM,
			LengthM:          a.LengthM,
			GeoJSON:          a.GeoJSON,
			CalculatedAreaM2: a.CalculatedAreaM2,
		}
	}
	return resp
}

func ToDomainFilter(ownerID int64, req *WarehouseFilterRequest) *domainWarehouse.Filter {
	filter := &domainWarehouse.Filter{OwnerID: ownerID}
	if req == nil {
		return filter
	}
	if req.Type != nil {
		t := domainWarehouse.Type(*req.Type)
		filter.Type = &t
	}
	filter.IsActive = req.IsActive
	filter.Search = req.Search
	filter.Page = req.Page
	filter.PageSize = req.PageSize
	filter.SortBy = req.SortBy
	filter.SortOrder = req.SortOrder
	return filter
}

func ToStatisticsResponse(s *domainWarehouse.Statistics) *WarehouseStatisticsResponse {
	if s == nil {
		return nil
	}
	return &WarehouseStatisticsResponse{
		TotalWarehouses:  s.Total,
		OpenWarehouses:   s.Open,
		ClosedWarehouses: s.Closed,
		ActiveWarehouses: s.Active,
		TotalCapacity:    s.TotalCapacity,
		TotalFloorAreaM2: s.TotalFloorAreaM2,
	}
}
