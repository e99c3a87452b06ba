package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	domainWarehouse "warehouse-manager/internal/domain/warehouse"
	"warehouse-manager/internal/infrastructure/database/postgres/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var warehouseSortColumns = map[string]string{
	"created_at": "created_at",
	"name":       "name",
	"capacity":   "capacity",
}

// WarehouseRepository implements domain.Warehouse.Repository interface
type WarehouseRepository struct {
	db *DB
}

func NewWarehouseRepository(db *DB) domainWarehouse.Repository {
	return &WarehouseRepository{db: db}
}

func (r *WarehouseRepository) Create(ctx context.Context, w *domainWarehouse.Warehouse) error {
	now := time.Now().UTC()
	w.CreatedAt = now
	w.UpdatedAt = now

	dbModel, err := toWarehouseModel(w)
	if err != nil {
		return err
	}
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create warehouse: %w", err)
	}

	w.ID = dbModel.ID
	return nil
}

func (r *WarehouseRepository) GetByID(ctx context.Context, ownerID, warehouseID int64) (*domainWarehouse.Warehouse, error) {
	var dbModel models.WarehouseModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ? AND owner_id = ?", warehouseID, ownerID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainWarehouse.ErrWarehouseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get warehouse: %w", err)
	}

	return toWarehouseEntity(&dbModel)
}

func (r *WarehouseRepository) Update(ctx context.Context, w *domainWarehouse.Warehouse) error {
	w.UpdatedAt = time.Now().UTC()

	area, err := marshalArea(w.Area)
	if err != nil {
		return err
	}

	result := r.db.DB.WithContext(ctx).
		Model(&models.WarehouseModel{}).
		Where("id = ? AND owner_id = ?", w.ID, w.OwnerID).
		Updates(map[string]interface{}{
			"name":          w.Name,
			"location":      w.Location,
			"description":   w.Description,
			"type":          string(w.Type),
			"capacity":      w.Capacity,
			"height_m":      w.HeightM,
			"area":          area,
			"floor_area_m2": w.FloorAreaM2,
			"shelf_count":   w.ShelfCount,
			"is_active":     w.IsActive,
			"updated_at":    w.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update warehouse: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainWarehouse.ErrWarehouseNotFound
	}

	return nil
}

func (r *WarehouseRepository) Delete(ctx context.Context, ownerID, warehouseID int64) error {
	result := r.db.DB.WithContext(ctx).
		Where("id = ? AND owner_id = ?", warehouseID, ownerID).
		Delete(&models.WarehouseModel{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete warehouse: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainWarehouse.ErrWarehouseNotFound
	}

	return nil
}

func (r *WarehouseRepository) List(ctx context.Context, filter *domainWarehouse.Filter) ([]*domainWarehouse.Warehouse, int64, error) {
	var dbModels []models.WarehouseModel
	var total int64

	db := r.db.DB.WithContext(ctx).Model(&models.WarehouseModel{}).
		Where("owner_id = ?", filter.OwnerID)

	if filter.Type != nil {
		db = db.Where("type = ?", string(*filter.Type))
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		db = db.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(location) LIKE ? ESCAPE '\\')", pattern, pattern)
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count warehouses: %w", err)
	}

	sortBy, ok := warehouseSortColumns[filter.SortBy]
	if !ok {
		sortBy = "created_at"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	err := db.Order(fmt.Sprintf("%s %s, id %s", sortBy, sortOrder, sortOrder)).
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&dbModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list warehouses: %w", err)
	}

	warehouses := make([]*domainWarehouse.Warehouse, 0, len(dbModels))
	for i := range dbModels {
		w, err := toWarehouseEntity(&dbModels[i])
		if err != nil {
			return nil, 0, err
		}
		warehouses = append(warehouses, w)
	}

	return warehouses, total, nil
}

func (r *WarehouseRepository) GetStatistics(ctx context.Context, ownerID int64) (*domainWarehouse.Statistics, error) {
	var row struct {
		Total            int64
		Open             int64
		Closed           int64
		Active           int64
		TotalCapacity    int64
		TotalFloorAreaM2 float64 `gorm:"column:total_floor_area_m2"`
	}

	err := r.db.DB.WithContext(ctx).Raw(`
        SELECT
            COUNT(*) AS total,
            COALESCE(SUM(CASE WHEN type = 'open' THEN 1 ELSE 0 END), 0) AS open,
            COALESCE(SUM(CASE WHEN type = 'closed' THEN 1 ELSE 0 END), 0) AS closed,
            COALESCE(SUM(CASE WHEN is_active THEN 1 ELSE 0 END), 0) AS active,
            COALESCE(SUM(capacity), 0) AS total_capacity,
            COALESCE(SUM(floor_area_m2), 0) AS total_floor_area_m2
        FROM warehouses
        WHERE owner_id = ?
    `, ownerID).Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get statistics: %w", err)
	}

	return &domainWarehouse.Statistics{
		Total:            row.Total,
		Open:             row.Open,
		Closed:           row.Closed,
		Active:           row.Active,
		TotalCapacity:    row.TotalCapacity,
		TotalFloorAreaM2: row.TotalFloorAreaM2,
	}, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func marshalArea(a *domainWarehouse.AreaGeometry) (json.RawMessage, error) {
	if a == nil {
		return nil, nil
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to encode area: %w", err)
	}
	return raw, nil
}

func toWarehouseModel(w *domainWarehouse.Warehouse) (*models.WarehouseModel, error) {
	area, err := marshalArea(w.Area)
	if err != nil {
		return nil, err
	}
	return &models.WarehouseModel{
		ID:          w.ID,
		OwnerID:     w.OwnerID,
		Name:        w.Name,
		Location:    w.Location,
		Description: w.Description,
		Type:        string(w.Type),
		Capacity:    w.Capacity,
		HeightM:     w.HeightM,
		Area:        area,
		FloorAreaM2: w.FloorAreaM2,
		ShelfCount:  w.ShelfCount,
		IsActive:    w.IsActive,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}, nil
}

func toWarehouseEntity(m *models.WarehouseModel) (*domainWarehouse.Warehouse, error) {
	w := &domainWarehouse.Warehouse{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Name:        m.Name,
		Location:    m.Location,
		Description: m.Description,
		Type:        domainWarehouse.Type(m.Type),
		Capacity:    m.Capacity,
		HeightM:     m.HeightM,
		FloorAreaM2: m.FloorAreaM2,
		ShelfCount:  m.ShelfCount,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}

	if len(m.Area) > 0 && string(m.Area) != "null" {
		var area domainWarehouse.AreaGeometry
		if err := json.Unmarshal(m.Area, &area); err != nil {
			return nil, fmt.Errorf("failed to decode area of warehouse %d: %w", m.ID, err)
		}
		w.Area = &area
	}

	return w, nil
}
