package warehouse

import (
	"context"
	"time"

	"go.uber.org/zap"

	domainWarehouse "warehouse-manager/internal/domain/warehouse"
	"warehouse-manager/internal/logger"
	"warehouse-manager/pkg/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service implements warehouse use cases. Every call is scoped to ownerID.
type Service struct {
	warehouseRepo domainWarehouse.Repository
	publisher     domainWarehouse.EventPublisher
	now           func() time.Time
}

func NewService(warehouseRepo domainWarehouse.Repository, publisher domainWarehouse.EventPublisher) *Service {
	return &Service{
		warehouseRepo: warehouseRepo,
		publisher:     publisher,
		now:           time.Now,
	}
}

func (s *Service) CreateWarehouse(ctx context.Context, ownerID int64, req *CreateWarehouseRequest) (*WarehouseResponse, error) {
	sanitizeCreate(req)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	area, err := BuildArea(req.Area)
	if err != nil {
		return nil, err
	}

	w := &domainWarehouse.Warehouse{
		OwnerID:     ownerID,
		Name:        req.Name,
		Location:    req.Location,
		Description: req.Description,
		Type:        domainWarehouse.Type(req.Type),
		Capacity:    req.Capacity,
		HeightM:     req.HeightM,
		Area:        area,
		FloorAreaM2: req.FloorAreaM2,
		ShelfCount:  req.ShelfCount,
		IsActive:    true,
	}
	if req.IsActive != nil {
		w.IsActive = *req.IsActive
	}
	w.FloorAreaM2 = w.EffectiveFloorArea()

	if err := ValidateWarehouse(w); err != nil {
		return nil, err
	}

	if err := s.warehouseRepo.Create(ctx, w); err != nil {
		return nil, err
	}

	logger.Info("Warehouse created",
		zap.Int64("warehouse_id", w.ID),
		zap.Int64("owner_id", ownerID),
		zap.String("type", string(w.Type)),
		zap.String("event", "warehouse_created"),
	)
	s.publish(ctx, domainWarehouse.EventCreated, w)

	return ToWarehouseResponse(w), nil
}

func (s *Service) GetWarehouse(ctx context.Context, ownerID, warehouseID int64) (*WarehouseResponse, error) {
	w, err := s.warehouseRepo.GetByID(ctx, ownerID, warehouseID)
	if err != nil {
		return nil, err
	}

	return ToWarehouseResponse(w), nil
}

func (s *Service) ListWarehouses(ctx context.Context, ownerID int64, filter *WarehouseFilterRequest) (*WarehouseListResponse, error) {
	if filter == nil {
		filter = &WarehouseFilterRequest{}
	}
	if err := utils.ValidateStruct(filter); err != nil {
		return nil, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultPageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}

	warehouses, total, err := s.warehouseRepo.List(ctx, ToDomainFilter(ownerID, filter))
	if err != nil {
		return nil, err
	}

	responses := make([]WarehouseResponse, len(warehouses))
	for i, w := range warehouses {
		responses[i] = *ToWarehouseResponse(w)
	}

	totalPages := int(total) / filter.PageSize
	if int(total)%filter.PageSize > 0 {
		totalPages++
	}

	return &WarehouseListResponse{
		Warehouses: responses,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *Service) UpdateWarehouse(ctx context.Context, ownerID, warehouseID int64, req *UpdateWarehouseRequest) (*WarehouseResponse, error) {
	sanitizeUpdate(req)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	w, err := s.warehouseRepo.GetByID(ctx, ownerID, warehouseID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		w.Name = *req.Name
	}
	if req.Location != nil {
		w.Location = *req.Location
	}
	if req.Description != nil {
		w.Description = req.Description
	}
	if req.Type != nil {
		w.Type = domainWarehouse.Type(*req.Type)
	}
	if req.Capacity != nil {
		w.Capacity = *req.Capacity
	}
	if req.HeightM != nil {
		w.HeightM = req.HeightM
	}
	if req.Area != nil {
		area, err := BuildArea(req.Area)
		if err != nil {
			return nil, err
		}
		w.Area = area
		if req.FloorAreaM2 == nil {
			w.FloorAreaM2 = nil
		}
	}
	if req.FloorAreaM2 != nil {
		w.FloorAreaM2 = req.FloorAreaM2
	}
	if req.ShelfCount != nil {
		w.ShelfCount = *req.ShelfCount
	}
	if req.IsActive != nil {
		w.IsActive = *req.IsActive
	}
	w.FloorAreaM2 = w.EffectiveFloorArea()

	// the closed/height rule applies to the merged record, not the patch
	if err := ValidateWarehouse(w); err != nil {
		return nil, err
	}

	if err := s.warehouseRepo.Update(ctx, w); err != nil {
		return nil, err
	}

	logger.Info("Warehouse updated",
		zap.Int64("warehouse_id", w.ID),
		zap.Int64("owner_id", ownerID),
		zap.String("event", "warehouse_updated"),
	)
	s.publish(ctx, domainWarehouse.EventUpdated, w)

	return ToWarehouseResponse(w), nil
}

func (s *Service) DeleteWarehouse(ctx context.Context, ownerID, warehouseID int64) error {
	if err := s.warehouseRepo.Delete(ctx, ownerID, warehouseID); err != nil {
		return err
	}

	logger.Info("Warehouse deleted",
		zap.Int64("warehouse_id", warehouseID),
		zap.Int64("owner_id", ownerID),
		zap.String("event", "warehouse_deleted"),
	)
	s.publish(ctx, domainWarehouse.EventDeleted, &domainWarehouse.Warehouse{ID: warehouseID, OwnerID: ownerID})

	return nil
}

func (s *Service) GetStatistics(ctx context.Context, ownerID int64) (*WarehouseStatisticsResponse, error) {
	stats, err := s.warehouseRepo.GetStatistics(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return ToStatisticsResponse(stats), nil
}

// publish never fails the request; the mutation has already committed.
func (s *Service) publish(ctx context.Context, eventType domainWarehouse.EventType, w *domainWarehouse.Warehouse) {
	if s.publisher == nil {
		return
	}

	event := domainWarehouse.Event{
		Type:        eventType,
		WarehouseID: w.ID,
		OwnerID:     w.OwnerID,
		OccurredAt:  s.now(),
	}
	if eventType != domainWarehouse.EventDeleted {
		event.Warehouse = w
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish warehouse event",
			zap.Int64("warehouse_id", w.ID),
			zap.String("type", string(eventType)),
			zap.String("event", "warehouse_event_publish_failed"),
			zap.Error(err),
		)
	}
}

func sanitizeCreate(req *CreateWarehouseRequest) {
	req.Name = utils.SanitizeString(req.Name)
	req.Location = utils.SanitizeString(req.Location)
	req.Description = utils.SanitizeOptional(req.Description, utils.SanitizeText)
}

func sanitizeUpdate(req *UpdateWarehouseRequest) {
	req.Name = utils.SanitizeOptional(req.Name, utils.SanitizeString)
	req.Location = utils.SanitizeOptional(req.Location, utils.SanitizeString)
	req.Description = utils.SanitizeOptional(req.Description, utils.SanitizeText)
}
