package warehouse

import (
	"context"
)

// Repository defines warehouse persistence. Every lookup is scoped by owner;
// a record owned by someone else is reported as ErrWarehouseNotFound.
type Repository interface {
	Create(ctx context.Context, warehouse *Warehouse) error
	GetByID(ctx context.Context, ownerID, warehouseID int64) (*Warehouse, error)
	Update(ctx context.Context, warehouse *Warehouse) error
	Delete(ctx context.Context, ownerID, warehouseID int64) error
	List(ctx context.Context, filter *Filter) ([]*Warehouse, int64, error)
	GetStatistics(ctx context.Context, ownerID int64) (*Statistics, error)
}

// Filter represents filtering options for listing warehouses
type Filter struct {
	OwnerID   int64
	Type      *Type
	IsActive  *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

type Statistics struct {
	Total            int64
	Open             int64
	Closed           int64
	Active           int64
	TotalCapacity    int64
	TotalFloorAreaM2 float64
}
