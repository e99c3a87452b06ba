package warehouse

import (
	"errors"

	appErrors "warehouse-manager/pkg/errors"
)

var (
	ErrWarehouseNotFound = appErrors.ErrWarehouseNotFound

	ErrInvalidType      = errors.New("type must be 'open' or 'closed'")
	ErrHeightRequired   = errors.New("height_m is required and must be positive for closed warehouses")
	ErrInvalidDimension = errors.New("capacity, shelf_count, height_m and floor_area_m2 must not be negative")
	ErrInvalidArea      = errors.New("invalid area geometry")
)
