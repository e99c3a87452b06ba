package warehouse

import (
	"encoding/json"
	"time"
)

// Warehouse represents a warehouse owned by a single user
type Warehouse struct {
	ID          int64
	OwnerID     int64
	Name        string
	Location    string
	Description *string
	Type        Type
	Capacity    int
	HeightM     *float64
	Area        *AreaGeometry
	FloorAreaM2 *float64
	ShelfCount  int
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Type distinguishes open yards from enclosed buildings
type Type string

const (
	TypeOpen   Type = "open"
	TypeClosed Type = "closed"
)

func (t Type) IsValid() bool {
	return t == TypeOpen || t == TypeClosed
}

// AreaGeometry is the footprint drawn on the map or typed in manually.
// GeoJSON is kept opaque.
type AreaGeometry struct {
	Method           string          `json:"method"`
	WidthM           *float64        `json:"width_m,omitempty"`
	LengthM          *float64        `json:"length_m,omitempty"`
	GeoJSON          json.RawMessage `json:"geojson_data,omitempty"`
	CalculatedAreaM2 *float64        `json:"calculated_area_m2,omitempty"`
}

const (
	AreaMethodMap    = "map"
	AreaMethodManual = "manual"
)

// Validate enforces the closed-requires-height rule and non-negative counters.
func (w *Warehouse) Validate() error {
	if !w.Type.IsValid() {
		return ErrInvalidType
	}
	if w.Type == TypeClosed && (w.HeightM == nil || *w.HeightM <= 0) {
		return ErrHeightRequired
	}
	if w.HeightM != nil && *w.HeightM < 0 {
		return ErrInvalidDimension
	}
	if w.Capacity < 0 || w.ShelfCount < 0 {
		return ErrInvalidDimension
	}
	if w.FloorAreaM2 != nil && *w.FloorAreaM2 < 0 {
		return ErrInvalidDimension
	}
	return nil
}

// EffectiveFloorArea falls back to the calculated footprint.
func (w *Warehouse) EffectiveFloorArea() *float64 {
	if w.FloorAreaM2 != nil {
		return w.FloorAreaM2
	}
	if w.Area != nil {
		return w.Area.CalculatedAreaM2
	}
	return nil
}
