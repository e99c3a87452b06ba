package models

import (
	"encoding/json"
	"time"
)

// WarehouseModel represents the database model for Warehouse.
// IsActive carries no gorm default so an explicit false is inserted as false.
type WarehouseModel struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	OwnerID     int64           `gorm:"not null;index:idx_warehouses_owner_id"`
	Owner       *UserModel      `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	Name        string          `gorm:"type:varchar(100);not null"`
	Location    string          `gorm:"type:varchar(255);not null"`
	Description *string         `gorm:"type:text"`
	Type        string          `gorm:"type:varchar(10);not null"`
	Capacity    int             `gorm:"not null"`
	HeightM     *float64        `gorm:"column:height_m"`
	Area        json.RawMessage `gorm:"type:jsonb"`
	FloorAreaM2 *float64        `gorm:"column:floor_area_m2"`
	ShelfCount  int             `gorm:"not null"`
	IsActive    bool            `gorm:"not null"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

func (WarehouseModel) TableName() string {
	return "warehouses"
}
