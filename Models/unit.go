package Models

import (
	"time"
)

type UnitType string

const (
	UnitTruck   UnitType = "TRUCK"
	UnitTrailer UnitType = "TRAILER"
)

type UnitStatus string

const (
	UnitActive       UnitStatus = "ACTIVE"
	UnitNeedsRepair  UnitStatus = "NEEDS_REPAIR"
	UnitOutOfService UnitStatus = "OUT_OF_SERVICE"
)

// Unit represents a tracked fleet vehicle or trailer. The ID is the
// human-assigned fleet code (e.g. "GDC 01") and doubles as the primary key
// in both the local cache and the remote units table.
type Unit struct {
	ID             string     `json:"id" gorm:"primaryKey;size:50"`
	Name           string     `json:"name" gorm:"size:100;not null"`
	Type           UnitType   `json:"type" gorm:"size:20;not null"`
	Model          string     `json:"model" gorm:"size:100"`
	Status         UnitStatus `json:"status" gorm:"size:20;not null;index"`
	Mileage        *int64     `json:"mileage,omitempty"`
	LastInspection *time.Time `json:"lastInspection,omitempty"`
}

func (Unit) TableName() string {
	return "units"
}

func ValidUnitStatus(s UnitStatus) bool {
	switch s {
	case UnitActive, UnitNeedsRepair, UnitOutOfService:
		return true
	}
	return false
}

type UpdateUnitStatusRequest struct {
	Status UnitStatus `json:"status" validate:"required"`
}
