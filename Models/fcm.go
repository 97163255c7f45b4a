package Models

import (
	"gorm.io/gorm"
)

// FCMToken is a registered device token for push notifications. One row per
// device; re-registering the same value is a no-op.
type FCMToken struct {
	gorm.Model
	Value string `json:"value" gorm:"uniqueIndex;size:255"`
}

type UpdateTokenRequest struct {
	Value string `json:"value" validate:"required"`
}
