package model

import (
	"time"

	"gorm.io/datatypes"
)

// Exception is a persisted failure, kept for diagnostics after the request
// that hit it has already answered with a generic error.
type Exception struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Service string `gorm:"size:100;index" json:"service"` // e.g. "strategy_dashboard"
	Module  string `gorm:"size:100;index" json:"module"`  // e.g. "strategies"
	Method  string `gorm:"size:100" json:"method"`        // e.g. "Create"

	Message string `gorm:"type:text" json:"message"`
	Stack   string `gorm:"type:text" json:"stack"`

	Level string `gorm:"size:20;index" json:"level"` // debug | info | warn | error | fatal

	Context datatypes.JSON `gorm:"type:text" json:"context,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (Exception) TableName() string { return "exceptions" }
