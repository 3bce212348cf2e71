package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MERCHANT_STATUS_ACTIVE    = "ACTIVE"
	MERCHANT_STATUS_PENDING   = "PENDING"
	MERCHANT_STATUS_SUSPENDED = "SUSPENDED"
)

// Merchant owns subscriptions. CreatedAt anchors the free-trial window.
type Merchant struct {
	ID        string         `gorm:"type:char(36);primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	Email     string         `gorm:"type:varchar(200);uniqueIndex" json:"email" validate:"omitempty,email,max=200"`
	Status    string         `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status" validate:"oneof=ACTIVE PENDING SUSPENDED"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Merchant) TableName() string {
	return "merchants"
}

func (m *Merchant) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = MERCHANT_STATUS_ACTIVE
	}
	return nil
}

func (m *Merchant) Validate() error {
	return validator.New().Struct(m)
}
