package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BillingCycle is the recurrence unit of a paid plan.
type BillingCycle string

const (
	BillingCycleDaily   BillingCycle = "DAILY"
	BillingCycleWeekly  BillingCycle = "WEEKLY"
	BillingCycleMonthly BillingCycle = "MONTHLY"
	BillingCycleYearly  BillingCycle = "YEARLY"
)

const (
	PlanStatusActive   = "ACTIVE"
	PlanStatusInactive = "INACTIVE"
)

// FreePlanName is the plan name that grants the trial window instead of billing.
const FreePlanName = "Free"

// Plan is immutable once referenced by active subscriptions, except via admin edit.
type Plan struct {
	ID                string         `gorm:"type:char(36);primaryKey" json:"id"`
	Name              string         `gorm:"type:varchar(100);not null;uniqueIndex" json:"name" validate:"required,max=100"`
	Price             float64        `gorm:"type:decimal(12,2);not null;default:0" json:"price" validate:"gte=0"`
	BillingCycle      BillingCycle   `gorm:"type:varchar(16);not null;default:'MONTHLY'" json:"billing_cycle" validate:"oneof=DAILY WEEKLY MONTHLY YEARLY"`
	VerificationLimit int            `gorm:"not null;default:0" json:"verification_limit" validate:"gte=0"`
	APILimit          int            `gorm:"not null;default:0" json:"api_limit" validate:"gte=0"`
	Features          datatypes.JSON `gorm:"type:json" json:"features"`
	Status            string         `gorm:"type:varchar(16);not null;default:'ACTIVE';index" json:"status" validate:"oneof=ACTIVE INACTIVE"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Plan) TableName() string {
	return "plans"
}

func (p *Plan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = PlanStatusActive
	}
	return nil
}

// Validate checks field constraints before an admin create or edit.
func (p *Plan) Validate() error {
	return validator.New().Struct(p)
}
