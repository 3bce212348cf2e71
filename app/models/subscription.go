package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SubscriptionStatusActive    = "ACTIVE"
	SubscriptionStatusExpired   = "EXPIRED"
	SubscriptionStatusCancelled = "CANCELLED"
)

// Subscription ties a merchant to a plan. EndDate and NextBillingDate stay nil
// until the lifecycle backfill computes them.
type Subscription struct {
	ID              string     `gorm:"type:char(36);primaryKey" json:"id"`
	MerchantID      string     `gorm:"type:char(36);not null;index:idx_subscriptions_merchant_status,priority:1" json:"merchant_id"`
	PlanID          string     `gorm:"type:char(36);not null;index" json:"plan_id"`
	Status          string     `gorm:"type:varchar(16);not null;default:'ACTIVE';index:idx_subscriptions_merchant_status,priority:2;index:idx_subscriptions_status_end,priority:1" json:"status"`
	StartDate       time.Time  `gorm:"type:timestamp;not null" json:"start_date"`
	EndDate         *time.Time `gorm:"type:timestamp;default:null;index:idx_subscriptions_status_end,priority:2" json:"end_date,omitempty"`
	NextBillingDate *time.Time `gorm:"type:timestamp;default:null" json:"next_billing_date,omitempty"`
	MonthlyPrice    float64    `gorm:"type:decimal(12,2);not null;default:0" json:"monthly_price"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Plan     *Plan     `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	Merchant *Merchant `gorm:"foreignKey:MerchantID" json:"merchant,omitempty"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = SubscriptionStatusActive
	}
	return nil
}

// IsActive reports whether the subscription still holds the ACTIVE status.
func (s *Subscription) IsActive() bool {
	return s != nil && s.Status == SubscriptionStatusActive
}

// NeedsBackfill reports whether the corrective pass should compute dates for s.
func (s *Subscription) NeedsBackfill() bool {
	return s.IsActive() && s.EndDate == nil
}
