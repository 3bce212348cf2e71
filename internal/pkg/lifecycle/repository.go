package lifecycle

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Beki78/fetan-pay/app/models"
)

// Repository provides the DB operations used by the lifecycle service.
type Repository interface {
	ListActiveWithoutEndDate(ctx context.Context) ([]models.Subscription, error)
	ListActiveEndedBefore(ctx context.Context, now time.Time) ([]models.Subscription, error)
	GetPlan(ctx context.Context, id string) (*models.Plan, error)
	GetMerchant(ctx context.Context, id string) (*models.Merchant, error)
	FindCurrentSubscription(ctx context.Context, merchantID string) (*models.Subscription, error)
	UpdateExpiration(ctx context.Context, id string, endDate, nextBillingDate *time.Time, now time.Time) (bool, error)
	MarkExpired(ctx context.Context, id string, now time.Time) (bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a lifecycle repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) ListActiveWithoutEndDate(ctx context.Context) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_date IS NULL", models.SubscriptionStatusActive).
		Order("start_date ASC").
		Find(&subs).Error
	return subs, err
}

func (r *gormRepository) ListActiveEndedBefore(ctx context.Context, now time.Time) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_date IS NOT NULL AND end_date <= ?", models.SubscriptionStatusActive, now).
		Order("end_date ASC").
		Find(&subs).Error
	return subs, err
}

func (r *gormRepository) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *gormRepository) GetMerchant(ctx context.Context, id string) (*models.Merchant, error) {
	var merchant models.Merchant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&merchant).Error; err != nil {
		return nil, err
	}
	return &merchant, nil
}

// FindCurrentSubscription prefers an ACTIVE subscription and otherwise falls
// back to the most recently started one.
func (r *gormRepository) FindCurrentSubscription(ctx context.Context, merchantID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("merchant_id = ?", merchantID).
		Order("CASE WHEN status = '"+models.SubscriptionStatusActive+"' THEN 0 ELSE 1 END").
		Order("start_date DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// UpdateExpiration writes only end_date, next_billing_date and updated_at.
// Rows that gained an end_date since they were listed are left alone.
func (r *gormRepository) UpdateExpiration(ctx context.Context, id string, endDate, nextBillingDate *time.Time, now time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ? AND end_date IS NULL", id).
		UpdateColumns(map[string]interface{}{
			"end_date":          endDate,
			"next_billing_date": nextBillingDate,
			"updated_at":        now,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// MarkExpired re-checks status and end_date so a row renewed since it was
// listed stays ACTIVE.
func (r *gormRepository) MarkExpired(ctx context.Context, id string, now time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ? AND status = ? AND end_date IS NOT NULL AND end_date <= ?", id, models.SubscriptionStatusActive, now).
		UpdateColumns(map[string]interface{}{
			"status":     models.SubscriptionStatusExpired,
			"updated_at": now,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
