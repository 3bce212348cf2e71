package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Beki78/fetan-pay/app/models"
)

func TestClassify(t *testing.T) {
	now := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		v := now.Add(d)
		return &v
	}
	paid := Paid{Cycle: models.BillingCycleMonthly, Price: 199}
	trial := Trial{Days: TrialDays}

	tests := []struct {
		name string
		sub  *models.Subscription
		tier Tier
		want Phase
	}{
		{"cancelled wins", &models.Subscription{Status: models.SubscriptionStatusCancelled, EndDate: at(48 * time.Hour)}, paid, PhaseCancelled},
		{"expired status", &models.Subscription{Status: models.SubscriptionStatusExpired}, paid, PhaseExpired},
		{"active but past end", &models.Subscription{Status: models.SubscriptionStatusActive, EndDate: at(-time.Minute)}, paid, PhaseExpired},
		{"end exactly now", &models.Subscription{Status: models.SubscriptionStatusActive, EndDate: at(0)}, paid, PhaseExpired},
		{"trial running", &models.Subscription{Status: models.SubscriptionStatusActive, EndDate: at(24 * time.Hour)}, trial, PhaseTrial},
		{"trial past end", &models.Subscription{Status: models.SubscriptionStatusActive, EndDate: at(-24 * time.Hour)}, trial, PhaseExpired},
		{"paid inside window", &models.Subscription{Status: models.SubscriptionStatusActive, EndDate: at(72 * time.Hour)}, paid, PhaseExpiringSoon},
		{"paid outside window", &models.Subscription{Status: models.SubscriptionStatusActive, EndDate: at(10 * 24 * time.Hour)}, paid, PhaseActive},
		{"paid without end date", &models.Subscription{Status: models.SubscriptionStatusActive}, paid, PhaseActive},
		{"nil subscription", nil, paid, PhaseExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.sub, tt.tier, now, DefaultExpiringSoonWindow))
		})
	}
}
