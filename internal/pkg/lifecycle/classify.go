package lifecycle

import (
	"time"

	"github.com/Beki78/fetan-pay/app/models"
)

// Phase is the user-facing lifecycle position of a subscription.
type Phase string

const (
	PhaseTrial        Phase = "trial"
	PhaseActive       Phase = "active"
	PhaseExpiringSoon Phase = "expiring_soon"
	PhaseExpired      Phase = "expired"
	PhaseCancelled    Phase = "cancelled"
)

// DefaultExpiringSoonWindow is how close to EndDate a paid subscription is
// reported as expiring soon.
const DefaultExpiringSoonWindow = 3 * 24 * time.Hour

// Classify places sub in its lifecycle phase at now. An ACTIVE subscription
// whose EndDate is at or before now reads as expired even before the expiry
// sweep has flipped its status.
func Classify(sub *models.Subscription, tier Tier, now time.Time, window time.Duration) Phase {
	if sub == nil {
		return PhaseExpired
	}
	switch sub.Status {
	case models.SubscriptionStatusCancelled:
		return PhaseCancelled
	case models.SubscriptionStatusExpired:
		return PhaseExpired
	}
	if sub.EndDate != nil && !sub.EndDate.After(now) {
		return PhaseExpired
	}
	if _, ok := tier.(Trial); ok {
		return PhaseTrial
	}
	if sub.EndDate != nil && sub.EndDate.Sub(now) <= window {
		return PhaseExpiringSoon
	}
	return PhaseActive
}
