package lifecycle

import (
	"errors"
	"time"

	"github.com/Beki78/fetan-pay/app/models"
)

// Expiration is the outcome of ComputeExpiration. Applies is false when no
// rule covers the plan, in which case the dates must be left untouched.
type Expiration struct {
	EndDate         *time.Time
	NextBillingDate *time.Time
	Applies         bool
	Tier            Tier
}

// ComputeExpiration derives EndDate and NextBillingDate for sub.
//
// Trial plans end TrialDays after merchant.CreatedAt and do not rebill. Paid
// plans end, and rebill, one billing cycle after sub.StartDate. Unpriced
// plans produce an Expiration with Applies=false.
func ComputeExpiration(sub *models.Subscription, plan *models.Plan, merchant *models.Merchant) (Expiration, error) {
	return computeForTier(sub, ResolveTier(plan), merchant)
}

func computeForTier(sub *models.Subscription, tier Tier, merchant *models.Merchant) (Expiration, error) {
	switch t := tier.(type) {
	case Trial:
		if merchant == nil {
			return Expiration{Tier: tier}, errors.New("merchant is required for trial plans")
		}
		end := merchant.CreatedAt.AddDate(0, 0, t.Days)
		return Expiration{EndDate: &end, Applies: true, Tier: tier}, nil

	case Paid:
		if sub == nil {
			return Expiration{Tier: tier}, errors.New("subscription is required for paid plans")
		}
		end, err := AdvanceCycle(sub.StartDate, t.Cycle)
		if err != nil {
			return Expiration{Tier: tier}, err
		}
		next := end
		return Expiration{EndDate: &end, NextBillingDate: &next, Applies: true, Tier: tier}, nil

	default:
		return Expiration{Tier: tier}, nil
	}
}
