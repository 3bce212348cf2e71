package lifecycle

import (
	"strings"

	"github.com/Beki78/fetan-pay/app/models"
)

// TrialDays is the length of the free-trial window granted by the Free plan.
const TrialDays = 7

// Tier is the billing treatment of a plan, resolved once from its row.
// The concrete types are Trial, Paid and Unpriced.
type Tier interface {
	tier()
	String() string
}

// Trial plans end a fixed number of days after the merchant signed up and never rebill.
type Trial struct {
	Days int
}

// Paid plans renew every Cycle for Price.
type Paid struct {
	Cycle models.BillingCycle
	Price float64
}

// Unpriced covers zero-price plans that are not the Free plan. No date rule
// applies to them.
type Unpriced struct{}

func (Trial) tier()    {}
func (Paid) tier()     {}
func (Unpriced) tier() {}

func (Trial) String() string    { return "trial" }
func (p Paid) String() string   { return "paid:" + strings.ToLower(string(p.Cycle)) }
func (Unpriced) String() string { return "unpriced" }

// ResolveTier maps a plan row to its tier. A nil plan resolves to Unpriced.
func ResolveTier(plan *models.Plan) Tier {
	if plan == nil {
		return Unpriced{}
	}
	if strings.EqualFold(strings.TrimSpace(plan.Name), models.FreePlanName) {
		return Trial{Days: TrialDays}
	}
	if plan.Price > 0 {
		return Paid{Cycle: normalizeCycle(plan.BillingCycle), Price: plan.Price}
	}
	return Unpriced{}
}

func normalizeCycle(cycle models.BillingCycle) models.BillingCycle {
	return models.BillingCycle(strings.ToUpper(strings.TrimSpace(string(cycle))))
}
