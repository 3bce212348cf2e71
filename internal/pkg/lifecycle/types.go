package lifecycle

import "time"

// RunResult summarizes one pass of a batch job.
type RunResult struct {
	RunID     string    `json:"run_id"`
	Job       string    `json:"job"`
	Processed int       `json:"processed"`
	Updated   int       `json:"updated"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

// StatusReport is the lifecycle view of a merchant's current subscription.
type StatusReport struct {
	MerchantID      string     `json:"merchant_id"`
	SubscriptionID  string     `json:"subscription_id"`
	PlanID          string     `json:"plan_id"`
	PlanName        string     `json:"plan_name"`
	Tier            string     `json:"tier"`
	Status          string     `json:"status"`
	Phase           Phase      `json:"phase"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	NextBillingDate *time.Time `json:"next_billing_date,omitempty"`
	DaysRemaining   int        `json:"days_remaining"`
}

const (
	JobBackfill = "backfill_expirations"
	JobExpire   = "expire_due"
)
