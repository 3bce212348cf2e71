package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Beki78/fetan-pay/app/models"
)

// ErrSubscriptionNotFound is returned when a merchant has no subscription at all.
var ErrSubscriptionNotFound = errors.New("subscription not found")

// Service runs the lifecycle batch passes and status lookups against an
// injected repository.
type Service struct {
	repo   Repository
	now    func() time.Time
	window time.Duration
}

// NewService creates a lifecycle service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{
		repo:   repo,
		now:    func() time.Time { return time.Now().UTC() },
		window: DefaultExpiringSoonWindow,
	}
}

// NewServiceFromDB creates a lifecycle service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// WithClock replaces the time source, mainly for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// WithExpiringSoonWindow sets how close to EndDate a subscription reads as expiring soon.
func (s *Service) WithExpiringSoonWindow(d time.Duration) *Service {
	if d > 0 {
		s.window = d
	}
	return s
}

// BackfillExpirations computes EndDate/NextBillingDate for every ACTIVE
// subscription that has no EndDate yet. Records are handled one at a time; a
// record whose plan or merchant cannot be loaded, or whose write fails, is
// logged and counted as failed while the pass continues. Only a failure to
// list the candidates aborts the run.
func (s *Service) BackfillExpirations(ctx context.Context) (RunResult, error) {
	res := s.startRun(JobBackfill)

	subs, err := s.repo.ListActiveWithoutEndDate(ctx)
	if err != nil {
		return s.finishRun(res), fmt.Errorf("list subscriptions without end date: %w", err)
	}
	log.Infof("[Lifecycle] Backfill %s: %d subscriptions without end date", res.RunID, len(subs))

	plans := make(map[string]*models.Plan)
	for i := range subs {
		if err := ctx.Err(); err != nil {
			return s.finishRun(res), err
		}
		sub := &subs[i]
		res.Processed++

		if !sub.NeedsBackfill() {
			res.Skipped++
			continue
		}

		plan, ok := plans[sub.PlanID]
		if !ok {
			plan, err = s.repo.GetPlan(ctx, sub.PlanID)
			if err != nil {
				log.Errorf("[Lifecycle] Subscription %s: loading plan %s failed: %v", sub.ID, sub.PlanID, err)
				res.Failed++
				continue
			}
			plans[sub.PlanID] = plan
		}

		merchant, err := s.repo.GetMerchant(ctx, sub.MerchantID)
		if err != nil {
			log.Errorf("[Lifecycle] Subscription %s: loading merchant %s failed: %v", sub.ID, sub.MerchantID, err)
			res.Failed++
			continue
		}

		exp, err := computeForTier(sub, ResolveTier(plan), merchant)
		if err != nil {
			log.Errorf("[Lifecycle] Subscription %s: computing expiration failed: %v", sub.ID, err)
			res.Failed++
			continue
		}
		if !exp.Applies {
			log.Warnf("[Lifecycle] Subscription %s: plan %q (%s) has no expiration rule, leaving dates untouched", sub.ID, plan.Name, exp.Tier)
			res.Skipped++
			continue
		}

		updated, err := s.repo.UpdateExpiration(ctx, sub.ID, exp.EndDate, exp.NextBillingDate, s.now())
		if err != nil {
			log.Errorf("[Lifecycle] Subscription %s: writing expiration failed: %v", sub.ID, err)
			res.Failed++
			continue
		}
		if !updated {
			log.Debugf("[Lifecycle] Subscription %s already has an end date, skipping", sub.ID)
			res.Skipped++
			continue
		}

		res.Updated++
		log.Debugf("[Lifecycle] Subscription %s (%s): end=%s", sub.ID, exp.Tier, exp.EndDate.Format(time.RFC3339))
	}

	res = s.finishRun(res)
	log.Infof("[Lifecycle] Backfill %s finished: processed=%d updated=%d skipped=%d failed=%d",
		res.RunID, res.Processed, res.Updated, res.Skipped, res.Failed)
	return res, nil
}

// ExpireDue moves ACTIVE subscriptions whose EndDate has passed to EXPIRED,
// with the same per-record failure tolerance as BackfillExpirations.
func (s *Service) ExpireDue(ctx context.Context) (RunResult, error) {
	res := s.startRun(JobExpire)

	subs, err := s.repo.ListActiveEndedBefore(ctx, res.StartedAt)
	if err != nil {
		return s.finishRun(res), fmt.Errorf("list due subscriptions: %w", err)
	}

	for i := range subs {
		if err := ctx.Err(); err != nil {
			return s.finishRun(res), err
		}
		sub := &subs[i]
		res.Processed++

		if sub.EndDate == nil || sub.EndDate.After(res.StartedAt) {
			res.Skipped++
			continue
		}

		changed, err := s.repo.MarkExpired(ctx, sub.ID, s.now())
		if err != nil {
			log.Errorf("[Lifecycle] Subscription %s: marking expired failed: %v", sub.ID, err)
			res.Failed++
			continue
		}
		if !changed {
			res.Skipped++
			continue
		}
		res.Updated++
	}

	res = s.finishRun(res)
	log.Infof("[Lifecycle] Expiry %s finished: processed=%d expired=%d skipped=%d failed=%d",
		res.RunID, res.Processed, res.Updated, res.Skipped, res.Failed)
	return res, nil
}

// MerchantStatus reports the lifecycle phase of a merchant's current subscription.
func (s *Service) MerchantStatus(ctx context.Context, merchantID string) (*StatusReport, error) {
	if merchantID == "" {
		return nil, errors.New("merchant_id is required")
	}

	sub, err := s.repo.FindCurrentSubscription(ctx, merchantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}

	plan := sub.Plan
	if plan == nil {
		plan, err = s.repo.GetPlan(ctx, sub.PlanID)
		if err != nil {
			return nil, fmt.Errorf("load plan %s: %w", sub.PlanID, err)
		}
	}

	now := s.now()
	tier := ResolveTier(plan)
	return &StatusReport{
		MerchantID:      merchantID,
		SubscriptionID:  sub.ID,
		PlanID:          plan.ID,
		PlanName:        plan.Name,
		Tier:            tier.String(),
		Status:          sub.Status,
		Phase:           Classify(sub, tier, now, s.window),
		StartDate:       sub.StartDate,
		EndDate:         sub.EndDate,
		NextBillingDate: sub.NextBillingDate,
		DaysRemaining:   daysRemaining(sub.EndDate, now),
	}, nil
}

func (s *Service) startRun(job string) RunResult {
	return RunResult{RunID: uuid.NewString(), Job: job, StartedAt: s.now()}
}

func (s *Service) finishRun(res RunResult) RunResult {
	res.EndedAt = s.now()
	return res
}

// daysRemaining rounds partial days up; past or missing end dates give 0.
func daysRemaining(end *time.Time, now time.Time) int {
	if end == nil || !end.After(now) {
		return 0
	}
	return int(math.Ceil(end.Sub(now).Hours() / 24))
}
