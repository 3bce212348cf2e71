package apiv1

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/Beki78/fetan-pay/internal/pkg/cache"
	"github.com/Beki78/fetan-pay/internal/pkg/jobs"
	"github.com/Beki78/fetan-pay/internal/pkg/lifecycle"
	metrics "github.com/Beki78/fetan-pay/internal/pkg/metrics/counter"
)

const statusCacheKeyPrefix = "status:merchant:"

// DefaultStatusTTL is how long a merchant status report is served from cache.
const DefaultStatusTTL = 30 * time.Second

// StatusService resolves the lifecycle status of a merchant.
type StatusService interface {
	MerchantStatus(ctx context.Context, merchantID string) (*lifecycle.StatusReport, error)
}

// JobRunner triggers a lifecycle batch job on demand.
type JobRunner interface {
	RunOnce(ctx context.Context, job string) (lifecycle.RunResult, error)
}

// StatsSource reports cumulative job totals.
type StatsSource interface {
	Snapshot(ctx context.Context, jobs ...string) (map[string]metrics.JobTotals, error)
}

// APIServer serves the v1 lifecycle endpoints.
type APIServer struct {
	status    StatusService
	jobs      JobRunner
	stats     StatsSource
	cache     *cache.Store
	statusTTL time.Duration
}

// NewAPIServer creates a new API server instance. stats and store may be nil.
func NewAPIServer(status StatusService, runner JobRunner, stats StatsSource, store *cache.Store) *APIServer {
	return &APIServer{
		status:    status,
		jobs:      runner,
		stats:     stats,
		cache:     store,
		statusTTL: DefaultStatusTTL,
	}
}

// Pong is the ping response body.
type Pong struct {
	Ping string `json:"ping"`
}

// RegisterHandlers mounts the v1 routes. admin guards the job endpoints.
func RegisterHandlers(router fiber.Router, s *APIServer, admin fiber.Handler) {
	router.Get("/ping", s.GetPing)
	router.Get("/merchants/:id/subscription", s.GetMerchantSubscription)

	adm := router.Group("/admin", admin)
	adm.Post("/subscriptions/backfill", s.PostBackfill)
	adm.Post("/subscriptions/expire", s.PostExpire)
	adm.Get("/jobs/stats", s.GetJobStats)
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(Pong{Ping: "pong"})
}

// GetMerchantSubscription returns the lifecycle status of a merchant's current subscription.
func (s *APIServer) GetMerchantSubscription(c *fiber.Ctx) error {
	merchantID := c.Params("id")
	if merchantID == "" {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "merchant id missing")
	}
	ctx := c.UserContext()
	key := statusCacheKeyPrefix + merchantID

	if s.cache != nil {
		var cached lifecycle.StatusReport
		found, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			log.Warnf("[API] Status cache read for %s failed: %v", merchantID, err)
		} else if found {
			c.Set("X-Cache", "HIT")
			return c.JSON(cached)
		}
	}

	report, err := s.status.MerchantStatus(ctx, merchantID)
	if err != nil {
		if errors.Is(err, lifecycle.ErrSubscriptionNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "merchant has no subscription")
		}
		log.Errorf("[API] Status lookup for %s failed: %v", merchantID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "status lookup failed")
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, report, s.statusTTL); err != nil {
			log.Warnf("[API] Status cache write for %s failed: %v", merchantID, err)
		}
	}
	c.Set("X-Cache", "MISS")
	return c.JSON(report)
}

// PostBackfill runs the expiration backfill immediately.
func (s *APIServer) PostBackfill(c *fiber.Ctx) error {
	return s.runJob(c, lifecycle.JobBackfill)
}

// PostExpire runs the expiry sweep immediately.
func (s *APIServer) PostExpire(c *fiber.Ctx) error {
	return s.runJob(c, lifecycle.JobExpire)
}

// GetJobStats returns cumulative totals for both lifecycle jobs.
func (s *APIServer) GetJobStats(c *fiber.Ctx) error {
	if s.stats == nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "unavailable", "job stats are not configured")
	}
	snap, err := s.stats.Snapshot(c.UserContext(), lifecycle.JobBackfill, lifecycle.JobExpire)
	if err != nil {
		log.Errorf("[API] Job stats failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "job stats unavailable")
	}
	return c.JSON(snap)
}

func (s *APIServer) runJob(c *fiber.Ctx, job string) error {
	res, err := s.jobs.RunOnce(c.UserContext(), job)
	if err != nil {
		switch {
		case errors.Is(err, cache.ErrLockHeld):
			return jsonError(c, fiber.StatusConflict, "conflict", job+" is already running")
		case errors.Is(err, jobs.ErrUnknownJob):
			return jsonError(c, fiber.StatusNotFound, "not_found", err.Error())
		}
		log.Errorf("[API] %s failed: %v", job, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_server_error",
			"message": err.Error(),
			"result":  res,
		})
	}

	if s.cache != nil && res.Updated > 0 {
		if err := s.cache.DeletePattern(c.UserContext(), statusCacheKeyPrefix+"*"); err != nil {
			log.Warnf("[API] Status cache invalidation failed: %v", err)
		}
	}
	return c.JSON(res)
}

func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message})
}
