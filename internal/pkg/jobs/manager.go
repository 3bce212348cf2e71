package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/Beki78/fetan-pay/internal/pkg/cache"
	"github.com/Beki78/fetan-pay/internal/pkg/env"
	"github.com/Beki78/fetan-pay/internal/pkg/lifecycle"
	metrics "github.com/Beki78/fetan-pay/internal/pkg/metrics/counter"
)

// ErrUnknownJob is returned by RunOnce for job names it does not know.
var ErrUnknownJob = errors.New("unknown job")

// Runner is the lifecycle work the manager schedules.
type Runner interface {
	BackfillExpirations(ctx context.Context) (lifecycle.RunResult, error)
	ExpireDue(ctx context.Context) (lifecycle.RunResult, error)
}

// Config holds the ticker intervals and lock lifetime.
type Config struct {
	BackfillInterval time.Duration
	ExpireInterval   time.Duration
	LockTTL          time.Duration
}

// ConfigFromEnv reads BACKFILL_INTERVAL_MINUTES, EXPIRE_INTERVAL_MINUTES and
// JOB_LOCK_TTL_MINUTES.
func ConfigFromEnv() Config {
	return Config{
		BackfillInterval: time.Duration(env.GetEnvInt("BACKFILL_INTERVAL_MINUTES", 60)) * time.Minute,
		ExpireInterval:   time.Duration(env.GetEnvInt("EXPIRE_INTERVAL_MINUTES", 15)) * time.Minute,
		LockTTL:          time.Duration(env.GetEnvInt("JOB_LOCK_TTL_MINUTES", 10)) * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	if c.BackfillInterval <= 0 {
		c.BackfillInterval = time.Hour
	}
	if c.ExpireInterval <= 0 {
		c.ExpireInterval = 15 * time.Minute
	}
	if c.LockTTL <= 0 {
		c.LockTTL = 10 * time.Minute
	}
	return c
}

// Manager runs the lifecycle batch jobs on tickers. When a cache store is set,
// each run holds a Redis lock so only one process works a job at a time.
type Manager struct {
	runner   Runner
	store    *cache.Store
	recorder *metrics.Recorder
	cfg      Config

	backfillTicker *time.Ticker
	expireTicker   *time.Ticker
	stopCh         chan struct{}
	cancel         context.CancelFunc
	ctx            context.Context
	wg             sync.WaitGroup
	mu             sync.Mutex
	running        bool
}

// NewManager creates a manager. store and recorder may be nil.
func NewManager(runner Runner, store *cache.Store, recorder *metrics.Recorder, cfg Config) *Manager {
	return &Manager{
		runner:   runner,
		store:    store,
		recorder: recorder,
		cfg:      cfg.withDefaults(),
		stopCh:   make(chan struct{}),
	}
}

// Start starts the background workers
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.running = true
	log.Info("[Jobs] Starting lifecycle workers")

	m.backfillTicker = time.NewTicker(m.cfg.BackfillInterval)
	m.wg.Add(1)
	go m.worker(lifecycle.JobBackfill, m.backfillTicker)

	m.expireTicker = time.NewTicker(m.cfg.ExpireInterval)
	m.wg.Add(1)
	go m.worker(lifecycle.JobExpire, m.expireTicker)

	log.Infof("[Jobs] Started (backfill every %s, expire every %s)", m.cfg.BackfillInterval, m.cfg.ExpireInterval)
}

// Stop stops the workers and waits for in-flight runs
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[Jobs] Stopping lifecycle workers...")
	if m.backfillTicker != nil {
		m.backfillTicker.Stop()
	}
	if m.expireTicker != nil {
		m.expireTicker.Stop()
	}

	close(m.stopCh)
	m.cancel()
	m.running = false

	m.wg.Wait()
	log.Info("[Jobs] Stopped successfully")
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Manager) worker(job string, ticker *time.Ticker) {
	defer m.wg.Done()
	stopCh := m.stopCh
	ctx := m.ctx

	for {
		select {
		case <-stopCh:
			log.Infof("[Jobs] %s worker stopping", job)
			return
		case <-ticker.C:
			if _, err := m.RunOnce(ctx, job); err != nil {
				if errors.Is(err, cache.ErrLockHeld) {
					log.Debugf("[Jobs] %s already running elsewhere, skipping tick", job)
					continue
				}
				log.Errorf("[Jobs] %s failed: %v", job, err)
			}
		}
	}
}

// RunOnce runs the named job now, under its lock, and records the result.
func (m *Manager) RunOnce(ctx context.Context, job string) (lifecycle.RunResult, error) {
	run, err := m.jobFunc(job)
	if err != nil {
		return lifecycle.RunResult{Job: job}, err
	}

	if m.store != nil {
		lock, err := m.store.AcquireLock(ctx, "jobs:"+job, m.cfg.LockTTL)
		if err != nil {
			return lifecycle.RunResult{Job: job}, err
		}
		defer func() {
			if rerr := lock.Release(context.Background()); rerr != nil {
				log.Warnf("[Jobs] Releasing %s lock failed: %v", job, rerr)
			}
		}()
	}

	res, runErr := run(ctx)
	if m.recorder != nil {
		if err := m.recorder.Record(context.Background(), res, runErr); err != nil {
			log.Warnf("[Jobs] Recording %s totals failed: %v", job, err)
		}
	}
	return res, runErr
}

func (m *Manager) jobFunc(job string) (func(context.Context) (lifecycle.RunResult, error), error) {
	switch job {
	case lifecycle.JobBackfill:
		return m.runner.BackfillExpirations, nil
	case lifecycle.JobExpire:
		return m.runner.ExpireDue, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, job)
	}
}
