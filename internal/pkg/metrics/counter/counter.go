package counter

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Beki78/fetan-pay/internal/pkg/lifecycle"
)

const jobCountersKeyPrefix = "jobs:counters:"

// JobTotals are cumulative counters for one batch job across all runs.
type JobTotals struct {
	Runs      int64  `json:"runs"`
	Processed int64  `json:"processed"`
	Updated   int64  `json:"updated"`
	Skipped   int64  `json:"skipped"`
	Failed    int64  `json:"failed"`
	Errors    int64  `json:"errors"`
	LastRunID string `json:"last_run_id,omitempty"`
	LastRunAt string `json:"last_run_at,omitempty"`
}

// Recorder keeps job totals in Redis hashes, one hash per job name.
type Recorder struct {
	client *redis.Client
}

func New(client *redis.Client) *Recorder {
	return &Recorder{client: client}
}

// Record adds a finished run to the totals. runErr marks runs that aborted.
func (r *Recorder) Record(ctx context.Context, res lifecycle.RunResult, runErr error) error {
	key := jobCountersKeyPrefix + res.Job
	pipe := r.client.TxPipeline()
	pipe.HIncrBy(ctx, key, "runs", 1)
	pipe.HIncrBy(ctx, key, "processed", int64(res.Processed))
	pipe.HIncrBy(ctx, key, "updated", int64(res.Updated))
	pipe.HIncrBy(ctx, key, "skipped", int64(res.Skipped))
	pipe.HIncrBy(ctx, key, "failed", int64(res.Failed))
	if runErr != nil {
		pipe.HIncrBy(ctx, key, "errors", 1)
	}
	pipe.HSet(ctx, key, "last_run_id", res.RunID, "last_run_at", res.EndedAt.UTC().Format(time.RFC3339))
	_, err := pipe.Exec(ctx)
	return err
}

// Snapshot returns the totals for each named job. Jobs never recorded are zero.
func (r *Recorder) Snapshot(ctx context.Context, jobs ...string) (map[string]JobTotals, error) {
	out := make(map[string]JobTotals, len(jobs))
	for _, job := range jobs {
		data, err := r.client.HGetAll(ctx, jobCountersKeyPrefix+job).Result()
		if err != nil {
			return nil, err
		}
		out[job] = JobTotals{
			Runs:      parseInt(data["runs"]),
			Processed: parseInt(data["processed"]),
			Updated:   parseInt(data["updated"]),
			Skipped:   parseInt(data["skipped"]),
			Failed:    parseInt(data["failed"]),
			Errors:    parseInt(data["errors"]),
			LastRunID: data["last_run_id"],
			LastRunAt: data["last_run_at"],
		}
	}
	return out, nil
}

func parseInt(v string) int64 {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
