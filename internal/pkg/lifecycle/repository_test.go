package lifecycle

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqlRecorder keeps every statement GORM builds, with vars inlined.
type sqlRecorder struct {
	mu         sync.Mutex
	statements []string
}

func (r *sqlRecorder) LogMode(logger.LogLevel) logger.Interface { return r }

func (r *sqlRecorder) Info(context.Context, string, ...interface{}) {}

func (r *sqlRecorder) Warn(context.Context, string, ...interface{}) {}

func (r *sqlRecorder) Error(context.Context, string, ...interface{}) {}

func (r *sqlRecorder) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	sql, _ := fc()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statements = append(r.statements, strings.ReplaceAll(sql, "`", ""))
}

func (r *sqlRecorder) last(t *testing.T) string {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.statements)
	return r.statements[len(r.statements)-1]
}

// dryRunRepository builds SQL against the MySQL dialect without a server.
func dryRunRepository(t *testing.T) (Repository, *sqlRecorder) {
	t.Helper()
	rec := &sqlRecorder{}
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "user:pass@tcp(127.0.0.1:1)/fetanpay?parseTime=True&loc=UTC",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		DryRun:                 true,
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 rec,
	})
	require.NoError(t, err)
	return NewRepository(db), rec
}

func TestGormRepositoryUpdateExpirationSQL(t *testing.T) {
	repo, rec := dryRunRepository(t)
	end := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)

	_, err := repo.UpdateExpiration(context.Background(), "s1", &end, nil, fixedNow)
	require.NoError(t, err)

	sql := rec.last(t)
	assert.True(t, strings.HasPrefix(sql, "UPDATE subscriptions SET "), sql)
	assert.Contains(t, sql, "end_date='2024-01-08 00:00:00'")
	assert.Contains(t, sql, "next_billing_date=NULL")
	assert.Contains(t, sql, "updated_at='2024-04-01 08:00:00'")
	assert.True(t, strings.HasSuffix(sql, "WHERE id = 's1' AND end_date IS NULL"), sql)

	set := sql[:strings.Index(sql, " WHERE ")]
	for _, column := range []string{"status", "start_date", "plan_id", "merchant_id", "monthly_price", "created_at"} {
		assert.NotContains(t, set, column+"=", "only the expiration columns may be written")
	}
}

func TestGormRepositoryMarkExpiredSQL(t *testing.T) {
	repo, rec := dryRunRepository(t)

	_, err := repo.MarkExpired(context.Background(), "s2", fixedNow)
	require.NoError(t, err)

	sql := rec.last(t)
	assert.True(t, strings.HasPrefix(sql, "UPDATE subscriptions SET "), sql)
	assert.Contains(t, sql, "status='EXPIRED'")
	assert.Contains(t, sql, "updated_at='2024-04-01 08:00:00'")
	assert.Contains(t, sql, "WHERE id = 's2' AND status = 'ACTIVE' AND end_date IS NOT NULL AND end_date <= '2024-04-01 08:00:00'")

	set := sql[:strings.Index(sql, " WHERE ")]
	assert.NotContains(t, set, "end_date=")
	assert.NotContains(t, set, "next_billing_date=")
}

func TestGormRepositoryListQueries(t *testing.T) {
	repo, rec := dryRunRepository(t)
	ctx := context.Background()

	_, err := repo.ListActiveWithoutEndDate(ctx)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT * FROM subscriptions WHERE status = 'ACTIVE' AND end_date IS NULL ORDER BY start_date ASC",
		rec.last(t))

	_, err = repo.ListActiveEndedBefore(ctx, fixedNow)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT * FROM subscriptions WHERE status = 'ACTIVE' AND end_date IS NOT NULL AND end_date <= '2024-04-01 08:00:00' ORDER BY end_date ASC",
		rec.last(t))
}
