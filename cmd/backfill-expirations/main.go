// Command backfill-expirations fills end_date and next_billing_date for every
// ACTIVE subscription that is still missing them, then exits.
package main

import (
	"context"
	"log"
	"os"

	"github.com/Beki78/fetan-pay/internal/pkg/database"
	"github.com/Beki78/fetan-pay/internal/pkg/env"
	"github.com/Beki78/fetan-pay/internal/pkg/lifecycle"
)

func main() {
	os.Exit(guard(run))
}

// guard turns a panic in fn into exit code 1.
func guard(fn func() int) (code int) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("backfill panicked: %v", r)
			code = 1
		}
	}()
	return fn()
}

func run() int {
	env.SetupEnvFile()

	dsn, err := database.DSNFromEnv()
	if err != nil {
		log.Printf("backfill: %v", err)
		return 1
	}

	db, err := database.Open(dsn)
	if err != nil {
		log.Printf("backfill: %v", err)
		return 1
	}
	defer database.Close(db)

	res, err := lifecycle.NewServiceFromDB(db).BackfillExpirations(context.Background())
	if err != nil {
		log.Printf("backfill failed after %d subscriptions: %+v", res.Processed, err)
		return 1
	}

	log.Printf("backfill %s done: processed=%d updated=%d skipped=%d failed=%d",
		res.RunID, res.Processed, res.Updated, res.Skipped, res.Failed)
	return 0
}
