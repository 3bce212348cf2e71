package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/Beki78/fetan-pay/internal/pkg/database"
	"github.com/Beki78/fetan-pay/internal/pkg/env"
)

var errUsage = errors.New("usage")

// migrator is the subset of *migrate.Migrate the commands need.
type migrator interface {
	Up() error
	Steps(n int) error
	Migrate(version uint) error
	Force(version int) error
	Version() (uint, bool, error)
}

func main() {
	env.SetupEnvFile()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	dsn, err := database.DSNFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	m, err := migrate.New(env.GetEnv("MIGRATIONS_PATH", "file://migrations"), database.MigrationURL(dsn))
	if err != nil {
		log.Fatalf("init migrations: %v", err)
	}

	err = runCommand(m, os.Args[1:])

	if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
		log.Printf("closing migration resources: %v, %v", sourceErr, dbErr)
	}

	if errors.Is(err, errUsage) {
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func runCommand(m migrator, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "up":
		err := m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("no change: database is up to date")
			return nil
		}
		if err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		log.Println("migrations applied")

	case "down":
		if err := m.Steps(-1); err != nil {
			return fmt.Errorf("roll back last migration: %w", err)
		}
		log.Println("last migration rolled back")

	case "goto":
		version, err := versionArg(args)
		if err != nil {
			return err
		}
		err = m.Migrate(uint(version))
		if errors.Is(err, migrate.ErrNoChange) {
			log.Printf("no change: database already at version %d", version)
			return nil
		}
		if err != nil {
			return fmt.Errorf("migrate to version %d: %w", version, err)
		}
		log.Printf("migrated to version %d", version)

	case "force":
		version, err := versionArg(args)
		if err != nil {
			return err
		}
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("force version %d: %w", version, err)
		}
		log.Printf("version forced to %d", version)

	case "status":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Println("no migrations applied yet")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read migration version: %w", err)
		}
		suffix := ""
		if dirty {
			suffix = " (dirty)"
		}
		log.Printf("current migration version: %d%s", version, suffix)

	default:
		return errUsage
	}
	return nil
}

func versionArg(args []string) (uint64, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("%s needs a version number", args[0])
	}
	version, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", args[1], err)
	}
	return version, nil
}

func printUsage() {
	fmt.Println("Usage: go run ./cmd/migrate [command]")
	fmt.Println("Commands:")
	fmt.Println("  up      - apply all pending migrations")
	fmt.Println("  down    - roll back the last migration")
	fmt.Println("  goto N  - migrate to version N")
	fmt.Println("  force N - set version N without running migrations (clears dirty)")
	fmt.Println("  status  - show the current migration version")
}
