package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"safebite/internal/config"
	"safebite/internal/logger"
	"safebite/internal/repository/postgres"
)

const usage = "Usage: migrate [-dir db/migrations] [-seeds db/seeds] [up|down|steps N|version|seed]"

func main() {
	dir := flag.String("dir", "db/migrations", "migrations directory")
	seeds := flag.String("seeds", "db/seeds", "seed SQL directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	lg, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = lg.Sync() }()

	if flag.NArg() < 1 {
		fmt.Println(usage)
		os.Exit(1)
	}

	if flag.Arg(0) == "seed" {
		if err := applySeeds(cfg, *seeds, lg); err != nil {
			lg.Fatal("seeding failed", zap.Error(err))
		}
		return
	}

	m, err := migrate.New("file://"+filepath.ToSlash(*dir), cfg.DB.DSN())
	if err != nil {
		lg.Fatal("failed to create migrate instance", zap.Error(err))
	}
	defer m.Close()

	switch cmd := flag.Arg(0); cmd {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			lg.Fatal("migration up failed", zap.Error(err))
		}
		lg.Info("migrations applied")

	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			lg.Fatal("migration down failed", zap.Error(err))
		}
		lg.Info("migrations reverted")

	case "steps":
		if flag.NArg() < 2 {
			lg.Fatal("steps requires a number argument")
		}
		n, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			lg.Fatal("invalid steps argument", zap.Error(err))
		}
		if err := m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			lg.Fatal("migration steps failed", zap.Error(err))
		}
		lg.Info("applied migration steps", zap.Int("steps", n))

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			lg.Fatal("failed to get version", zap.Error(err))
		}
		fmt.Printf("version: %d, dirty: %v\n", version, dirty)

	default:
		fmt.Printf("unknown command: %s\n", cmd)
		fmt.Println(usage)
		os.Exit(1)
	}
}

// applySeeds executes every .sql file in dir in lexical order.
func applySeeds(cfg *config.Config, dir string, lg *zap.Logger) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("listing seeds: %w", err)
	}
	sort.Strings(files)

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("reading %s: %w", f, err)
		}
		if _, err := db.Exec(string(data)); err != nil {
			return fmt.Errorf("applying %s: %w", f, err)
		}
		lg.Info("seed applied", zap.String("file", f))
	}
	return nil
}
