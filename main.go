package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/banshee-data/emissions.report/internal/archive"
	"github.com/banshee-data/emissions.report/internal/config"
	"github.com/banshee-data/emissions.report/internal/replay"
	"github.com/banshee-data/emissions.report/internal/report"
	"github.com/banshee-data/emissions.report/internal/sustain"
	"github.com/banshee-data/emissions.report/internal/version"
)

var (
	configPath = flag.String("config", "", "Path to sustainability config JSON (optional)")
	ticksPath  = flag.String("ticks", "", "Path to JSONL tick capture (required)")
	outDir     = flag.String("out", "", "Override output directory for logs and summary")
	dbFile     = flag.String("db", "", "Optional sqlite file to archive the run into")

	migrateAction = flag.String("migrate", "", "Run a schema migration on -db and exit: up, down, version, force=<n>")
	migrationsDir = flag.String("migrations", "migrations", "Directory holding migration files")
)

// runMigrate dispatches one -migrate action against the archive.
func runMigrate(db *archive.DB, dir, action string) (string, error) {
	switch {
	case action == "up":
		if err := db.MigrateUp(dir); err != nil {
			return "", err
		}
		return "migrated up to latest", nil

	case action == "down":
		if err := db.MigrateDown(dir); err != nil {
			return "", err
		}
		return "rolled back one migration", nil

	case action == "version":
		v, dirty, err := db.MigrateVersion(dir)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("version=%d dirty=%v", v, dirty), nil

	case strings.HasPrefix(action, "force="):
		v, err := strconv.Atoi(strings.TrimPrefix(action, "force="))
		if err != nil {
			return "", fmt.Errorf("bad force version %q: %w", action, err)
		}
		if err := db.MigrateForce(dir, v); err != nil {
			return "", err
		}
		return fmt.Sprintf("forced version to %d", v), nil

	default:
		return "", fmt.Errorf("unknown migrate action %q (want up, down, version or force=<n>)", action)
	}
}

func main() {
	flag.Parse()

	log.Printf("emissions.report %s (%s)", version.Version, version.GitSHA)

	if *migrateAction != "" {
		if *dbFile == "" {
			log.Fatal("-migrate requires -db")
		}
		db, err := archive.NewDB(*dbFile)
		if err != nil {
			log.Fatalf("failed to open archive: %v", err)
		}
		defer db.Close()

		msg, err := runMigrate(db, *migrationsDir, *migrateAction)
		if err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		log.Printf("Migration: %s", msg)
		return
	}

	if *ticksPath == "" {
		log.Fatal("a tick capture is required (-ticks)")
	}

	cfg := &config.Config{}
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	evalCfg := cfg.EvaluatorConfig()
	if *outDir != "" {
		evalCfg.LogDir = *outDir
	}

	f, err := os.Open(*ticksPath)
	if err != nil {
		log.Fatalf("failed to open capture: %v", err)
	}
	ticks, err := replay.ReadTicks(f)
	f.Close()
	if err != nil {
		log.Fatalf("failed to read capture: %v", err)
	}
	if len(ticks) == 0 {
		log.Fatal("capture contains no ticks")
	}
	log.Printf("Loaded %d ticks from %s", len(ticks), *ticksPath)

	eval := sustain.NewEvaluator(evalCfg)
	runner := replay.NewRunner(eval, cfg.VehicleOverrides)
	if err := runner.Run(ticks); err != nil {
		log.Fatalf("replay failed: %v", err)
	}

	summary, err := eval.Finalize(eval.SummaryPath())
	if err != nil {
		log.Fatalf("failed to finalize run: %v", err)
	}
	log.Printf("Wrote summary for %d vehicles to %s", len(summary.Vehicles), eval.SummaryPath())

	stats := report.ComputeFleetStats(summary)
	log.Printf("Fleet: vehicles=%d mean_eco=%.1f p50=%.1f total_co2_g=%.1f distance_m=%.0f",
		stats.VehicleCount, stats.MeanEcoScore, stats.P50EcoScore, stats.TotalCO2G, stats.TotalDistanceM)

	if *dbFile != "" {
		db, err := archive.NewDB(*dbFile)
		if err != nil {
			log.Fatalf("failed to open archive: %v", err)
		}
		defer db.Close()

		runID, err := db.RecordRun(summary, evalCfg.LogDir)
		if err != nil {
			log.Fatalf("failed to archive run: %v", err)
		}
		log.Printf("Archived run %s to %s", runID, *dbFile)
	}
}
