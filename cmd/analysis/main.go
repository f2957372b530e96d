// Command analysis turns a finished run's summary and vehicle logs into
// plots and fleet statistics: per-vehicle energy traces, an eco score
// bar chart, a grid heatmap PNG and an interactive HTML grid view.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"

	"github.com/banshee-data/emissions.report/internal/fsutil"
	"github.com/banshee-data/emissions.report/internal/report"
	"github.com/banshee-data/emissions.report/internal/sustain"
	"github.com/banshee-data/emissions.report/internal/units"
)

var (
	summaryPath = flag.String("summary", "cache/sustainability_logs/sustainability_summary.json", "Path to run summary JSON")
	logsDir     = flag.String("logs", "cache/sustainability_logs", "Directory holding per-vehicle CSV logs")
	outPrefix   = flag.String("out", "cache/sustainability_logs/report", "Output path prefix for generated artifacts")
	cellSize    = flag.Float64("cell-size", 50, "Grid cell size in meters (for chart labels)")
	speedUnits  = flag.String("speed-units", "mps", "Display units for the speed plot (mps, mph, kmph, kph)")
	renderHTML  = flag.Bool("html", true, "Also render the interactive HTML grid view")
)

var vehicleLogPattern = regexp.MustCompile(`vehicle_(.+)_sustain\.csv$`)

// findVehicleLogs maps vehicle ID to CSV path for every per-vehicle log
// in dir.
func findVehicleLogs(fs fsutil.FileSystem, dir string) (map[string]string, error) {
	matches, err := fs.Glob(filepath.Join(dir, "vehicle_*_sustain.csv"))
	if err != nil {
		return nil, fmt.Errorf("scan logs dir %s: %w", dir, err)
	}
	logs := make(map[string]string, len(matches))
	for _, path := range matches {
		m := vehicleLogPattern.FindStringSubmatch(filepath.Base(path))
		if m == nil {
			continue
		}
		logs[m[1]] = path
	}
	return logs, nil
}

func loadSummary(fs fsutil.FileSystem, path string) (*sustain.Summary, error) {
	raw, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read summary %s: %w", path, err)
	}
	var summary sustain.Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, fmt.Errorf("parse summary %s: %w", path, err)
	}
	return &summary, nil
}

func main() {
	flag.Parse()

	if !units.IsValid(*speedUnits) {
		log.Fatalf("invalid -speed-units %q (valid: %v)", *speedUnits, units.ValidUnits)
	}

	fs := fsutil.OSFileSystem{}

	summary, err := loadSummary(fs, *summaryPath)
	if err != nil {
		log.Fatalf("failed to load summary: %v", err)
	}

	stats := report.ComputeFleetStats(summary)
	statsJSON, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		log.Fatalf("failed to encode fleet stats: %v", err)
	}
	fmt.Println(string(statsJSON))

	if dir := filepath.Dir(*outPrefix); dir != "." {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("failed to create output dir: %v", err)
		}
	}

	if len(summary.Vehicles) > 0 {
		scoresOut := *outPrefix + "_eco_scores.png"
		if err := report.PlotEcoScores(summary, scoresOut); err != nil {
			log.Fatalf("failed to plot eco scores: %v", err)
		}
		log.Printf("Wrote %s", scoresOut)
	}

	logs, err := findVehicleLogs(fs, *logsDir)
	if err != nil {
		log.Fatalf("failed to find vehicle logs: %v", err)
	}
	if len(logs) > 0 {
		energyOut := *outPrefix + "_energy.png"
		if err := report.PlotVehicleEnergy(fs, logs, energyOut); err != nil {
			log.Printf("skipping energy plot: %v", err)
		} else {
			log.Printf("Wrote %s", energyOut)
		}

		speedOut := *outPrefix + "_speed.png"
		if err := report.PlotVehicleSpeeds(fs, logs, speedOut, *speedUnits); err != nil {
			log.Printf("skipping speed plot: %v", err)
		} else {
			log.Printf("Wrote %s", speedOut)
		}
	} else {
		log.Printf("no vehicle logs found in %s", *logsDir)
	}

	if len(summary.Grid) == 0 {
		log.Printf("summary has no grid cells; skipping grid charts")
		return
	}

	gridOut := *outPrefix + "_grid.png"
	if err := report.PlotGridHeatmap(summary, gridOut); err != nil {
		log.Fatalf("failed to plot grid heatmap: %v", err)
	}
	log.Printf("Wrote %s", gridOut)

	if *renderHTML {
		htmlOut := *outPrefix + "_grid.html"
		f, err := os.Create(htmlOut)
		if err != nil {
			log.Fatalf("failed to create %s: %v", htmlOut, err)
		}
		if err := report.RenderGridHTML(f, summary, *cellSize); err != nil {
			f.Close()
			log.Fatalf("failed to render grid HTML: %v", err)
		}
		if err := f.Close(); err != nil {
			log.Fatalf("failed to close %s: %v", htmlOut, err)
		}
		log.Printf("Wrote %s", htmlOut)
	}
}
