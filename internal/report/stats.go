// Package report produces post-run artifacts from a fleet summary:
// fleet-level statistics, PNG plots and an interactive HTML heatmap.
package report

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/emissions.report/internal/sustain"
)

// FleetStats holds aggregate statistics across all vehicles of a run.
type FleetStats struct {
	VehicleCount int `json:"vehicle_count"`

	MeanEcoScore   float64 `json:"mean_eco_score"`
	StdDevEcoScore float64 `json:"stddev_eco_score"`
	P50EcoScore    float64 `json:"p50_eco_score"`
	P85EcoScore    float64 `json:"p85_eco_score"`
	P95EcoScore    float64 `json:"p95_eco_score"`

	TotalEnergyWh  float64 `json:"total_energy_wh"`
	TotalRegenWh   float64 `json:"total_regen_wh"`
	TotalCO2G      float64 `json:"total_co2_g"`
	TotalDistanceM float64 `json:"total_distance_m"`

	// MeanCO2PerKm is the fleet's distance-weighted emission rate in
	// grams per kilometer. Zero when no distance was covered.
	MeanCO2PerKm float64 `json:"mean_co2_g_per_km"`
}

// ComputeFleetStats aggregates a summary into fleet statistics.
func ComputeFleetStats(summary *sustain.Summary) FleetStats {
	fs := FleetStats{VehicleCount: len(summary.Vehicles)}
	if fs.VehicleCount == 0 {
		return fs
	}

	scores := make([]float64, 0, len(summary.Vehicles))
	for _, v := range summary.Vehicles {
		scores = append(scores, v.EcoScore)
		fs.TotalEnergyWh += v.EnergyWh
		fs.TotalRegenWh += v.RegenWh
		fs.TotalCO2G += v.CO2Grams
		fs.TotalDistanceM += v.DistanceM
	}

	fs.MeanEcoScore = stat.Mean(scores, nil)
	if len(scores) > 1 {
		fs.StdDevEcoScore = stat.StdDev(scores, nil)
	}

	sort.Float64s(scores)
	fs.P50EcoScore = stat.Quantile(0.50, stat.Empirical, scores, nil)
	fs.P85EcoScore = stat.Quantile(0.85, stat.Empirical, scores, nil)
	fs.P95EcoScore = stat.Quantile(0.95, stat.Empirical, scores, nil)

	if fs.TotalDistanceM > 0 {
		fs.MeanCO2PerKm = fs.TotalCO2G / (fs.TotalDistanceM / 1000.0)
	}
	return fs
}
