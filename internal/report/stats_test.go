package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/banshee-data/emissions.report/internal/sustain"
)

func TestComputeFleetStats(t *testing.T) {
	summary := &sustain.Summary{
		Vehicles: []sustain.Results{
			{VehicleID: "v1", EcoScore: 90, EnergyWh: 100, RegenWh: 10, CO2Grams: 200, DistanceM: 2000},
			{VehicleID: "v2", EcoScore: 70, EnergyWh: 300, RegenWh: 30, CO2Grams: 600, DistanceM: 3000},
			{VehicleID: "v3", EcoScore: 80, EnergyWh: 200, RegenWh: 20, CO2Grams: 400, DistanceM: 5000},
		},
	}

	fs := ComputeFleetStats(summary)

	assert.Equal(t, 3, fs.VehicleCount)
	assert.InDelta(t, 80.0, fs.MeanEcoScore, 1e-9)
	assert.InDelta(t, 10.0, fs.StdDevEcoScore, 1e-9)
	assert.InDelta(t, 80.0, fs.P50EcoScore, 1e-9)
	assert.InDelta(t, 90.0, fs.P95EcoScore, 1e-9)
	assert.InDelta(t, 600.0, fs.TotalEnergyWh, 1e-9)
	assert.InDelta(t, 60.0, fs.TotalRegenWh, 1e-9)
	assert.InDelta(t, 1200.0, fs.TotalCO2G, 1e-9)
	assert.InDelta(t, 10000.0, fs.TotalDistanceM, 1e-9)
	assert.InDelta(t, 120.0, fs.MeanCO2PerKm, 1e-9)
}

func TestComputeFleetStatsSingleVehicle(t *testing.T) {
	summary := &sustain.Summary{
		Vehicles: []sustain.Results{
			{VehicleID: "solo", EcoScore: 85, CO2Grams: 50, DistanceM: 500},
		},
	}

	fs := ComputeFleetStats(summary)

	assert.Equal(t, 1, fs.VehicleCount)
	assert.InDelta(t, 85.0, fs.MeanEcoScore, 1e-9)
	assert.Zero(t, fs.StdDevEcoScore)
	assert.InDelta(t, 85.0, fs.P50EcoScore, 1e-9)
	assert.InDelta(t, 100.0, fs.MeanCO2PerKm, 1e-9)
}

func TestComputeFleetStatsEmpty(t *testing.T) {
	fs := ComputeFleetStats(&sustain.Summary{})
	assert.Equal(t, 0, fs.VehicleCount)
	assert.Zero(t, fs.MeanEcoScore)
	assert.Zero(t, fs.MeanCO2PerKm)
}

func TestComputeFleetStatsNoDistance(t *testing.T) {
	summary := &sustain.Summary{
		Vehicles: []sustain.Results{
			{VehicleID: "parked", EcoScore: 100, CO2Grams: 5, DistanceM: 0},
		},
	}

	fs := ComputeFleetStats(summary)
	assert.Zero(t, fs.MeanCO2PerKm)
}
