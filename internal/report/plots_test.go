package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/emissions.report/internal/fsutil"
	"github.com/banshee-data/emissions.report/internal/sustain"
	"github.com/banshee-data/emissions.report/internal/units"
)

const vehicleLogFixture = `timestamp,x,y,speed_m_s,long_accel_m_s2,jerk,power_w,dt_s,cumulative_energy_j,cumulative_co2_g,regen_j,eco_score
0.250,0.000,0.000,20.000,0.000,0.000,6863.167,0.2500,1715.792,0.124,0.000,100.00
0.500,5.000,0.000,20.000,0.000,0.000,6863.167,0.2500,3431.583,0.248,0.000,100.00
0.750,10.000,0.000,20.000,0.000,0.000,6863.167,0.2500,5147.375,0.372,0.000,100.00
`

func TestReadLogSeries(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	require.NoError(t, fs.WriteFile("logs/vehicle_ego_sustain.csv", []byte(vehicleLogFixture), 0o644))

	points, err := readLogSeries(fs, "logs/vehicle_ego_sustain.csv", "cumulative_energy_j")
	require.NoError(t, err)

	require.Len(t, points, 3)
	assert.InDelta(t, 0.25, points[0].X, 1e-9)
	assert.InDelta(t, 1715.792, points[0].Y, 1e-9)
	assert.InDelta(t, 5147.375, points[2].Y, 1e-9)

	speeds, err := readLogSeries(fs, "logs/vehicle_ego_sustain.csv", "speed_m_s")
	require.NoError(t, err)
	require.Len(t, speeds, 3)
	assert.InDelta(t, 20.0, speeds[0].Y, 1e-9)
}

func TestReadLogSeriesMissingColumns(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	require.NoError(t, fs.WriteFile("bad.csv", []byte("a,b\n1,2\n"), 0o644))

	_, err := readLogSeries(fs, "bad.csv", "cumulative_energy_j")
	assert.ErrorContains(t, err, "missing timestamp or cumulative_energy_j")
}

func TestReadLogSeriesMissingFile(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	_, err := readLogSeries(fs, "nope.csv", "cumulative_energy_j")
	assert.Error(t, err)
}

func TestPlotVehicleEnergy(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	require.NoError(t, fs.WriteFile("logs/vehicle_ego_sustain.csv", []byte(vehicleLogFixture), 0o644))

	out := filepath.Join(t.TempDir(), "energy.png")
	require.NoError(t, PlotVehicleEnergy(fs, map[string]string{"ego": "logs/vehicle_ego_sustain.csv"}, out))

	osfs := fsutil.OSFileSystem{}
	assert.True(t, osfs.Exists(out))
}

func TestPlotVehicleEnergyNoSamples(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	header := "timestamp,x,y,speed_m_s,long_accel_m_s2,jerk,power_w,dt_s,cumulative_energy_j,cumulative_co2_g,regen_j,eco_score\n"
	require.NoError(t, fs.WriteFile("empty.csv", []byte(header), 0o644))

	err := PlotVehicleEnergy(fs, map[string]string{"ego": "empty.csv"}, filepath.Join(t.TempDir(), "energy.png"))
	assert.ErrorContains(t, err, "no cumulative_energy_j samples")
}

func TestPlotVehicleSpeeds(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	require.NoError(t, fs.WriteFile("logs/vehicle_ego_sustain.csv", []byte(vehicleLogFixture), 0o644))

	logs := map[string]string{"ego": "logs/vehicle_ego_sustain.csv"}
	osfs := fsutil.OSFileSystem{}

	for _, unit := range units.ValidUnits {
		out := filepath.Join(t.TempDir(), "speed_"+unit+".png")
		require.NoError(t, PlotVehicleSpeeds(fs, logs, out, unit))
		assert.True(t, osfs.Exists(out))
	}
}

func TestPlotVehicleSpeedsRejectsUnknownUnits(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	err := PlotVehicleSpeeds(fs, nil, filepath.Join(t.TempDir(), "speed.png"), "furlongs")
	assert.ErrorContains(t, err, "invalid speed units")
}

func TestPlotEcoScores(t *testing.T) {
	summary := &sustain.Summary{
		Vehicles: []sustain.Results{
			{VehicleID: "v2", EcoScore: 72.5},
			{VehicleID: "v1", EcoScore: 91.0},
		},
	}

	out := filepath.Join(t.TempDir(), "scores.png")
	require.NoError(t, PlotEcoScores(summary, out))

	osfs := fsutil.OSFileSystem{}
	assert.True(t, osfs.Exists(out))
}

func TestPlotEcoScoresEmpty(t *testing.T) {
	err := PlotEcoScores(&sustain.Summary{}, filepath.Join(t.TempDir(), "scores.png"))
	assert.ErrorContains(t, err, "no vehicle results")
}

func TestCO2GridDense(t *testing.T) {
	g := newCO2Grid([]sustain.GridCellCO2{
		{I: 10, J: 20, CO2Grams: 1.5},
		{I: 12, J: 21, CO2Grams: 3.0},
	})
	require.NotNil(t, g)

	cols, rows := g.Dims()
	assert.Equal(t, 3, cols)
	assert.Equal(t, 2, rows)

	assert.InDelta(t, 1.5, g.Z(0, 0), 1e-9)
	assert.InDelta(t, 3.0, g.Z(2, 1), 1e-9)
	assert.Zero(t, g.Z(1, 0))

	assert.InDelta(t, 10.0, g.X(0), 1e-9)
	assert.InDelta(t, 12.0, g.X(2), 1e-9)
	assert.InDelta(t, 20.0, g.Y(0), 1e-9)
	assert.InDelta(t, 21.0, g.Y(1), 1e-9)
}

func TestPlotGridHeatmap(t *testing.T) {
	summary := &sustain.Summary{
		Grid: []sustain.GridCellCO2{
			{I: 0, J: 0, CO2Grams: 1},
			{I: 1, J: 0, CO2Grams: 2},
			{I: 0, J: 1, CO2Grams: 4},
		},
	}

	out := filepath.Join(t.TempDir(), "grid.png")
	require.NoError(t, PlotGridHeatmap(summary, out))

	osfs := fsutil.OSFileSystem{}
	assert.True(t, osfs.Exists(out))
}

func TestPlotGridHeatmapEmpty(t *testing.T) {
	err := PlotGridHeatmap(&sustain.Summary{}, filepath.Join(t.TempDir(), "grid.png"))
	assert.ErrorContains(t, err, "no grid cells")
}
