package sustain

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/emissions.report/internal/fsutil"
	"github.com/banshee-data/emissions.report/internal/monitoring"
)

func newTestEvaluator(fs fsutil.FileSystem) *Evaluator {
	return NewEvaluator(EvaluatorConfig{
		Bounds:    MapBounds{MinX: -1000, MinY: -1000, MaxX: 1000, MaxY: 1000},
		CellSizeM: 50,
		LogDir:    "logs",
		FS:        fs,
	})
}

func TestRegisterVehicleIsIdempotent(t *testing.T) {
	e := newTestEvaluator(fsutil.NewMemoryFileSystem())

	veh := newFakeVehicle("veh-1")
	require.NoError(t, e.RegisterVehicle(veh, nil))
	require.NoError(t, e.RegisterVehicle(veh, nil))

	other := newFakeVehicle("veh-1") // same id, different handle
	require.NoError(t, e.RegisterVehicle(other, nil))

	assert.Equal(t, 1, e.TrackerCount())
}

func TestUpdateIsolatesPerVehicleFailure(t *testing.T) {
	monitoring.SetLogger(nil)
	defer monitoring.SetLogger(nil)

	e := newTestEvaluator(fsutil.NewMemoryFileSystem())

	bad := newFakeVehicle("veh-bad")
	bad.kinErr = errSensorRead
	good := newFakeVehicle("veh-good")
	good.cruising(20, 0, Vec3{X: 10, Y: 10})

	require.NoError(t, e.RegisterVehicle(bad, nil))
	require.NoError(t, e.RegisterVehicle(good, nil))

	for i := 1; i <= 3; i++ {
		e.Update(Snapshot{ElapsedSeconds: float64(i), DeltaSeconds: 1})
	}

	summary, err := e.Finalize("")
	require.NoError(t, err)
	require.Len(t, summary.Vehicles, 2)

	var badR, goodR Results
	for _, r := range summary.Vehicles {
		switch r.VehicleID {
		case "veh-bad":
			badR = r
		case "veh-good":
			goodR = r
		}
	}
	assert.Zero(t, badR.DistanceM, "failing vehicle accumulates nothing")
	assert.InDelta(t, 60.0, goodR.DistanceM, 1e-9, "healthy vehicle keeps processing")
}

func TestGridCellDerivation(t *testing.T) {
	e := newTestEvaluator(fsutil.NewMemoryFileSystem())

	veh := newFakeVehicle("veh-1")
	veh.cruising(20, 0, Vec3{X: 125, Y: -75})
	require.NoError(t, e.RegisterVehicle(veh, nil))

	e.Update(Snapshot{ElapsedSeconds: 1, DeltaSeconds: 1})

	cells := e.GridCells()
	require.Len(t, cells, 1)
	// (125 - -1000)/50 = 22.5 -> 22; (-75 - -1000)/50 = 18.5 -> 18.
	assert.Equal(t, 22, cells[0].I)
	assert.Equal(t, 18, cells[0].J)
	assert.Greater(t, cells[0].CO2Grams, 0.0)
}

func TestGridAccumulatesCumulativeMass(t *testing.T) {
	e := newTestEvaluator(fsutil.NewMemoryFileSystem())

	veh := newFakeVehicle("veh-1")
	veh.cruising(20, 0, Vec3{X: 10, Y: 10})
	require.NoError(t, e.RegisterVehicle(veh, nil))

	e.Update(Snapshot{ElapsedSeconds: 1, DeltaSeconds: 1})
	afterOne := e.GridCells()[0].CO2Grams

	e.Update(Snapshot{ElapsedSeconds: 2, DeltaSeconds: 1})
	afterTwo := e.GridCells()[0].CO2Grams

	// The tracker's running total (not the tick delta) is re-added on
	// every tick the cell is occupied, so the cell grows by the
	// cumulative mass: c1 then c1 + 2*c1.
	assert.InDelta(t, 3*afterOne, afterTwo, afterOne*1e-9)
}

func TestFinalizeRoundTrip(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	e := newTestEvaluator(fs)

	for i := 0; i < 3; i++ {
		veh := newFakeVehicle(fmt.Sprintf("veh-%d", i))
		veh.cruising(15+float64(i)*5, 0, Vec3{X: float64(i) * 120, Y: 40})
		require.NoError(t, e.RegisterVehicle(veh, nil))
	}

	for i := 1; i <= 10; i++ {
		e.Update(Snapshot{ElapsedSeconds: float64(i) * 0.5, DeltaSeconds: 0.5})
	}

	summary, err := e.Finalize("")
	require.NoError(t, err)

	// Per-vehicle log sinks were created.
	for i := 0; i < 3; i++ {
		assert.True(t, fs.Exists(fmt.Sprintf("logs/vehicle_veh-%d_sustain.csv", i)))
	}

	// The written artifact parses back to the in-memory summary.
	data, err := fs.ReadFile("logs/sustainability_summary.json")
	require.NoError(t, err)

	var parsed Summary
	require.NoError(t, json.Unmarshal(data, &parsed))

	assert.Len(t, parsed.Vehicles, 3)
	if diff := cmp.Diff(*summary, parsed); diff != "" {
		t.Errorf("summary round-trip mismatch (-mem +file):\n%s", diff)
	}
}

func TestFinalizeIsTerminal(t *testing.T) {
	e := newTestEvaluator(fsutil.NewMemoryFileSystem())
	require.NoError(t, e.RegisterVehicle(newFakeVehicle("veh-1"), nil))

	_, err := e.Finalize("")
	require.NoError(t, err)

	_, err = e.Finalize("")
	assert.Error(t, err, "second finalize must fail")

	assert.Error(t, e.RegisterVehicle(newFakeVehicle("veh-2"), nil),
		"registration after finalize must fail")
}

// failingWriteFS wraps a FileSystem and fails every WriteFile call.
type failingWriteFS struct {
	fsutil.FileSystem
}

func (failingWriteFS) WriteFile(string, []byte, os.FileMode) error {
	return errors.New("disk full")
}

func TestFinalizeSurfacesSummaryWriteFailure(t *testing.T) {
	monitoring.SetLogger(nil)
	defer monitoring.SetLogger(nil)

	e := newTestEvaluator(failingWriteFS{fsutil.NewMemoryFileSystem()})
	require.NoError(t, e.RegisterVehicle(newFakeVehicle("veh-1"), nil))

	_, err := e.Finalize("")
	require.Error(t, err, "summary write failure is the one error Finalize must surface")
	assert.Contains(t, err.Error(), "disk full")
}

func TestEvaluatorDefaults(t *testing.T) {
	e := NewEvaluator(EvaluatorConfig{FS: fsutil.NewMemoryFileSystem()})

	assert.Equal(t, 50.0, e.cfg.CellSizeM)
	assert.Equal(t, DefaultMapBounds(), e.cfg.Bounds)
	assert.Equal(t, "cache/sustainability_logs/sustainability_summary.json", e.SummaryPath())
}
