package sustain

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"sort"

	"github.com/banshee-data/emissions.report/internal/emissions"
	"github.com/banshee-data/emissions.report/internal/fsutil"
	"github.com/banshee-data/emissions.report/internal/monitoring"
)

// MapBounds is the axis-aligned bounding box of the simulated map, in
// map coordinates (meters).
type MapBounds struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// DefaultMapBounds covers a 2x2 km map centered on the origin.
func DefaultMapBounds() MapBounds {
	return MapBounds{MinX: -1000, MinY: -1000, MaxX: 1000, MaxY: 1000}
}

// GridCell indexes one fixed-size square region of the map.
type GridCell struct {
	I int `json:"i"`
	J int `json:"j"`
}

// GridCellCO2 is one non-empty grid cell in the fleet summary.
type GridCellCO2 struct {
	I        int     `json:"i"`
	J        int     `json:"j"`
	CO2Grams float64 `json:"co2_g"`
}

// Summary is the fleet-wide artifact written by Finalize.
type Summary struct {
	Vehicles []Results     `json:"vehicles"`
	Grid     []GridCellCO2 `json:"grid"`
}

// EvaluatorConfig configures the fleet evaluator. Bounds and cell size
// are immutable once the evaluator is constructed.
type EvaluatorConfig struct {
	Bounds    MapBounds
	CellSizeM float64

	// LogDir is where per-vehicle logs and the summary are written.
	LogDir string

	// Model is the fleet-wide powertrain override passed to trackers.
	Model emissions.Powertrain

	// SampleHz and GridGramsPerKWh are passed through to trackers.
	SampleHz        float64
	GridGramsPerKWh float64

	// FS is the filesystem for logs and the summary. Defaults to the
	// real filesystem.
	FS fsutil.FileSystem
}

// Evaluator manages one tracker per registered vehicle, routes each
// simulation tick to every tracker, and accumulates a spatial CO2
// density grid. It is single-threaded by design: the simulation loop
// calls Update once per tick, sequentially.
type Evaluator struct {
	cfg EvaluatorConfig
	fs  fsutil.FileSystem

	trackers map[string]*Tracker
	order    []string // registration order, for deterministic iteration
	grid     map[GridCell]float64

	finalized bool
}

// NewEvaluator constructs an evaluator with the given configuration,
// applying defaults for anything unset.
func NewEvaluator(cfg EvaluatorConfig) *Evaluator {
	if cfg.CellSizeM <= 0 {
		cfg.CellSizeM = 50
	}
	if cfg.Bounds == (MapBounds{}) {
		cfg.Bounds = DefaultMapBounds()
	}
	if cfg.LogDir == "" {
		cfg.LogDir = "cache/sustainability_logs"
	}
	if cfg.FS == nil {
		cfg.FS = fsutil.OSFileSystem{}
	}

	return &Evaluator{
		cfg:      cfg,
		fs:       cfg.FS,
		trackers: make(map[string]*Tracker),
		grid:     make(map[GridCell]float64),
	}
}

// RegisterVehicle creates a tracker for a not-yet-seen vehicle.
// Registering an already-known id is a no-op: the first registration's
// parameters win.
func (e *Evaluator) RegisterVehicle(vehicle VehicleSource, overrides *ParamOverrides) error {
	if e.finalized {
		return fmt.Errorf("evaluator already finalized")
	}
	id := vehicle.ID()
	if _, ok := e.trackers[id]; ok {
		return nil
	}

	t, err := NewTracker(vehicle, TrackerConfig{
		OutputDir:       e.cfg.LogDir,
		SampleHz:        e.cfg.SampleHz,
		Model:           e.cfg.Model,
		GridGramsPerKWh: e.cfg.GridGramsPerKWh,
		Overrides:       overrides,
		FS:              e.fs,
	})
	if err != nil {
		return fmt.Errorf("register vehicle %s: %w", id, err)
	}

	e.trackers[id] = t
	e.order = append(e.order, id)
	return nil
}

// TrackerCount returns the number of registered vehicles.
func (e *Evaluator) TrackerCount() int {
	return len(e.trackers)
}

// Tracker returns the tracker for a vehicle ID, or nil if the vehicle
// was never registered.
func (e *Evaluator) Tracker(id string) *Tracker {
	return e.trackers[id]
}

// Update routes one tick to every registered tracker. A failure in one
// vehicle's update is logged and does not stop the others. After a
// tracker updates successfully, its total cumulative CO2 is added to
// the grid cell under its current position. Re-adding the cumulative
// (not incremental) mass each tick keeps the grid a cheap density
// proxy; it overweights revisited cells.
func (e *Evaluator) Update(snap Snapshot) {
	for _, id := range e.order {
		t := e.trackers[id]
		if err := t.Update(snap); err != nil {
			monitoring.Vehiclef(id, "update error: %v", err)
			continue
		}
		e.grid[e.cellFor(t.LastPosition())] += t.CO2Grams()
	}
}

// cellFor maps a position to its grid cell relative to the map origin.
func (e *Evaluator) cellFor(pos Vec3) GridCell {
	return GridCell{
		I: int(math.Floor((pos.X - e.cfg.Bounds.MinX) / e.cfg.CellSizeM)),
		J: int(math.Floor((pos.Y - e.cfg.Bounds.MinY) / e.cfg.CellSizeM)),
	}
}

// GridCells returns the non-empty grid cells sorted by (i, j).
func (e *Evaluator) GridCells() []GridCellCO2 {
	cells := make([]GridCellCO2, 0, len(e.grid))
	for cell, co2 := range e.grid {
		cells = append(cells, GridCellCO2{I: cell.I, J: cell.J, CO2Grams: co2})
	}
	sort.Slice(cells, func(a, b int) bool {
		if cells[a].I != cells[b].I {
			return cells[a].I < cells[b].I
		}
		return cells[a].J < cells[b].J
	})
	return cells
}

// SummaryPath returns the default summary location for this evaluator.
func (e *Evaluator) SummaryPath() string {
	return filepath.Join(e.cfg.LogDir, "sustainability_summary.json")
}

// Finalize captures every tracker's results, closes all log sinks, and
// writes the fleet summary to outPath (or the default location when
// outPath is empty). Sink close failures are swallowed; a summary write
// failure is returned, since it means total loss of the run's output.
// This is the terminal operation: trackers are unusable afterwards.
func (e *Evaluator) Finalize(outPath string) (*Summary, error) {
	if e.finalized {
		return nil, fmt.Errorf("evaluator already finalized")
	}
	e.finalized = true

	summary := &Summary{
		Vehicles: make([]Results, 0, len(e.order)),
		Grid:     e.GridCells(),
	}
	for _, id := range e.order {
		t := e.trackers[id]
		summary.Vehicles = append(summary.Vehicles, t.Results())
		t.Close()
	}

	if outPath == "" {
		outPath = e.SummaryPath()
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode summary: %w", err)
	}
	if err := e.fs.WriteFile(outPath, data, 0644); err != nil {
		return nil, fmt.Errorf("write summary %s: %w", outPath, err)
	}

	monitoring.Logf("fleet summary written to %s (%d vehicles, %d grid cells)",
		outPath, len(summary.Vehicles), len(summary.Grid))
	return summary, nil
}
