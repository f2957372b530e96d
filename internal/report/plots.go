package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"image/color"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/emissions.report/internal/fsutil"
	"github.com/banshee-data/emissions.report/internal/sustain"
	"github.com/banshee-data/emissions.report/internal/units"
)

// readLogSeries parses a vehicle log CSV and extracts the (timestamp,
// column) series for one named column.
func readLogSeries(fs fsutil.FileSystem, path, column string) (plotter.XYs, error) {
	raw, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vehicle log %s: %w", path, err)
	}

	r := csv.NewReader(bytes.NewReader(raw))
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse vehicle log %s: %w", path, err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("vehicle log %s is empty", path)
	}

	tsCol, valCol := -1, -1
	for i, name := range rows[0] {
		switch name {
		case "timestamp":
			tsCol = i
		case column:
			valCol = i
		}
	}
	if tsCol < 0 || valCol < 0 {
		return nil, fmt.Errorf("vehicle log %s missing timestamp or %s column", path, column)
	}

	var points plotter.XYs
	for _, row := range rows[1:] {
		ts, err := strconv.ParseFloat(row[tsCol], 64)
		if err != nil {
			continue
		}
		val, err := strconv.ParseFloat(row[valCol], 64)
		if err != nil {
			continue
		}
		points = append(points, plotter.XY{X: ts, Y: val})
	}
	return points, nil
}

// plotLogSeries renders one line per vehicle log into a single PNG,
// applying transform to each raw column value.
func plotLogSeries(fs fsutil.FileSystem, logs map[string]string, outPath, column string, p *plot.Plot, transform func(float64) float64) error {
	ids := make([]string, 0, len(logs))
	for id := range logs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	plotted := 0
	for n, id := range ids {
		points, err := readLogSeries(fs, logs[id], column)
		if err != nil {
			return err
		}
		if len(points) == 0 {
			continue
		}
		for i := range points {
			points[i].Y = transform(points[i].Y)
		}
		line, err := plotter.NewLine(points)
		if err != nil {
			return fmt.Errorf("%s line for %s: %w", column, id, err)
		}
		line.Width = vg.Points(1)
		line.Color = plotColors[n%len(plotColors)]
		p.Add(line)
		p.Legend.Add(id, line)
		plotted++
	}
	if plotted == 0 {
		return fmt.Errorf("no %s samples to plot", column)
	}

	return p.Save(10*vg.Inch, 6*vg.Inch, outPath)
}

// PlotVehicleEnergy renders cumulative energy traces for the given
// vehicle logs into a single PNG. logs maps vehicle ID to its CSV path.
func PlotVehicleEnergy(fs fsutil.FileSystem, logs map[string]string, outPath string) error {
	p := plot.New()
	p.Title.Text = "Cumulative Energy by Vehicle"
	p.X.Label.Text = "Elapsed (s)"
	p.Y.Label.Text = "Energy (Wh)"

	return plotLogSeries(fs, logs, outPath, "cumulative_energy_j", p, units.JoulesToWattHours)
}

// PlotVehicleSpeeds renders per-vehicle speed traces in the requested
// display units (the logs always record m/s).
func PlotVehicleSpeeds(fs fsutil.FileSystem, logs map[string]string, outPath, speedUnits string) error {
	if !units.IsValid(speedUnits) {
		return fmt.Errorf("invalid speed units %q (valid: %v)", speedUnits, units.ValidUnits)
	}

	p := plot.New()
	p.Title.Text = "Speed by Vehicle"
	p.X.Label.Text = "Elapsed (s)"
	p.Y.Label.Text = fmt.Sprintf("Speed (%s)", speedUnits)

	return plotLogSeries(fs, logs, outPath, "speed_m_s", p, func(v float64) float64 {
		return units.ConvertSpeed(v, speedUnits)
	})
}

// PlotEcoScores renders a per-vehicle eco score bar chart.
func PlotEcoScores(summary *sustain.Summary, outPath string) error {
	if len(summary.Vehicles) == 0 {
		return fmt.Errorf("no vehicle results to plot")
	}

	results := append([]sustain.Results(nil), summary.Vehicles...)
	sort.Slice(results, func(i, j int) bool { return results[i].VehicleID < results[j].VehicleID })

	values := make(plotter.Values, len(results))
	labels := make([]string, len(results))
	for i, r := range results {
		values[i] = r.EcoScore
		labels[i] = r.VehicleID
	}

	p := plot.New()
	p.Title.Text = "Eco Score by Vehicle"
	p.Y.Label.Text = "Score (0-100)"
	p.Y.Min, p.Y.Max = 0, 100

	bars, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return fmt.Errorf("eco score bars: %w", err)
	}
	bars.Color = plotColors[0]
	p.Add(bars)
	p.NominalX(labels...)

	return p.Save(10*vg.Inch, 6*vg.Inch, outPath)
}

// co2Grid adapts sparse grid cells to the dense matrix a heatmap wants.
type co2Grid struct {
	minI, minJ int
	cols, rows int
	z          []float64
}

func newCO2Grid(cells []sustain.GridCellCO2) *co2Grid {
	if len(cells) == 0 {
		return nil
	}
	minI, maxI := cells[0].I, cells[0].I
	minJ, maxJ := cells[0].J, cells[0].J
	for _, c := range cells[1:] {
		if c.I < minI {
			minI = c.I
		}
		if c.I > maxI {
			maxI = c.I
		}
		if c.J < minJ {
			minJ = c.J
		}
		if c.J > maxJ {
			maxJ = c.J
		}
	}
	g := &co2Grid{
		minI: minI,
		minJ: minJ,
		cols: maxI - minI + 1,
		rows: maxJ - minJ + 1,
	}
	g.z = make([]float64, g.cols*g.rows)
	for _, c := range cells {
		g.z[(c.J-minJ)*g.cols+(c.I-minI)] = c.CO2Grams
	}
	return g
}

func (g *co2Grid) Dims() (c, r int)   { return g.cols, g.rows }
func (g *co2Grid) Z(c, r int) float64 { return g.z[r*g.cols+c] }
func (g *co2Grid) X(c int) float64    { return float64(g.minI + c) }
func (g *co2Grid) Y(r int) float64    { return float64(g.minJ + r) }

// PlotGridHeatmap renders the spatial emission grid as a PNG heatmap.
// Cell indices are plotted directly; multiply by the run's cell size to
// recover map coordinates.
func PlotGridHeatmap(summary *sustain.Summary, outPath string) error {
	g := newCO2Grid(summary.Grid)
	if g == nil {
		return fmt.Errorf("no grid cells to plot")
	}

	p := plot.New()
	p.Title.Text = "CO2 Emission Grid (g)"
	p.X.Label.Text = "Cell X"
	p.Y.Label.Text = "Cell Y"

	hm := plotter.NewHeatMap(g, palette.Heat(16, 1))
	p.Add(hm)

	return p.Save(8*vg.Inch, 8*vg.Inch, outPath)
}

var plotColors = []color.Color{
	color.RGBA{R: 31, G: 119, B: 180, A: 255},
	color.RGBA{R: 255, G: 127, B: 14, A: 255},
	color.RGBA{R: 44, G: 160, B: 44, A: 255},
	color.RGBA{R: 214, G: 39, B: 40, A: 255},
	color.RGBA{R: 148, G: 103, B: 189, A: 255},
	color.RGBA{R: 140, G: 86, B: 75, A: 255},
}
