package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/emissions.report/internal/sustain"
)

// RenderGridHTML writes an interactive scatter rendering of the
// emission grid using go-echarts. Cells are plotted at their grid
// indices with the accumulated CO2 mass driving the color scale.
func RenderGridHTML(w io.Writer, summary *sustain.Summary, cellSizeM float64) error {
	if len(summary.Grid) == 0 {
		return fmt.Errorf("no grid cells to render")
	}

	data := make([]opts.ScatterData, 0, len(summary.Grid))
	minI, maxI := summary.Grid[0].I, summary.Grid[0].I
	minJ, maxJ := summary.Grid[0].J, summary.Grid[0].J
	maxCO2 := 0.0
	for _, c := range summary.Grid {
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
		if c.CO2Grams > maxCO2 {
			maxCO2 = c.CO2Grams
		}
		data = append(data, opts.ScatterData{Value: []interface{}{c.I, c.J, c.CO2Grams}})
	}
	if maxCO2 == 0 {
		maxCO2 = 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Emission Grid", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "CO2 Emission Grid", Subtitle: fmt.Sprintf("cells=%d cell_size=%.0fm", len(data), cellSizeM)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: float64(minI - 1), Max: float64(maxI + 1), Name: "Cell X", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: float64(minJ - 1), Max: float64(maxJ + 1), Name: "Cell Y", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxCO2),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}},
		}),
	)

	scatter.AddSeries("co2_g", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}))

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("failed to render grid chart: %v", err)
	}
	return nil
}
