package engine

import (
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// plotTotalPnL renders the total PnL series as a line chart and saves
// it as a PNG. Reporting side effect only, the computational results
// never depend on it.
func plotTotalPnL(path string, index []time.Time, totalPnL []float64) error {
	p := plot.New()
	p.Title.Text = "Total PnL"
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "PnL"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(index))
	for i, ts := range index {
		pts[i].X = float64(ts.Unix())
		pts[i].Y = totalPnL[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line)

	return p.Save(11*vg.Inch, 9*vg.Inch, path)
}
