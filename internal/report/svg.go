package report

import (
	"os"

	mg "github.com/erkkah/margaid"
	"github.com/pkg/errors"
)

const (
	svgWidth  = 1024
	svgHeight = 480
)

// saveSVG renders chart with margaid.
func saveSVG(chart Chart, path string) error {
	if len(chart.Series) == 0 {
		return errors.New("chart has no series")
	}
	allSeries := make([]*mg.Series, 0, len(chart.Series))
	allPoints := mg.NewSeries()
	for _, s := range chart.Series {
		series := mg.NewSeries(mg.Titled(s.Name))
		for j := range s.X {
			v := mg.MakeValue(s.X[j], s.Y[j])
			series.Add(v)
			allPoints.Add(v)
		}
		allSeries = append(allSeries, series)
	}

	diagram := mg.New(svgWidth, svgHeight,
		mg.WithAutorange(mg.XAxis, allSeries...),
		mg.WithAutorange(mg.YAxis, allSeries...),
		mg.WithInset(70),
		mg.WithPadding(2),
		mg.WithColorScheme(90),
		mg.WithBackgroundColor("#f8f8f8"),
	)
	for _, s := range allSeries {
		diagram.Line(s, mg.UsingAxes(mg.XAxis, mg.YAxis), mg.UsingMarker("square"), mg.UsingStrokeWidth(2))
	}
	diagram.Axis(allPoints, mg.XAxis, diagram.ValueTicker('f', 0, 10), false, chart.XLabel)
	diagram.Axis(allPoints, mg.YAxis, diagram.ValueTicker('f', 3, 10), true, chart.YLabel)
	diagram.Frame()
	diagram.Title(chart.Title)
	diagram.Legend(mg.BottomLeft)

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %q", path)
	}
	if err := diagram.Render(f); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "render %q", path)
	}
	return f.Close()
}
