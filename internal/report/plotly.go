package report

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"html/template"
	"os"

	grob "github.com/MetalBlueberry/go-plotly/generated/v2.34.0/graph_objects"
	ptypes "github.com/MetalBlueberry/go-plotly/pkg/types"
	"github.com/pkg/browser"
	"github.com/pkg/errors"
)

func newLayout(title, xLabel, yLabel string) *grob.Layout {
	return &grob.Layout{
		Title: &grob.LayoutTitle{
			Text: ptypes.S(title),
		},
		Xaxis: &grob.LayoutXaxis{
			Showgrid: ptypes.B(true),
			Title:    &grob.LayoutXaxisTitle{Text: ptypes.S(xLabel)},
		},
		Yaxis: &grob.LayoutYaxis{
			Showgrid: ptypes.B(true),
			Title:    &grob.LayoutYaxisTitle{Text: ptypes.S(yLabel)},
		},
		Legend: &grob.LayoutLegend{},
	}
}

// newFigure converts chart into a plotly figure with one scatter trace per series.
func newFigure(chart Chart) *grob.Fig {
	fig := &grob.Fig{Layout: newLayout(chart.Title, chart.XLabel, chart.YLabel)}
	for _, s := range chart.Series {
		fig.Data = append(fig.Data, &grob.Scatter{
			Name: ptypes.S(s.Name),
			Line: &grob.ScatterLine{
				Shape: grob.ScatterLineShapeLinear,
			},
			Mode: "lines+markers",
			X:    ptypes.DataArray(s.X),
			Y:    ptypes.DataArray(s.Y),
		})
	}
	return fig
}

var pageTemplate = template.Must(template.New("plotly").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{ .Title }}</title>
<script src="{{ .CDN }}"></script>
</head>
<body>
<div id="plot"></div>
<script>
Plotly.newPlot('plot', JSON.parse(atob({{ .Figure }})));
</script>
</body>
</html>
`))

// saveHTML writes fig as a standalone interactive page that loads plotly.js
// from its CDN and opens it in a browser when show is set.
func saveHTML(fig *grob.Fig, path string, show bool) error {
	figJSON, err := json.Marshal(fig)
	if err != nil {
		return errors.Wrap(err, "encode plotly figure")
	}
	var title string
	if fig.Layout != nil && fig.Layout.Title != nil {
		title = string(fig.Layout.Title.Text)
	}
	var page bytes.Buffer
	err = pageTemplate.Execute(&page, struct {
		Title  string
		CDN    string
		Figure string
	}{
		Title:  title,
		CDN:    fig.Info().Cdn,
		Figure: base64.StdEncoding.EncodeToString(figJSON),
	})
	if err != nil {
		return errors.Wrap(err, "render plotly page")
	}
	if err := os.WriteFile(path, page.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "write %q", path)
	}
	if show {
		if err := browser.OpenFile(path); err != nil {
			return errors.Wrapf(err, "open %q", path)
		}
	}
	return nil
}
