package plots

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"os"

	grob "github.com/MetalBlueberry/go-plotly/generated/v2.34.0/graph_objects"
	ptypes "github.com/MetalBlueberry/go-plotly/pkg/types"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// plotlySrc is the CDN location of the plotly.js version matching the
// go-plotly bindings in use.
const plotlySrc = "https://cdn.plot.ly/plotly-2.34.0.min.js"

var (
	singleFileHTML = `<!DOCTYPE html>
	<head>
		<meta charset="utf-8">
		<script src="{{ .CDN }}"></script>
	</head>
	<body>
		<div id="plot"></div>
	<script>
		data = JSON.parse(atob('{{ .Figure }}'))
		Plotly.newPlot('plot', data);
	</script>
	</body>
</html>`
	singleFileHTMLTmpl = template.Must(template.New("plotly").Parse(singleFileHTML))
)

// writePlotlyAsHTML renders the figure to a self-contained HTML page, with
// plotly.js pulled from its CDN.
func writePlotlyAsHTML(path string, fig *grob.Fig) error {
	figAsJSON, err := json.Marshal(fig)
	if err != nil {
		return errors.Wrap(err, "failed to marshal plotly figure")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create file %q", path)
	}
	data := &struct {
		CDN    string
		Figure string
	}{
		CDN:    plotlySrc,
		Figure: base64.StdEncoding.EncodeToString(figAsJSON),
	}
	if err := singleFileHTMLTmpl.Execute(f, data); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "failed to render plotly figure to %q", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %q", path)
	}
	return nil
}

// Violin draws one violin per row of data and saves it as a self-contained
// interactive HTML page (default name "violin.html").
func Violin(data [][]float64, cfg Config) (string, error) {
	if len(data) == 0 {
		return "", errors.New("plots.Violin: no distributions given")
	}
	fig := &grob.Fig{
		Layout: &grob.Layout{
			Title: &grob.LayoutTitle{
				Text: ptypes.S(fmt.Sprintf("Violin (%d distributions)", len(data))),
			},
			Yaxis: &grob.LayoutYaxis{
				Showgrid: ptypes.B(true),
			},
		},
	}
	for i, row := range data {
		fig.Data = append(fig.Data, &grob.Violin{
			Name: ptypes.S(fmt.Sprintf("[%d]", i)),
			Y:    ptypes.DataArray(finite(row)),
		})
	}

	path, err := cfg.filePath("violin.html")
	if err != nil {
		return "", err
	}
	if err := writePlotlyAsHTML(path, fig); err != nil {
		return "", err
	}
	klog.V(1).Infof("saved violin plot to %s", path)
	return path, nil
}
