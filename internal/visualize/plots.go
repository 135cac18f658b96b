package visualize

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/sofiagarciap/preprocesador-datos/internal/config"
	"github.com/sofiagarciap/preprocesador-datos/internal/dataset"
	"github.com/sofiagarciap/preprocesador-datos/internal/infrastructure"
	"github.com/sofiagarciap/preprocesador-datos/internal/pipeline"
	"github.com/sofiagarciap/preprocesador-datos/internal/stats"
)

var (
	// ErrNotEnoughNumeric is returned when a plot needs more numeric columns
	// than the view has
	ErrNotEnoughNumeric = errors.New("at least two numeric variables are required")
	// ErrNoNumeric is returned when the view has no plottable numeric column
	ErrNoNumeric = errors.New("no numeric variables to plot")
)

var (
	beforeColor = color.RGBA{R: 255, G: 165, A: 255}
	afterColor  = color.RGBA{B: 255, A: 255}
)

// Renderer writes PNG plots of a pipeline view into the plots directory.
// Independent plots are rendered concurrently up to the configured limit.
type Renderer struct {
	cfg     config.VisualizeConfig
	paths   *config.Paths
	metrics *infrastructure.PipelineMetrics
}

// NewRenderer creates a renderer writing under paths.PlotsDir
func NewRenderer(cfg config.VisualizeConfig, paths *config.Paths) *Renderer {
	return &Renderer{cfg: cfg, paths: paths}
}

// WithMetrics counts every written plot
func (r *Renderer) WithMetrics(m *infrastructure.PipelineMetrics) *Renderer {
	r.metrics = m
	return r
}

type job struct {
	name   string
	render func(path string) error
}

// Histograms renders one histogram per numeric column of the processed data
func (r *Renderer) Histograms(ctx context.Context, view *pipeline.View) ([]string, error) {
	var jobs []job
	for _, name := range view.Numeric() {
		col, ok := view.Processed.Column(name)
		if !ok {
			continue
		}
		values := col.Numbers()
		if len(values) == 0 {
			slog.WarnContext(ctx, "plot_skipped",
				slog.String("column", name),
				slog.String("reason", "no numeric values"))
			continue
		}
		jobs = append(jobs, job{
			name: "hist_" + fileName(name),
			render: func(path string) error {
				return r.histogram(name, values, path)
			},
		})
	}
	if len(jobs) == 0 {
		return nil, ErrNoNumeric
	}
	return r.renderAll(ctx, jobs)
}

// Scatter renders a before/after scatter for every consecutive pair of
// numeric columns
func (r *Renderer) Scatter(ctx context.Context, view *pipeline.View) ([]string, error) {
	numeric := view.Numeric()
	if len(numeric) < 2 {
		return nil, ErrNotEnoughNumeric
	}
	jobs := make([]job, 0, len(numeric)-1)
	for i := 0; i < len(numeric)-1; i++ {
		x, y := numeric[i], numeric[i+1]
		before := pairs(view.Original, x, y)
		after := pairs(view.Processed, x, y)
		jobs = append(jobs, job{
			name: "scatter_" + fileName(x) + "_" + fileName(y),
			render: func(path string) error {
				return r.scatter(x, y, before, after, path)
			},
		})
	}
	return r.renderAll(ctx, jobs)
}

// Heatmap renders the correlation matrix of the numeric columns
func (r *Renderer) Heatmap(ctx context.Context, view *pipeline.View) (string, error) {
	var names []string
	var cols []*dataset.Column
	for _, name := range view.Numeric() {
		if col, ok := view.Processed.Column(name); ok {
			names = append(names, name)
			cols = append(cols, col)
		}
	}
	if len(cols) < 2 {
		return "", ErrNotEnoughNumeric
	}
	matrix := CorrelationMatrix(cols)
	files, err := r.renderAll(ctx, []job{{
		name: "correlation_heatmap",
		render: func(path string) error {
			return r.heatmap(names, matrix, path)
		},
	}})
	if err != nil {
		return "", err
	}
	return files[0], nil
}

// CorrelationMatrix returns the pairwise Pearson correlations, each pair
// computed over the rows where both cells are numeric
func CorrelationMatrix(cols []*dataset.Column) [][]float64 {
	n := len(cols)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		m[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var x, y []float64
			for k := range cols[i].Values {
				a, okA := cols[i].Values[k].Number()
				b, okB := cols[j].Values[k].Number()
				if okA && okB {
					x = append(x, a)
					y = append(y, b)
				}
			}
			r := stats.Correlation(x, y)
			m[i][j], m[j][i] = r, r
		}
	}
	return m
}

func (r *Renderer) renderAll(ctx context.Context, jobs []job) ([]string, error) {
	if err := os.MkdirAll(r.paths.PlotsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create plots directory: %w", err)
	}

	uniqueJobNames(jobs)
	files := make([]string, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.cfg.Concurrency, 1))
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path, err := r.paths.PlotPath(j.name)
			if err != nil {
				return err
			}
			if err := j.render(path); err != nil {
				return fmt.Errorf("failed to render %s: %w", j.name, err)
			}
			r.metrics.RecordFile(gctx, "plot")
			slog.DebugContext(gctx, "plot_written", slog.String("path", path))
			files[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "plots_rendered", slog.Int("count", len(files)))
	return files, nil
}

func (r *Renderer) size() (vg.Length, vg.Length) {
	return vg.Length(r.cfg.Width), vg.Length(r.cfg.Height)
}

func (r *Renderer) histogram(name string, values []float64, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Histogram of %s (after preprocessing)", name)
	p.X.Label.Text = name
	p.Y.Label.Text = "Frequency"

	bins := r.cfg.Bins
	if bins < 1 {
		bins = config.DefaultHistogramBins
	}
	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return err
	}
	p.Add(h)

	w, ht := r.size()
	return p.Save(w, ht, path)
}

func (r *Renderer) scatter(x, y string, before, after plotter.XYs, path string) error {
	left, err := scatterPlot("Before: "+x+" vs "+y, x, y, before, beforeColor)
	if err != nil {
		return err
	}
	right, err := scatterPlot("After: "+x+" vs "+y, x, y, after, afterColor)
	if err != nil {
		return err
	}

	w, h := r.size()
	img := vgimg.New(2*w, h)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: 1, Cols: 2,
		PadX: vg.Millimeter, PadY: vg.Millimeter,
		PadTop: vg.Points(4), PadBottom: vg.Points(4),
		PadLeft: vg.Points(4), PadRight: vg.Points(4),
	}
	plots := [][]*plot.Plot{{left, right}}
	canvases := plot.Align(plots, tiles, dc)
	left.Draw(canvases[0][0])
	right.Draw(canvases[0][1])

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func scatterPlot(title, x, y string, pts plotter.XYs, c color.Color) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = x
	p.Y.Label.Text = y
	if len(pts) == 0 {
		return p, nil
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Color = c
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(2)
	p.Add(s)
	return p, nil
}

func (r *Renderer) heatmap(names []string, matrix [][]float64, path string) error {
	p := plot.New()
	p.Title.Text = "Correlation between numeric variables"

	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)
	hm := plotter.NewHeatMap(corrGrid(matrix), cm.Palette(255))
	hm.Min, hm.Max = -1, 1
	p.Add(hm)

	var pts plotter.XYs
	var text []string
	for i := range matrix {
		for j := range matrix[i] {
			pts = append(pts, plotter.XY{X: float64(j), Y: float64(i)})
			text = append(text, fmt.Sprintf("%.2f", matrix[i][j]))
		}
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: text})
	if err != nil {
		return err
	}
	p.Add(labels)

	ticks := make([]plot.Tick, len(names))
	for i, n := range names {
		ticks[i] = plot.Tick{Value: float64(i), Label: n}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.Y.Tick.Marker = plot.ConstantTicks(ticks)

	w, h := r.size()
	return p.Save(w, h, path)
}

// corrGrid adapts a square matrix to plotter.GridXYZ
type corrGrid [][]float64

func (g corrGrid) Dims() (c, r int)   { return len(g), len(g) }
func (g corrGrid) Z(c, r int) float64 { return g[r][c] }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }

func pairs(ds *dataset.Dataset, x, y string) plotter.XYs {
	cx, okX := ds.Column(x)
	cy, okY := ds.Column(y)
	if !okX || !okY {
		return nil
	}
	var pts plotter.XYs
	for i := range cx.Values {
		a, okA := cx.Values[i].Number()
		b, okB := cy.Values[i].Number()
		if okA && okB {
			pts = append(pts, plotter.XY{X: a, Y: b})
		}
	}
	return pts
}

// uniqueJobNames suffixes _2, _3, ... onto names that sanitize to one
// already taken, so no two jobs write the same file
func uniqueJobNames(jobs []job) {
	taken := make(map[string]bool, len(jobs))
	for i := range jobs {
		name := jobs[i].name
		for n := 2; taken[name]; n++ {
			name = fmt.Sprintf("%s_%d", jobs[i].name, n)
		}
		taken[name] = true
		jobs[i].name = name
	}
}

func fileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
