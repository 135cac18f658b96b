package recipe

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/sofiagarciap/preprocesador-datos/internal/config"
	"github.com/sofiagarciap/preprocesador-datos/internal/dataprep"
	"github.com/sofiagarciap/preprocesador-datos/internal/exporter"
	"github.com/sofiagarciap/preprocesador-datos/internal/infrastructure"
	"github.com/sofiagarciap/preprocesador-datos/internal/ingest"
	"github.com/sofiagarciap/preprocesador-datos/internal/pipeline"
	"github.com/sofiagarciap/preprocesador-datos/internal/visualize"
)

// Runner executes recipes
type Runner struct {
	Manager  *pipeline.Manager
	Config   *config.Config
	Exporter *exporter.Exporter
	Renderer *visualize.Renderer
	Metrics  *infrastructure.PipelineMetrics
	// Out receives the dataset info, stage summaries and the statistics table
	Out io.Writer
}

// Result is what a run produced
type Result struct {
	Info     ingest.Info       `json:"info"`
	Reports  []pipeline.Report `json:"reports"`
	Exported string            `json:"exported,omitempty"`
	Plots    []string          `json:"plots,omitempty"`
}

// Run loads the input, runs every stage in order, then renders and exports
// what the recipe asks for. It stops at the first stage that is refused.
func (r *Runner) Run(ctx context.Context, rec *Recipe) (*Result, error) {
	ctx = infrastructure.EnsureSessionID(ctx)
	out := r.Out
	if out == nil {
		out = io.Discard
	}

	opts := ingest.OptionsFrom(r.Config.Ingest)
	if rec.Input.Sheet != "" {
		opts.Sheet = rec.Input.Sheet
	}
	if rec.Input.Table != "" {
		opts.Table = rec.Input.Table
	}
	ds, format, err := ingest.Load(ctx, rec.Input.Path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", rec.Input.Path, err)
	}
	if err := r.Manager.Load(ctx, rec.Input.Path, ds); err != nil {
		return nil, err
	}
	r.Metrics.RecordLoad(ctx, string(format))

	res := &Result{Info: ingest.Describe(rec.Input.Path, format, ds, r.Config.Ingest.PreviewRows)}
	if err := res.Info.Render(out); err != nil {
		return nil, err
	}

	features, target, err := rec.selection(r.Manager.Columns())
	if err != nil {
		return nil, err
	}
	missing, err := dataprep.ParseMissingStrategy(rec.Missing)
	if err != nil {
		return nil, err
	}
	encoding, err := dataprep.ParseEncodingStrategy(rec.Encoding)
	if err != nil {
		return nil, err
	}
	scaling, err := dataprep.ParseScalingStrategy(rec.Scaling)
	if err != nil {
		return nil, err
	}
	outliers, err := dataprep.ParseOutlierStrategy(rec.Outliers)
	if err != nil {
		return nil, err
	}

	steps := []struct {
		id     pipeline.StageID
		params pipeline.Params
	}{
		{pipeline.StageSelection, pipeline.Params{FeatureText: features, TargetText: target}},
		{pipeline.StageMissing, pipeline.Params{Missing: missing, Constant: rec.Constant}},
		{pipeline.StageEncoding, pipeline.Params{Encoding: encoding}},
		{pipeline.StageScaling, pipeline.Params{Scaling: scaling}},
		{pipeline.StageOutliers, pipeline.Params{Outliers: outliers}},
	}
	for _, step := range steps {
		report, err := r.Manager.Run(ctx, step.id, step.params)
		if err != nil {
			return res, err
		}
		res.Reports = append(res.Reports, *report)
		if !report.Outcome.Satisfies() {
			return res, fmt.Errorf("%s stage ended %s: %s", step.id, report.Outcome, report.Summary)
		}
		fmt.Fprintf(out, "%s: %s\n", step.id, report.Summary)
		for _, w := range report.Warnings {
			fmt.Fprintf(out, "Warning: %v\n", w)
		}
	}

	view, err := r.Manager.View()
	if err != nil {
		return res, err
	}
	if err := r.render(ctx, rec, view, res, out); err != nil {
		return res, err
	}

	if rec.Export != nil {
		f, err := exporter.ParseFormat(rec.Export.Format)
		if err != nil {
			return res, err
		}
		path, err := r.Exporter.Export(ctx, view.Processed, f, rec.Export.Name)
		if err != nil {
			return res, err
		}
		r.Metrics.RecordFile(ctx, string(f))
		res.Exported = path
		fmt.Fprintf(out, "Data exported to %s\n", path)
	}

	slog.InfoContext(ctx, "recipe_complete",
		slog.String("input", rec.Input.Path),
		slog.Int("stages", len(res.Reports)),
		slog.Int("plots", len(res.Plots)),
		slog.String("exported", res.Exported))
	return res, nil
}

func (r *Runner) render(ctx context.Context, rec *Recipe, view *pipeline.View, res *Result, out io.Writer) error {
	if rec.Wants("summary") {
		summary := visualize.Describe(view.Processed, view.Numeric(), view.Categorical())
		if err := summary.Render(out); err != nil {
			return err
		}
	}
	if r.Renderer == nil {
		return nil
	}
	if rec.Wants("histograms") {
		files, err := r.Renderer.Histograms(ctx, view)
		if err != nil {
			return err
		}
		res.Plots = append(res.Plots, files...)
	}
	if rec.Wants("scatter") {
		files, err := r.Renderer.Scatter(ctx, view)
		if err != nil {
			return err
		}
		res.Plots = append(res.Plots, files...)
	}
	if rec.Wants("heatmap") {
		path, err := r.Renderer.Heatmap(ctx, view)
		if err != nil {
			return err
		}
		res.Plots = append(res.Plots, path)
	}
	return nil
}
