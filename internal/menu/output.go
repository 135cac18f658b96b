package menu

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sofiagarciap/preprocesador-datos/internal/exporter"
	"github.com/sofiagarciap/preprocesador-datos/internal/pipeline"
	"github.com/sofiagarciap/preprocesador-datos/internal/visualize"
)

func (m *Menu) visualize(ctx context.Context) error {
	view, err := m.Manager.View()
	if err != nil {
		m.p.println(explain(err))
		return nil
	}
	for {
		m.p.header("Data Visualization")
		m.p.println("Select the visualization to generate:")
		m.p.println("  [1] Statistical summary of the selected variables")
		m.p.println("  [2] Histograms of numeric variables")
		m.p.println("  [3] Scatter plots before and after scaling")
		m.p.println("  [4] Correlation heatmap of numeric variables")
		m.p.println("  [5] Back to main menu")
		answer, err := m.p.ask("Select an option: ")
		if err != nil {
			return err
		}

		switch answer {
		case "1":
			m.p.println("\nStatistical summary of the selected variables:")
			summary := visualize.Describe(view.Processed, view.Numeric(), view.Categorical())
			if err := summary.Render(m.p.out); err != nil {
				return err
			}
			m.visualized = true
		case "2":
			m.plotted(ctx, "histograms", func() ([]string, error) { return m.Renderer.Histograms(ctx, view) })
		case "3":
			m.plotted(ctx, "scatter", func() ([]string, error) { return m.Renderer.Scatter(ctx, view) })
		case "4":
			m.plotted(ctx, "heatmap", func() ([]string, error) {
				path, err := m.Renderer.Heatmap(ctx, view)
				if err != nil {
					return nil, err
				}
				return []string{path}, nil
			})
		case "5":
			return nil
		default:
			m.p.println("Invalid option. Please try again.")
		}
	}
}

func (m *Menu) plotted(ctx context.Context, kind string, render func() ([]string, error)) {
	if m.Renderer == nil {
		m.p.println("Plot rendering is not configured.")
		return
	}
	files, err := render()
	switch {
	case errors.Is(err, visualize.ErrNotEnoughNumeric):
		m.p.println("At least two numeric variables are needed for this plot.")
		return
	case errors.Is(err, visualize.ErrNoNumeric):
		m.p.println("There are no numeric variables to plot.")
		return
	case err != nil:
		slog.ErrorContext(ctx, "plot_failed", slog.String("kind", kind), slog.String("error", err.Error()))
		m.p.println(explain(err))
		return
	}
	for _, f := range files {
		m.p.printf("Saved %s\n", f)
	}
	m.visualized = true
}

func (m *Menu) export(ctx context.Context) error {
	view, err := m.Manager.View()
	if err != nil {
		m.p.println(explain(err))
		return nil
	}
	if m.Exporter == nil {
		m.p.println("Export is not configured.")
		return nil
	}
	for {
		m.p.header("Data Export")
		m.p.println("Select the export format:")
		m.p.println("  [1] CSV")
		m.p.println("  [2] Excel")
		m.p.println("  [3] Back to main menu")
		answer, err := m.p.ask("Select an option: ")
		if err != nil {
			return err
		}

		var format exporter.Format
		switch answer {
		case "1":
			format = exporter.FormatCSV
		case "2":
			format = exporter.FormatExcel
		case "3":
			return nil
		default:
			m.p.println("Invalid option. Please try again.")
			continue
		}

		name, err := m.p.ask("Enter the file name (without extension): ")
		if err != nil {
			return err
		}
		if done := m.write(ctx, view, format, name); done {
			return nil
		}
	}
}

func (m *Menu) write(ctx context.Context, view *pipeline.View, format exporter.Format, name string) bool {
	path, err := m.Exporter.Export(ctx, view.Processed, format, name)
	if err != nil {
		m.p.println(explain(err))
		return false
	}
	m.Metrics.RecordFile(ctx, string(format))
	m.exported = true
	m.p.printf("Data exported successfully as %q.\n", path)
	return true
}
