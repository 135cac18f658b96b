package menu

import (
	"context"
	"strconv"
	"strings"

	"github.com/sofiagarciap/preprocesador-datos/internal/dataprep"
	"github.com/sofiagarciap/preprocesador-datos/internal/pipeline"
)

func (m *Menu) preprocess(ctx context.Context) error {
	for {
		stages := m.Manager.Stages()
		m.p.header("Data Preprocessing")
		for i, st := range stages {
			m.p.printf("%s %d. %s\n", stageMark(st.Available), i+1, st.Name)
		}
		back := len(stages) + 1
		m.p.printf("%s %d. Back to main menu\n", MarkAvailable, back)

		answer, err := m.p.ask("Select an option: ")
		if err != nil {
			return err
		}
		n, convErr := strconv.Atoi(answer)
		switch {
		case convErr != nil || n < 1 || n > back:
			m.p.println("Invalid option. Please try again.")
			continue
		case n == back:
			return nil
		}

		id := stages[n-1].ID
		if err := m.Manager.CanRun(id); err != nil {
			m.p.println(explain(err))
			continue
		}
		if err := m.runStage(ctx, id); err != nil {
			return err
		}
		if m.Manager.Complete() {
			m.p.println("Preprocessing complete. Visualization and export are now available.")
		}
	}
}

func stageMark(a pipeline.Availability) string {
	switch a {
	case pipeline.AvailabilityDone:
		return MarkDone
	case pipeline.AvailabilityAvailable:
		return MarkAvailable
	default:
		return MarkLocked
	}
}

func (m *Menu) runStage(ctx context.Context, id pipeline.StageID) error {
	var (
		report *pipeline.Report
		err    error
	)
	switch id {
	case pipeline.StageSelection:
		report, err = m.selectColumns(ctx)
	case pipeline.StageMissing:
		report, err = m.handleMissing(ctx)
	case pipeline.StageEncoding:
		report, err = m.handleEncoding(ctx)
	case pipeline.StageScaling:
		report, err = m.handleScaling(ctx)
	case pipeline.StageOutliers:
		report, err = m.handleOutliers(ctx)
	}
	if err != nil {
		if isInputErr(err) {
			return err
		}
		m.p.println(explain(err))
		return nil
	}
	m.printReport(report)
	return nil
}

func (m *Menu) printReport(r *pipeline.Report) {
	if r == nil {
		return
	}
	m.p.println(r.Summary)
	for _, w := range r.Warnings {
		m.p.printf("Warning: %v\n", w)
	}
	if r.Outcome == pipeline.OutcomeCancelled {
		m.p.println("No changes were made.")
	}
}

func (m *Menu) selectColumns(ctx context.Context) (*pipeline.Report, error) {
	m.p.println("Available columns:")
	for i, name := range m.Manager.Columns() {
		m.p.printf("  [%d] %s\n", i+1, name)
	}
	features, err := m.p.ask("Enter the feature column numbers separated by commas: ")
	if err != nil {
		return nil, inputErr(err)
	}
	target, err := m.p.ask("Enter the target column number: ")
	if err != nil {
		return nil, inputErr(err)
	}
	return m.Manager.SelectColumns(ctx, features, target)
}

func (m *Menu) handleMissing(ctx context.Context) (*pipeline.Report, error) {
	summary := m.Manager.MissingSummary()
	if len(summary) == 0 {
		return m.Manager.HandleMissing(ctx, dataprep.MissingCancel, "")
	}
	m.p.println("Missing values per selected column:")
	for _, c := range summary {
		m.p.printf("  %s: %d\n", c.Column, c.Count)
	}
	n, err := m.chooseStrategy(dataprep.MissingOptions(), func(s string) (int, error) {
		v, err := dataprep.ParseMissingStrategy(s)
		return int(v), err
	})
	if err != nil {
		return nil, err
	}
	strategy := dataprep.MissingStrategy(n)
	var constant string
	if strategy == dataprep.MissingConstant {
		if constant, err = m.p.ask("Enter the constant value: "); err != nil {
			return nil, inputErr(err)
		}
	}
	return m.Manager.HandleMissing(ctx, strategy, constant)
}

func (m *Menu) handleEncoding(ctx context.Context) (*pipeline.Report, error) {
	candidates := m.Manager.CategoricalCandidates()
	if len(candidates) == 0 {
		return m.Manager.HandleCategoricals(ctx, dataprep.EncodingCancel)
	}
	m.p.printf("Categorical features: %s\n", join(candidates))
	n, err := m.chooseStrategy(dataprep.EncodingOptions(), func(s string) (int, error) {
		v, err := dataprep.ParseEncodingStrategy(s)
		return int(v), err
	})
	if err != nil {
		return nil, err
	}
	return m.Manager.HandleCategoricals(ctx, dataprep.EncodingStrategy(n))
}

func (m *Menu) handleScaling(ctx context.Context) (*pipeline.Report, error) {
	candidates := m.Manager.ScalingCandidates()
	if len(candidates) == 0 {
		return m.Manager.HandleScaling(ctx, dataprep.ScalingCancel)
	}
	m.p.printf("Numeric features: %s\n", join(candidates))
	n, err := m.chooseStrategy(dataprep.ScalingOptions(), func(s string) (int, error) {
		v, err := dataprep.ParseScalingStrategy(s)
		return int(v), err
	})
	if err != nil {
		return nil, err
	}
	return m.Manager.HandleScaling(ctx, dataprep.ScalingStrategy(n))
}

func (m *Menu) handleOutliers(ctx context.Context) (*pipeline.Report, error) {
	flagged := m.Manager.OutlierSummary()
	if len(flagged) == 0 {
		return m.Manager.HandleOutliers(ctx, dataprep.OutlierCancel)
	}
	m.p.println("Outliers detected (IQR method):")
	for _, b := range flagged {
		m.p.printf("  %s: %d outside [%.4g, %.4g]\n", b.Column, b.Count, b.Lower, b.Upper)
	}
	n, err := m.chooseStrategy(dataprep.OutlierOptions(), func(s string) (int, error) {
		v, err := dataprep.ParseOutlierStrategy(s)
		return int(v), err
	})
	if err != nil {
		return nil, err
	}
	return m.Manager.HandleOutliers(ctx, dataprep.OutlierStrategy(n))
}

// chooseStrategy lists options and asks until one of them is picked
func (m *Menu) chooseStrategy(options []dataprep.Option, parse func(string) (int, error)) (int, error) {
	m.p.println("Select a strategy:")
	for _, o := range options {
		m.p.printf("  [%d] %s\n", o.Number, o.Label)
	}
	for {
		answer, err := m.p.ask("Select an option: ")
		if err != nil {
			return 0, inputErr(err)
		}
		n, err := parse(answer)
		if err != nil {
			m.p.println("Invalid option. Please try again.")
			continue
		}
		return n, nil
	}
}

func join(names []string) string {
	return strings.Join(names, ", ")
}
