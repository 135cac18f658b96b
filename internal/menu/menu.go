// Package menu is the interactive text front end of the preprocessing
// session. It reads answers line by line from an io.Reader and writes every
// prompt and report to an io.Writer, so a whole session can be scripted.
package menu

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/sofiagarciap/preprocesador-datos/internal/config"
	"github.com/sofiagarciap/preprocesador-datos/internal/exporter"
	"github.com/sofiagarciap/preprocesador-datos/internal/infrastructure"
	"github.com/sofiagarciap/preprocesador-datos/internal/pipeline"
	"github.com/sofiagarciap/preprocesador-datos/internal/visualize"
)

// Marks shown in front of each menu option
const (
	MarkAvailable = "[-]"
	MarkDone      = "[✓]"
	MarkLocked    = "[✗]"
)

// Deps are the collaborators a menu drives
type Deps struct {
	Manager  *pipeline.Manager
	Config   *config.Config
	Exporter *exporter.Exporter
	Renderer *visualize.Renderer
	Metrics  *infrastructure.PipelineMetrics
}

// Menu runs the main menu loop
type Menu struct {
	Deps
	p *prompter

	visualized bool
	exported   bool
}

// New creates a menu reading from in and writing to out
func New(in io.Reader, out io.Writer, deps Deps) *Menu {
	if deps.Config == nil {
		deps.Config = config.Default()
	}
	if deps.Manager == nil {
		deps.Manager = pipeline.NewManager(nil, pipeline.ConfigFrom(deps.Config.Pipeline))
	}
	if deps.Exporter == nil || deps.Renderer == nil {
		if paths, err := deps.Config.ResolvePaths(""); err == nil {
			if deps.Exporter == nil {
				deps.Exporter = exporter.New(paths, deps.Config.Export)
			}
			if deps.Renderer == nil {
				deps.Renderer = visualize.NewRenderer(deps.Config.Visualize, paths).WithMetrics(deps.Metrics)
			}
		}
	}
	return &Menu{Deps: deps, p: newPrompter(in, out)}
}

// Run shows the main menu until the user confirms exit or the input ends
func (m *Menu) Run(ctx context.Context) error {
	ctx = infrastructure.EnsureSessionID(ctx)
	slog.InfoContext(ctx, "session_start")
	defer slog.InfoContext(ctx, "session_end")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.showMain()
		choice, err := m.p.ask("Select an option: ")
		if err != nil {
			return eofIsDone(err)
		}
		again, err := m.dispatch(ctx, choice)
		if err != nil {
			return eofIsDone(err)
		}
		if !again {
			return nil
		}
	}
}

func (m *Menu) showMain() {
	loaded := m.Manager.Loaded()
	complete := m.Manager.Complete()

	m.p.header("Main Menu")
	m.p.println(MarkAvailable, "1. Load data")
	m.p.println(mark(loaded, complete), "2. Preprocess data")
	m.p.println(mark(complete, m.visualized), "3. Visualize data")
	m.p.println(mark(complete, m.exported), "4. Export data")
	m.p.println(MarkAvailable, "5. Exit")
}

// mark returns done once an option has been used, available while it is
// unlocked and locked otherwise
func mark(unlocked, done bool) string {
	switch {
	case done:
		return MarkDone
	case unlocked:
		return MarkAvailable
	default:
		return MarkLocked
	}
}

func (m *Menu) dispatch(ctx context.Context, choice string) (bool, error) {
	switch {
	case choice == "1":
		return true, m.load(ctx)
	case choice == "2" && m.Manager.Loaded():
		return true, m.preprocess(ctx)
	case choice == "3" && m.Manager.Complete():
		return true, m.visualize(ctx)
	case choice == "4" && m.Manager.Complete():
		return true, m.export(ctx)
	case choice == "5":
		leave, err := m.p.confirm("Exit", "Are you sure you want to exit?")
		if err != nil {
			return false, err
		}
		if leave {
			m.p.println("\nClosing the application...")
			return false, nil
		}
		m.p.println("\nReturning to the main menu...")
		return true, nil
	default:
		m.p.println("Invalid or locked option. Please try again.")
		return true, nil
	}
}

func eofIsDone(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// explain turns an error into the line shown to the user
func explain(err error) string {
	var pErr *pipeline.PipelineError
	if !errors.As(err, &pErr) {
		return "Error: " + err.Error()
	}
	switch pErr.Type {
	case pipeline.ErrorTypeLocked:
		return "Option locked: " + pErr.Message + "."
	case pipeline.ErrorTypeAlreadyDone:
		return "This stage is already completed and cannot be repeated."
	case pipeline.ErrorTypeValidation:
		if pErr.Cause != nil {
			return "Error: " + pErr.Cause.Error()
		}
	}
	return "Error: " + pErr.Error()
}
