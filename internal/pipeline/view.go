package pipeline

import (
	"github.com/sofiagarciap/preprocesador-datos/internal/dataset"
	"github.com/sofiagarciap/preprocesador-datos/internal/taxonomy"
)

// View is the read-only handoff to visualization and export. Every field is
// a copy; changing it does not affect the session.
type View struct {
	Source    string
	Original  *dataset.Dataset
	Processed *dataset.Dataset
	Taxonomy  taxonomy.Taxonomy
}

// Features returns the selected feature names
func (v *View) Features() []string { return v.Taxonomy.Features }

// Target returns the target column name
func (v *View) Target() string { return v.Taxonomy.Target }

// Numeric returns the columns classified numeric
func (v *View) Numeric() []string { return v.Taxonomy.Numeric }

// Categorical returns the columns classified categorical
func (v *View) Categorical() []string { return v.Taxonomy.Categorical }

// View hands out copies of the original and processed datasets once every
// stage has been satisfied
func (m *Manager) View() (*View, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.raw == nil {
		return nil, NewInvalidStateError("", "no dataset loaded")
	}
	if m.state != StateOutliersHandled {
		return nil, NewLockedError("", Order[int(m.state)])
	}
	return &View{
		Source:    m.source,
		Original:  m.raw.Clone(),
		Processed: m.snapshot.Clone(),
		Taxonomy:  m.taxonomy.Clone(),
	}, nil
}
