package pipeline

import (
	"fmt"
	"sync"
)

// Registry manages the registered pipeline stages
type Registry struct {
	mu     sync.RWMutex
	stages map[StageID]Stage
	order  []StageID
}

// NewRegistry creates an empty stage registry
func NewRegistry() *Registry {
	return &Registry{
		stages: make(map[StageID]Stage),
		order:  make([]StageID, 0),
	}
}

// DefaultRegistry returns a registry holding the five preprocessing stages
// in gate order
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, s := range []Stage{
		NewSelectionStage(),
		NewMissingStage(),
		NewEncodingStage(),
		NewScalingStage(),
		NewOutlierStage(),
	} {
		// ids are distinct and non-empty
		_ = r.Register(s)
	}
	return r
}

// Register adds a stage to the registry
func (r *Registry) Register(stage Stage) error {
	if stage == nil {
		return fmt.Errorf("cannot register nil stage")
	}

	id := stage.ID()
	if id == "" {
		return fmt.Errorf("stage ID cannot be empty")
	}
	if id.index() < 0 {
		return fmt.Errorf("stage %s is not part of the pipeline order", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stages[id]; exists {
		return fmt.Errorf("stage with ID %s already registered", id)
	}

	r.stages[id] = stage
	r.order = append(r.order, id)
	return nil
}

// Replace swaps the stage registered under the same ID
func (r *Registry) Replace(stage Stage) error {
	if stage == nil {
		return fmt.Errorf("cannot register nil stage")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stages[stage.ID()]; !exists {
		return fmt.Errorf("stage with ID %s not found", stage.ID())
	}
	r.stages[stage.ID()] = stage
	return nil
}

// Get retrieves a stage by ID
func (r *Registry) Get(id StageID) (Stage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stage, exists := r.stages[id]
	if !exists {
		return nil, fmt.Errorf("stage with ID %s not found", id)
	}
	return stage, nil
}

// Has checks if a stage is registered
func (r *Registry) Has(id StageID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.stages[id]
	return exists
}

// List returns the registered stages in gate order
func (r *Registry) List() []Stage {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stages := make([]Stage, 0, len(r.stages))
	for _, id := range Order {
		if s, ok := r.stages[id]; ok {
			stages = append(stages, s)
		}
	}
	return stages
}

// Count returns the number of registered stages
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.stages)
}

// Validate checks that every stage of the gate order is registered
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range Order {
		if _, ok := r.stages[id]; !ok {
			return fmt.Errorf("stage %s is not registered", id)
		}
	}
	return nil
}
