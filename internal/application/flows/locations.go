package flows

import (
	"context"
	"fmt"
	"sync"

	"github.com/minitask/client/internal/domain/entities"
	"github.com/minitask/client/internal/ports"
)

const levels = 3

// LocationPicker is the cascading State > District > City selector.
// Selecting at one level unsets every level below it, and a level's options
// are fetched only after its parent has been selected.
type LocationPicker struct {
	api ports.LocationAPI

	mu       sync.Mutex
	options  [levels][]entities.LocationNode
	selected [levels]entities.ID
	// bumped on every change at or above a level; stale fetches are dropped
	generation [levels]uint64
	// reports whether the owning screen still shows the picker
	active func() bool
}

// PickerOption configures a LocationPicker.
type PickerOption func(*LocationPicker)

// WithActive ties the picker to its screen. Fetches that finish once active
// reports false leave the picker untouched.
func WithActive(active func() bool) PickerOption {
	return func(p *LocationPicker) {
		p.active = active
	}
}

// NewLocationPicker creates an empty picker.
func NewLocationPicker(api ports.LocationAPI, opts ...PickerOption) *LocationPicker {
	p := &LocationPicker{api: api}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LoadStates fetches the top level and unsets every selection.
func (p *LocationPicker) LoadStates(ctx context.Context) error {
	p.mu.Lock()
	p.resetFrom(entities.LevelState)
	gen := p.generation[entities.LevelState]
	p.mu.Unlock()

	nodes, err := p.api.States(ctx)
	if err != nil {
		return fmt.Errorf("load states: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.live() && p.generation[entities.LevelState] == gen {
		p.options[entities.LevelState] = nodes
	}
	return nil
}

// Select picks id at level, unsets the levels below and, for State and
// District, fetches the options of the next level before returning.
func (p *LocationPicker) Select(ctx context.Context, level entities.LocationLevel, id entities.ID) error {
	if level < entities.LevelState || level > entities.LevelCity {
		return fmt.Errorf("select %s: %w", level, ErrUnknownOption)
	}

	p.mu.Lock()
	if !contains(p.options[level], id) {
		p.mu.Unlock()
		return fmt.Errorf("select %s %q: %w", level, id, ErrUnknownOption)
	}
	p.selected[level] = id
	if level == entities.LevelCity {
		p.mu.Unlock()
		return nil
	}
	child := level + 1
	p.resetFrom(child)
	gen := p.generation[child]
	p.mu.Unlock()

	var (
		nodes []entities.LocationNode
		err   error
	)
	if level == entities.LevelState {
		nodes, err = p.api.Districts(ctx, id)
	} else {
		nodes, err = p.api.Cities(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("load %s options: %w", child, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.live() && p.generation[child] == gen {
		p.options[child] = nodes
	}
	return nil
}

// Preset walks the cascade to a known triple, used to seed the edit form.
// Each level's fetch completes before the next level is selected.
func (p *LocationPicker) Preset(ctx context.Context, state, district, city entities.ID) error {
	if err := p.LoadStates(ctx); err != nil {
		return err
	}
	steps := []struct {
		level entities.LocationLevel
		id    entities.ID
	}{
		{entities.LevelState, state},
		{entities.LevelDistrict, district},
		{entities.LevelCity, city},
	}
	for _, step := range steps {
		if step.id.IsZero() {
			return nil
		}
		if err := p.Select(ctx, step.level, step.id); err != nil {
			return err
		}
	}
	return nil
}

// Clear unsets every selection but keeps the loaded states.
func (p *LocationPicker) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected[entities.LevelState] = ""
	p.resetFrom(entities.LevelDistrict)
}

// Options returns the choices currently offered at level.
func (p *LocationPicker) Options(level entities.LocationLevel) []entities.LocationNode {
	p.mu.Lock()
	defer p.mu.Unlock()
	if level < entities.LevelState || level > entities.LevelCity {
		return nil
	}
	out := make([]entities.LocationNode, len(p.options[level]))
	copy(out, p.options[level])
	return out
}

// Selected returns the id picked at level, empty when unset.
func (p *LocationPicker) Selected(level entities.LocationLevel) entities.ID {
	p.mu.Lock()
	defer p.mu.Unlock()
	if level < entities.LevelState || level > entities.LevelCity {
		return ""
	}
	return p.selected[level]
}

// Selection returns the picked triple.
func (p *LocationPicker) Selection() (state, district, city entities.ID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected[entities.LevelState], p.selected[entities.LevelDistrict], p.selected[entities.LevelCity]
}

func (p *LocationPicker) live() bool {
	return p.active == nil || p.active()
}

// resetFrom unsets level and everything below it. Callers hold p.mu.
func (p *LocationPicker) resetFrom(level entities.LocationLevel) {
	for l := level; l <= entities.LevelCity; l++ {
		p.options[l] = nil
		p.selected[l] = ""
		p.generation[l]++
	}
}

func contains(nodes []entities.LocationNode, id entities.ID) bool {
	for _, n := range nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}
