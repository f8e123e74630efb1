package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/domain"
)

// RunStatus is the run lifecycle: idle -> running -> idle.
type RunStatus string

const (
	StatusIdle    RunStatus = "idle"
	StatusRunning RunStatus = "running"
)

const (
	noticeBackendUnavailable = "The simulation service is unavailable. Please try again."
	noticeSaveWithoutResult  = "Run a simulation before saving a scenario."
	noticeSaved              = "Scenario saved."
)

// State is the application state of one dashboard session. Transitions are
// value-receiver methods returning the next state; slices are copied on write,
// so a State handed out never changes underneath its holder.
type State struct {
	Status        RunStatus                  `json:"status"`
	Current       *domain.Result             `json:"current"`
	CurrentInputs *domain.RunInputs          `json:"current_inputs,omitempty"`
	Scenarios     []domain.SavedScenario     `json:"scenarios"`
	Selection     domain.ComparisonSelection `json:"selection"`
	Notice        string                     `json:"notice,omitempty"`
}

// NewState returns an idle state with no result.
func NewState() State {
	return State{Status: StatusIdle, Scenarios: []domain.SavedScenario{}}
}

// Running reports whether a run is outstanding.
func (s State) Running() bool {
	return s.Status == StatusRunning
}

func (s State) StartRun() State {
	s.Status = StatusRunning
	s.Notice = ""
	return s
}

// CompleteRun publishes r as the current result.
func (s State) CompleteRun(in domain.ScenarioInput, r *domain.Result) State {
	inputs := in.RunInputs()
	s.Status = StatusIdle
	s.Current = r
	s.CurrentInputs = &inputs
	return s
}

// FailRun returns to idle keeping the current result untouched.
func (s State) FailRun() State {
	s.Status = StatusIdle
	s.Notice = noticeBackendUnavailable
	return s
}

// Save appends a snapshot of the current result. Without a current result the
// list is unchanged, a notice is set and ErrNoResult is returned.
func (s State) Save(name, id string, now time.Time) (State, *domain.SavedScenario, error) {
	if s.Current == nil {
		s.Notice = noticeSaveWithoutResult
		return s, nil, domain.ErrNoResult
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Scenario %d", len(s.Scenarios)+1)
	}

	var inputs domain.RunInputs
	if s.CurrentInputs != nil {
		inputs = *s.CurrentInputs
	}

	saved := domain.SavedScenario{
		ID:      id,
		Name:    name,
		Inputs:  inputs,
		Result:  s.Current,
		SavedAt: now,
	}

	next := make([]domain.SavedScenario, len(s.Scenarios), len(s.Scenarios)+1)
	copy(next, s.Scenarios)
	next = append(next, saved)
	s.Scenarios = next

	if len(next) == 1 && s.Selection.A == "" {
		s.Selection.A = id
	}
	if len(next) == 2 && s.Selection.B == "" {
		s.Selection.B = id
	}
	s.Notice = noticeSaved

	return s, &saved, nil
}

// Select points a comparison slot at id. The id is not checked here;
// unknown ids fall back to positional defaults when resolved.
func (s State) Select(slot domain.ComparisonSlot, id string) State {
	switch slot {
	case domain.SlotA:
		s.Selection.A = id
	case domain.SlotB:
		s.Selection.B = id
	}
	return s
}

// Find returns the saved scenario with the given id.
func (s State) Find(id string) *domain.SavedScenario {
	if id == "" {
		return nil
	}
	for i := range s.Scenarios {
		if s.Scenarios[i].ID == id {
			return &s.Scenarios[i]
		}
	}
	return nil
}

// ResolveComparison applies the default selection policy: A falls back to the
// first saved scenario, B to the second (or the first when only one exists).
func (s State) ResolveComparison() (a, b *domain.SavedScenario) {
	a = s.Find(s.Selection.A)
	if a == nil && len(s.Scenarios) > 0 {
		a = &s.Scenarios[0]
	}

	b = s.Find(s.Selection.B)
	if b == nil {
		switch {
		case len(s.Scenarios) > 1:
			b = &s.Scenarios[1]
		case len(s.Scenarios) == 1:
			b = &s.Scenarios[0]
		}
	}
	return a, b
}

// ComparisonAvailable reports whether at least two scenarios are saved.
func (s State) ComparisonAvailable() bool {
	return len(s.Scenarios) >= 2
}
