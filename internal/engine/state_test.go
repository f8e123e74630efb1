package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/domain"
)

var testInput = domain.ScenarioInput{
	Demand:             500,
	LeadTime:           7,
	UnitCost:           10,
	OrderingCost:       200,
	HoldingCost:        50,
	TargetServiceLevel: domain.ServiceLevel95,
}

func withResult(st State, totalCost float64) State {
	return st.StartRun().CompleteRun(testInput, &domain.Result{TotalCost: totalCost})
}

func TestSaveWithoutResult(t *testing.T) {
	st := NewState()

	next, saved, err := st.Save("", "id-1", time.Now())
	if !errors.Is(err, domain.ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
	if saved != nil {
		t.Error("expected no saved scenario")
	}
	if len(next.Scenarios) != 0 {
		t.Errorf("expected list unchanged, got %d entries", len(next.Scenarios))
	}
	if next.Notice == "" {
		t.Error("expected a notice for the user")
	}
}

func TestSaveDefaultNamesAndSelection(t *testing.T) {
	st := withResult(NewState(), 100)

	st, first, err := st.Save("", "id-1", time.Now())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if first.Name != "Scenario 1" {
		t.Errorf("expected default name Scenario 1, got %q", first.Name)
	}
	if st.Selection.A != "id-1" || st.Selection.B != "" {
		t.Errorf("unexpected selection after first save: %+v", st.Selection)
	}

	st = withResult(st, 200)
	st, second, err := st.Save("  ", "id-2", time.Now())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if second.Name != "Scenario 2" {
		t.Errorf("expected default name Scenario 2, got %q", second.Name)
	}
	if st.Selection.B != "id-2" {
		t.Errorf("expected B to default to second save, got %+v", st.Selection)
	}

	st, third, _ := st.Save("Peak season", "id-3", time.Now())
	if third.Name != "Peak season" {
		t.Errorf("expected explicit name, got %q", third.Name)
	}
	if st.Selection.A != "id-1" || st.Selection.B != "id-2" {
		t.Errorf("third save should not move selection, got %+v", st.Selection)
	}
	if third.Inputs.Demand != 500 || third.Inputs.TargetServiceLevel != domain.ServiceLevel95 {
		t.Errorf("expected run inputs snapshot, got %+v", third.Inputs)
	}
}

func TestSaveDoesNotAliasPreviousState(t *testing.T) {
	st := withResult(NewState(), 100)
	st, _, _ = st.Save("", "id-1", time.Now())

	before := st
	after, _, _ := st.Save("", "id-2", time.Now())

	if len(before.Scenarios) != 1 {
		t.Errorf("previous state mutated: %d entries", len(before.Scenarios))
	}
	if len(after.Scenarios) != 2 {
		t.Errorf("expected 2 entries, got %d", len(after.Scenarios))
	}
}

func TestResolveComparisonDefaults(t *testing.T) {
	st := withResult(NewState(), 100)
	st, _, _ = st.Save("", "id-1", time.Now())

	a, b := st.ResolveComparison()
	if a == nil || b == nil || a.ID != "id-1" || b.ID != "id-1" {
		t.Errorf("with one entry both slots should resolve to it, got %v %v", a, b)
	}
	if st.ComparisonAvailable() {
		t.Error("comparison should be unavailable with one entry")
	}

	st = withResult(st, 200)
	st, _, _ = st.Save("", "id-2", time.Now())
	st.Selection = domain.ComparisonSelection{}

	a, b = st.ResolveComparison()
	if a.ID != "id-1" || b.ID != "id-2" {
		t.Errorf("expected positional defaults, got %s %s", a.ID, b.ID)
	}
	if FormatMetric(a, FieldTotalCost) != "100" || FormatMetric(b, FieldTotalCost) != "200" {
		t.Errorf("unexpected formatted totals %q %q", FormatMetric(a, FieldTotalCost), FormatMetric(b, FieldTotalCost))
	}
}

func TestSelectUnknownIDFallsBack(t *testing.T) {
	st := withResult(NewState(), 100)
	st, _, _ = st.Save("", "id-1", time.Now())
	st = withResult(st, 200)
	st, _, _ = st.Save("", "id-2", time.Now())

	st = st.Select(domain.SlotA, "id-2").Select(domain.SlotB, "missing")

	a, b := st.ResolveComparison()
	if a.ID != "id-2" {
		t.Errorf("expected explicit A, got %s", a.ID)
	}
	if b.ID != "id-2" {
		t.Errorf("expected B to fall back to second entry, got %s", b.ID)
	}
	if st.Selection.B != "missing" {
		t.Error("select should store the id without validation")
	}
}

func TestFailRunKeepsResult(t *testing.T) {
	st := withResult(NewState(), 100)
	current := st.Current

	st = st.StartRun()
	if !st.Running() {
		t.Fatal("expected running after StartRun")
	}
	st = st.FailRun()

	if st.Running() {
		t.Error("expected idle after failure")
	}
	if st.Current != current {
		t.Error("failed run must leave the current result untouched")
	}
}
