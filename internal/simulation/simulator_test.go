package simulation

import (
	"context"
	"reflect"
	"testing"
)

func testScenario() Scenario {
	return Scenario{
		Demand:        100,
		LeadTime:      4,
		Cost:          12.5,
		ScenarioType:  ScenarioBase,
		OrderingCost:  50,
		HoldingCost:   2,
		ServiceTarget: 0.95,
		DemandStd:     10,
	}
}

func TestSimulatorDeterministicMetrics(t *testing.T) {
	sim := NewSimulator(Options{Runs: 50, Horizon: 12, Workers: 4, Seed: 7})

	resp, err := sim.Run(context.Background(), testScenario())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if resp.TotalCost != 1250 {
		t.Errorf("TotalCost = %v, want 1250", resp.TotalCost)
	}
	if resp.ExpectedDelay != 2 {
		t.Errorf("ExpectedDelay = %v, want 2", resp.ExpectedDelay)
	}
	if resp.ServiceLevel != 0.95 {
		t.Errorf("ServiceLevel = %v, want 0.95", resp.ServiceLevel)
	}
	if resp.EOQ != 70.71 {
		t.Errorf("EOQ = %v, want 70.71", resp.EOQ)
	}
	if resp.SafetyStock != 33 || resp.ReorderPoint != 133 {
		t.Errorf("unexpected safety stock %v / reorder point %v", resp.SafetyStock, resp.ReorderPoint)
	}
	if len(resp.Forecast) != 12 || len(resp.InventoryAvg) != 12 {
		t.Errorf("expected 12-period series, got %d / %d", len(resp.Forecast), len(resp.InventoryAvg))
	}
	if len(resp.SamplePaths) != 20 {
		t.Errorf("expected 20 sample paths, got %d", len(resp.SamplePaths))
	}
}

func TestSimulatorBands(t *testing.T) {
	sim := NewSimulator(Options{Runs: 100, Horizon: 6, Workers: 3, Seed: 11})

	resp, err := sim.Run(context.Background(), testScenario())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for i := range resp.InventoryAvg {
		lo, avg, hi := resp.InventoryLower[i], resp.InventoryAvg[i], resp.InventoryUpper[i]
		if lo < 0 || lo > avg || avg > hi {
			t.Errorf("period %d: expected 0 <= lower <= avg <= upper, got %v %v %v", i, lo, avg, hi)
		}
	}
	// starting inventory covers about one period of demand, so stockouts are frequent
	if resp.StockoutProbability <= 0.3 || resp.RiskLevel != "high" {
		t.Errorf("expected high stockout risk, got %v (%s)", resp.StockoutProbability, resp.RiskLevel)
	}
}

func TestSimulatorSeedReproducible(t *testing.T) {
	opts := Options{Runs: 40, Horizon: 5, Workers: 2, Seed: 99}

	a, err := NewSimulator(opts).Run(context.Background(), testScenario())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := NewSimulator(opts).Run(context.Background(), testScenario())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !reflect.DeepEqual(a.InventoryAvg, b.InventoryAvg) {
		t.Error("expected identical averages for the same seed")
	}
}

func TestSimulatorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewSimulator(Options{Runs: 10, Seed: 1}).Run(ctx, testScenario()); err == nil {
		t.Error("expected error for cancelled context")
	}
}
