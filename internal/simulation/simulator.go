package simulation

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"
)

const samplePathCount = 20

// Options tunes the Monte-Carlo run.
type Options struct {
	Runs    int
	Horizon int
	Workers int
	// Seed makes runs reproducible when non-zero.
	Seed uint64
}

// Simulator evaluates scenarios.
type Simulator struct {
	opts Options
}

func NewSimulator(opts Options) *Simulator {
	if opts.Runs <= 0 {
		opts.Runs = 300
	}
	if opts.Horizon <= 0 {
		opts.Horizon = 12
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Workers > opts.Runs {
		opts.Workers = opts.Runs
	}
	return &Simulator{opts: opts}
}

// pathStats accumulates inventory levels of a chunk of paths.
type pathStats struct {
	sum       []float64
	min       []float64
	max       []float64
	stockouts int
	samples   map[int][]float64
}

func newPathStats(horizon int) *pathStats {
	ps := &pathStats{
		sum:     make([]float64, horizon),
		min:     make([]float64, horizon),
		max:     make([]float64, horizon),
		samples: make(map[int][]float64),
	}
	for t := 0; t < horizon; t++ {
		ps.min[t] = math.Inf(1)
		ps.max[t] = math.Inf(-1)
	}
	return ps
}

func (ps *pathStats) merge(other *pathStats) {
	for t := range ps.sum {
		ps.sum[t] += other.sum[t]
		ps.min[t] = math.Min(ps.min[t], other.min[t])
		ps.max[t] = math.Max(ps.max[t], other.max[t])
	}
	ps.stockouts += other.stockouts
	for i, p := range other.samples {
		ps.samples[i] = p
	}
}

// Run computes the deterministic metrics and the Monte-Carlo inventory bands.
func (s *Simulator) Run(ctx context.Context, sc Scenario) (*Response, error) {
	horizon := s.opts.Horizon
	runs := s.opts.Runs

	z := ZScore(sc.ServiceTarget)
	safetyStock := SafetyStock(z, sc.DemandStd, sc.LeadTime)
	reorderPoint := ReorderPoint(sc.Demand, sc.LeadTime, safetyStock)
	startInventory := sc.Demand + safetyStock

	chunks := make([]*pathStats, s.opts.Workers)
	seed := s.opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	g, ctx := errgroup.WithContext(ctx)
	per := (runs + s.opts.Workers - 1) / s.opts.Workers
	for w := 0; w < s.opts.Workers; w++ {
		first := w * per
		last := min(first+per, runs)
		chunks[w] = newPathStats(horizon)
		stats := chunks[w]
		rng := rand.New(rand.NewPCG(seed, uint64(w)))

		g.Go(func() error {
			for run := first; run < last; run++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				simulatePath(rng, sc, startInventory, run, stats)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := newPathStats(horizon)
	for _, c := range chunks {
		total.merge(c)
	}

	avg := make([]float64, horizon)
	for t := range avg {
		avg[t] = total.sum[t] / float64(runs)
	}

	samples := make([][]float64, 0, len(total.samples))
	for i := 0; i < samplePathCount; i++ {
		if p, ok := total.samples[i]; ok {
			samples = append(samples, p)
		}
	}

	stockoutProbability := float64(total.stockouts) / float64(max(runs*horizon, 1))

	return &Response{
		TotalCost:           round(sc.Demand*sc.Cost, 2),
		ExpectedDelay:       round(sc.LeadTime*0.5, 2),
		ServiceLevel:        round(ServiceLevelFor(sc.ScenarioType), 3),
		EOQ:                 round(EOQ(sc.Demand, sc.OrderingCost, sc.HoldingCost), 2),
		SafetyStock:         round(safetyStock, 2),
		ReorderPoint:        round(reorderPoint, 2),
		Forecast:            Forecast(sc.Demand, GrowthFor(sc.ScenarioType), horizon),
		InventoryAvg:        avg,
		InventoryLower:      total.min,
		InventoryUpper:      total.max,
		StockoutProbability: round(stockoutProbability, 3),
		RiskLevel:           RiskFromStockout(stockoutProbability),
		SamplePaths:         samples,
	}, nil
}

// simulatePath depletes inventory by Gaussian demand, clamping at zero and
// counting every period that ends out of stock.
func simulatePath(rng *rand.Rand, sc Scenario, start float64, run int, stats *pathStats) {
	inv := start
	var path []float64
	if run < samplePathCount {
		path = make([]float64, len(stats.sum))
	}

	for t := range stats.sum {
		demand := math.Max(0, sc.Demand+rng.NormFloat64()*sc.DemandStd)
		inv -= demand
		if inv <= 0 {
			stats.stockouts++
			inv = 0
		}

		stats.sum[t] += inv
		stats.min[t] = math.Min(stats.min[t], inv)
		stats.max[t] = math.Max(stats.max[t], inv)
		if path != nil {
			path[t] = inv
		}
	}

	if path != nil {
		stats.samples[run] = path
	}
}
