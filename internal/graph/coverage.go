package graph

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
)

// CoverageBreakdown shows the sub-scores of the coverage formula.
type CoverageBreakdown struct {
	Connectivity float64 `json:"connectivity"`
	Components   float64 `json:"components"`
	Evaluation   float64 `json:"evaluation"`
	Fragility    float64 `json:"fragility"`
}

// AnalysisReport is the full analysis result.
type AnalysisReport struct {
	CoverageScore     float64           `json:"coverage_score"`
	CoverageBreakdown CoverageBreakdown `json:"coverage_breakdown"`
	Topology          *TopologyReport   `json:"topology"`
	Annotation        *AnnotationReport `json:"annotation"`
	Bridges           *BridgeReport     `json:"bridges"`
}

// AnalyzerConfig holds analysis parameters.
type AnalyzerConfig struct {
	BranchThreshold int
	TopN            int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *AnalyzerConfig {
	return &AnalyzerConfig{
		BranchThreshold: 3,
		TopN:            50,
	}
}

// Analyze runs every section over snap in parallel and computes a composite
// coverage score. snap must not be modified until Analyze returns.
func Analyze(ctx context.Context, snap *Snapshot, config *AnalyzerConfig) (*AnalysisReport, error) {
	var (
		topology   *TopologyReport
		annotation *AnnotationReport
		bridges    *BridgeReport
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gCtx.Err(); err != nil {
			return err
		}
		topology = ComputeTopology(snap, config.BranchThreshold, config.TopN)
		return nil
	})
	g.Go(func() error {
		if err := gCtx.Err(); err != nil {
			return err
		}
		annotation = ComputeAnnotation(snap, config.TopN)
		return nil
	})
	g.Go(func() error {
		if err := gCtx.Err(); err != nil {
			return err
		}
		bridges = ComputeBridges(snap)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := float64(topology.TotalNodes)
	var connectivity, components, evaluation, fragility float64
	if total > 0 {
		connectivity = clamp(1.0-math.Min(float64(topology.OrphanCount)/total, 0.2)*5.0, 0, 1)
		fragility = clamp(1.0-math.Min(float64(bridges.APCount)/total, 0.5)*2.0, 0, 1)
	}
	if topology.NumComponents > 0 {
		components = clamp(1.0/float64(topology.NumComponents), 0, 1)
	}
	if topology.LeafCount > 0 {
		evaluation = clamp(1.0-float64(annotation.UnscoredLeafCount)/float64(topology.LeafCount), 0, 1)
	} else if total > 0 {
		evaluation = 1
	}

	score := 0.25*connectivity + 0.25*components + 0.35*evaluation + 0.15*fragility

	return &AnalysisReport{
		CoverageScore: score,
		CoverageBreakdown: CoverageBreakdown{
			Connectivity: connectivity,
			Components:   components,
			Evaluation:   evaluation,
			Fragility:    fragility,
		},
		Topology:   topology,
		Annotation: annotation,
		Bridges:    bridges,
	}, nil
}

func clamp(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
