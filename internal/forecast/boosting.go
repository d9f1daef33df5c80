package forecast

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// BoostingParams configures a gradient-boosted regression ensemble.
type BoostingParams struct {
	Estimators   int
	MaxDepth     int
	LearningRate float64
	Seed         int64
}

// GradientBoosting is a least-squares gradient-boosted ensemble of regression trees.
// Stage m fits a tree to the residuals of stages 0..m-1 and is added with
// shrinkage LearningRate; stage 0 is the mean target.
type GradientBoosting struct {
	params BoostingParams
	init   float64
	trees  []*regressionTree
}

// NewGradientBoosting returns an unfitted ensemble.
func NewGradientBoosting(p BoostingParams) *GradientBoosting {
	return &GradientBoosting{params: p}
}

// Fit trains the ensemble on rows x and targets y. Identical inputs and seed
// always produce an identical model.
func (g *GradientBoosting) Fit(x [][]float64, y []float64) error {
	if len(x) == 0 {
		return errors.New("gradient boosting: empty training set")
	}
	if len(x) != len(y) {
		return fmt.Errorf("gradient boosting: %d rows but %d targets", len(x), len(y))
	}
	nFeatures := len(x[0])
	if nFeatures == 0 {
		return errors.New("gradient boosting: rows have no features")
	}
	for i, row := range x {
		if len(row) != nFeatures {
			return fmt.Errorf("gradient boosting: row %d has %d features, want %d", i, len(row), nFeatures)
		}
		if err := checkFinite(row); err != nil {
			return fmt.Errorf("gradient boosting: row %d: %w", i, err)
		}
	}
	if err := checkFinite(y); err != nil {
		return fmt.Errorf("gradient boosting: targets: %w", err)
	}

	sum := 0.0
	for _, v := range y {
		sum += v
	}
	g.init = sum / float64(len(y))
	g.trees = g.trees[:0]

	pred := make([]float64, len(y))
	for i := range pred {
		pred[i] = g.init
	}
	residual := make([]float64, len(y))
	rng := rand.New(rand.NewSource(g.params.Seed))

	for m := 0; m < g.params.Estimators; m++ {
		for i := range y {
			residual[i] = y[i] - pred[i]
		}
		tree := fitTree(x, residual, treeParams{
			maxDepth:       g.params.MaxDepth,
			minSamplesLeaf: 1,
			featureOrder:   rng.Perm(nFeatures),
		})
		for i := range pred {
			pred[i] += g.params.LearningRate * tree.predict(x[i])
		}
		g.trees = append(g.trees, tree)
	}
	return nil
}

// Predict returns the ensemble prediction for one row.
func (g *GradientBoosting) Predict(x []float64) float64 {
	out := g.init
	for _, t := range g.trees {
		out += g.params.LearningRate * t.predict(x)
	}
	return out
}

func checkFinite(values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("value %d is not finite (%v)", i, v)
		}
	}
	return nil
}
