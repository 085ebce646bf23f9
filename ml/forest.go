package ml

import (
	"fmt"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// RandomForest averages bootstrap-trained regression trees. Each tree gets its
// own seed drawn from Seed up front, so the fitted forest does not depend on
// how the trees are scheduled.
type RandomForest struct {
	NEstimators     int
	Seed            int64
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxDepth        int
	Trees           []RegressionTree
}

func NewRandomForest(nEstimators int, seed int64) *RandomForest {
	return &RandomForest{
		NEstimators:     nEstimators,
		Seed:            seed,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
}

func (rf *RandomForest) Fit(X [][]float64, y []float64) error {
	n, _, err := checkXY(X, y)
	if err != nil {
		return fmt.Errorf("random forest: %w", err)
	}
	if rf.NEstimators <= 0 {
		return fmt.Errorf("random forest: n_estimators must be positive, got %d", rf.NEstimators)
	}

	master := rand.New(rand.NewSource(rf.Seed))
	seeds := make([]int64, rf.NEstimators)
	for i := range seeds {
		seeds[i] = master.Int63()
	}
	params := treeParams{
		minSamplesSplit: max(rf.MinSamplesSplit, 2),
		minSamplesLeaf:  max(rf.MinSamplesLeaf, 1),
		maxDepth:        rf.MaxDepth,
	}

	trees := make([]RegressionTree, rf.NEstimators)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for t := range trees {
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seeds[t]))
			idx := make([]int, n)
			for i := range idx {
				idx[i] = rng.Intn(n)
			}
			trees[t] = growTree(X, y, idx, params, rng)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	rf.Trees = trees
	return nil
}

func (rf *RandomForest) Predict(x []float64) float64 {
	var sum float64
	for i := range rf.Trees {
		sum += rf.Trees[i].Predict(x)
	}
	return sum / float64(len(rf.Trees))
}
