package ml

import (
	"math/rand"
	"sort"
)

// Node is one node of a flattened regression tree. Leaves have Left == -1.
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     float64
}

// RegressionTree is a CART tree minimising squared error.
type RegressionTree struct {
	Nodes []Node
}

type treeParams struct {
	minSamplesSplit int
	minSamplesLeaf  int
	maxDepth        int
}

type treeBuilder struct {
	X      [][]float64
	y      []float64
	params treeParams
	rng    *rand.Rand
	nodes  []Node
	order  []int
}

func growTree(X [][]float64, y []float64, idx []int, params treeParams, rng *rand.Rand) RegressionTree {
	b := &treeBuilder{X: X, y: y, params: params, rng: rng}
	b.grow(idx, 0)
	return RegressionTree{Nodes: b.nodes}
}

func (b *treeBuilder) grow(idx []int, depth int) int {
	id := len(b.nodes)
	b.nodes = append(b.nodes, Node{Left: -1, Right: -1, Value: b.mean(idx)})

	if len(idx) < b.params.minSamplesSplit || len(idx) < 2*b.params.minSamplesLeaf {
		return id
	}
	if b.params.maxDepth > 0 && depth >= b.params.maxDepth {
		return id
	}

	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		return id
	}

	var left, right []int
	for _, i := range idx {
		if b.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[id].Feature = feature
	b.nodes[id].Threshold = threshold
	b.nodes[id].Left = l
	b.nodes[id].Right = r
	return id
}

func (b *treeBuilder) mean(idx []int) float64 {
	var sum float64
	for _, i := range idx {
		sum += b.y[i]
	}
	return sum / float64(len(idx))
}

// bestSplit scans every feature, in random order, for the threshold with the
// lowest summed squared error of the two children.
func (b *treeBuilder) bestSplit(idx []int) (feature int, threshold float64, ok bool) {
	n := len(idx)
	var total, totalSq float64
	for _, i := range idx {
		total += b.y[i]
		totalSq += b.y[i] * b.y[i]
	}
	bestErr := totalSq - total*total/float64(n)
	if bestErr <= 1e-12 {
		return 0, 0, false
	}

	if cap(b.order) < n {
		b.order = make([]int, n)
	}
	order := b.order[:n]
	minLeaf := b.params.minSamplesLeaf

	for _, f := range b.rng.Perm(len(b.X[0])) {
		copy(order, idx)
		sort.Slice(order, func(a, c int) bool { return b.X[order[a]][f] < b.X[order[c]][f] })

		var leftSum, leftSq float64
		for k := 1; k < n; k++ {
			yi := b.y[order[k-1]]
			leftSum += yi
			leftSq += yi * yi
			if k < minLeaf || n-k < minLeaf {
				continue
			}
			lo, hi := b.X[order[k-1]][f], b.X[order[k]][f]
			if lo == hi {
				continue
			}
			rightSum := total - leftSum
			rightSq := totalSq - leftSq
			sse := leftSq - leftSum*leftSum/float64(k) + rightSq - rightSum*rightSum/float64(n-k)
			if sse < bestErr-1e-12 {
				bestErr = sse
				feature = f
				threshold = lo + (hi-lo)/2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func (t *RegressionTree) Predict(x []float64) float64 {
	n := 0
	for t.Nodes[n].Left >= 0 {
		if x[t.Nodes[n].Feature] <= t.Nodes[n].Threshold {
			n = t.Nodes[n].Left
		} else {
			n = t.Nodes[n].Right
		}
	}
	return t.Nodes[n].Value
}
