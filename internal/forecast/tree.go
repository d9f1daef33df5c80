package forecast

import (
	"math"
	"sort"
)

// featureThreshold is the smallest gap between two feature values that can be split.
const featureThreshold = 1e-7

// node is one node of a fitted regression tree. Leaves have feature == -1.
type node struct {
	feature     int
	threshold   float64
	value       float64
	left, right *node
}

func (n *node) predict(x []float64) float64 {
	for n.feature >= 0 {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// regressionTree is a CART tree fitted by squared-error reduction with leaves
// holding the mean target of their samples.
type regressionTree struct {
	root *node
}

type treeParams struct {
	maxDepth       int
	minSamplesLeaf int
	// featureOrder is the order features are scanned in; on equal gain the
	// first feature scanned wins.
	featureOrder []int
}

func fitTree(x [][]float64, y []float64, p treeParams) *regressionTree {
	idx := make([]int, len(y))
	for i := range idx {
		idx[i] = i
	}
	return &regressionTree{root: grow(x, y, idx, 0, p)}
}

func (t *regressionTree) predict(x []float64) float64 {
	return t.root.predict(x)
}

func grow(x [][]float64, y []float64, idx []int, depth int, p treeParams) *node {
	sum := 0.0
	for _, i := range idx {
		sum += y[i]
	}
	leaf := &node{feature: -1, value: sum / float64(len(idx))}

	if depth >= p.maxDepth || len(idx) < 2*p.minSamplesLeaf {
		return leaf
	}

	best := findSplit(x, y, idx, sum, p)
	if best.feature < 0 {
		return leaf
	}

	var left, right []int
	for _, i := range idx {
		if x[i][best.feature] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &node{
		feature:   best.feature,
		threshold: best.threshold,
		left:      grow(x, y, left, depth+1, p),
		right:     grow(x, y, right, depth+1, p),
	}
}

type split struct {
	feature   int
	threshold float64
	gain      float64
}

// findSplit scans every feature and every midpoint between consecutive distinct
// values, maximising the reduction in squared error.
func findSplit(x [][]float64, y []float64, idx []int, total float64, p treeParams) split {
	best := split{feature: -1}
	n := len(idx)
	parent := total * total / float64(n)
	sorted := make([]int, n)

	for _, f := range p.featureOrder {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, b int) bool { return x[sorted[a]][f] < x[sorted[b]][f] })

		leftSum := 0.0
		for k := 0; k < n-1; k++ {
			leftSum += y[sorted[k]]
			nl := k + 1
			nr := n - nl
			if nl < p.minSamplesLeaf || nr < p.minSamplesLeaf {
				continue
			}
			lo, hi := x[sorted[k]][f], x[sorted[k+1]][f]
			if hi <= lo+featureThreshold {
				continue
			}
			rightSum := total - leftSum
			gain := leftSum*leftSum/float64(nl) + rightSum*rightSum/float64(nr) - parent
			if gain > best.gain+1e-12 {
				threshold := lo/2 + hi/2
				if math.IsInf(threshold, 0) || threshold == hi {
					threshold = lo
				}
				best = split{feature: f, threshold: threshold, gain: gain}
			}
		}
	}
	return best
}
