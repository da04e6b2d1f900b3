package scoring

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	domsvc "LoanPredictor/internal/domain/service"
)

const (
	ClassifierForest   = "forest"
	ClassifierLogistic = "logistic"
	ClassifierRemote   = "remote"
)

// treeNode is either a split (left/right set) or a leaf carrying the
// class-1 fraction of the bootstrap rows that reached it.
type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	prob      float64
}

func (n *treeNode) isLeaf() bool { return n.left == nil }

func (n *treeNode) predict(x []float64) float64 {
	for !n.isLeaf() {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.prob
}

// RandomForest is a bootstrap-aggregated ensemble of fully grown CART trees
// with Gini impurity and sqrt(p) candidate features per split.
type RandomForest struct {
	nTrees int
	seed   int64
	trees  []*treeNode
}

func NewRandomForest(nTrees int, seed int64) *RandomForest {
	return &RandomForest{nTrees: nTrees, seed: seed}
}

func (f *RandomForest) Name() string { return ClassifierForest }

// Trees returns the number of fitted trees.
func (f *RandomForest) Trees() int { return len(f.trees) }

func (f *RandomForest) Fit(ctx context.Context, X [][]float64, y []int) error {
	if err := checkDataset(X, y); err != nil {
		return err
	}
	if f.nTrees <= 0 {
		return fmt.Errorf("forest: trees must be positive, got %d", f.nTrees)
	}

	rng := rand.New(rand.NewSource(f.seed))
	p := len(X[0])
	mtry := int(math.Sqrt(float64(p)))
	if mtry < 1 {
		mtry = 1
	}

	trees := make([]*treeNode, 0, f.nTrees)
	for t := 0; t < f.nTrees; t++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		idx := make([]int, len(X))
		for i := range idx {
			idx[i] = rng.Intn(len(X))
		}
		trees = append(trees, growTree(X, y, idx, mtry, rng))
	}
	f.trees = trees
	return nil
}

// PredictProbability averages the leaf probabilities of every tree.
func (f *RandomForest) PredictProbability(_ context.Context, x []float64) (float64, error) {
	if len(f.trees) == 0 {
		return 0, fmt.Errorf("forest: not fitted")
	}
	var sum float64
	for _, t := range f.trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.trees)), nil
}

func growTree(X [][]float64, y []int, idx []int, mtry int, rng *rand.Rand) *treeNode {
	pos := 0
	for _, i := range idx {
		pos += y[i]
	}
	leaf := &treeNode{prob: float64(pos) / float64(len(idx))}
	if pos == 0 || pos == len(idx) {
		return leaf
	}

	feature, threshold, ok := bestSplit(X, y, idx, mtry, rng)
	if !ok {
		return leaf
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      growTree(X, y, left, mtry, rng),
		right:     growTree(X, y, right, mtry, rng),
	}
}

// bestSplit visits features in random order. At least mtry features are
// evaluated; more are drawn while none of them admits a split.
func bestSplit(X [][]float64, y []int, idx []int, mtry int, rng *rand.Rand) (int, float64, bool) {
	order := rng.Perm(len(X[0]))
	bestFeature, bestThreshold := -1, 0.0
	bestImpurity := math.Inf(1)

	for visited, j := range order {
		if visited >= mtry && bestFeature >= 0 {
			break
		}
		thr, imp, ok := bestThresholdFor(X, y, idx, j)
		if ok && imp < bestImpurity {
			bestFeature, bestThreshold, bestImpurity = j, thr, imp
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}

type point struct {
	v     float64
	label int
}

// bestThresholdFor scans midpoints between consecutive distinct values and
// returns the one with the lowest weighted Gini impurity.
func bestThresholdFor(X [][]float64, y []int, idx []int, j int) (float64, float64, bool) {
	pts := make([]point, len(idx))
	totalPos := 0
	for k, i := range idx {
		pts[k] = point{v: X[i][j], label: y[i]}
		totalPos += y[i]
	}
	sort.Slice(pts, func(a, b int) bool { return pts[a].v < pts[b].v })

	n := len(pts)
	best := math.Inf(1)
	var bestThr float64
	found := false
	leftPos := 0
	for k := 0; k < n-1; k++ {
		leftPos += pts[k].label
		if pts[k].v == pts[k+1].v {
			continue
		}
		nl, nr := float64(k+1), float64(n-k-1)
		imp := (nl*gini(leftPos, k+1) + nr*gini(totalPos-leftPos, n-k-1)) / float64(n)
		if imp < best {
			best = imp
			bestThr = pts[k].v + (pts[k+1].v-pts[k].v)/2
			found = true
		}
	}
	return bestThr, best, found
}

func gini(pos, n int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(pos) / float64(n)
	return 1 - p*p - (1-p)*(1-p)
}

func checkDataset(X [][]float64, y []int) error {
	if len(X) == 0 {
		return fmt.Errorf("classifier: empty training set")
	}
	if len(X) != len(y) {
		return fmt.Errorf("classifier: %d rows but %d labels", len(X), len(y))
	}
	for i, label := range y {
		if label != 0 && label != 1 {
			return fmt.Errorf("classifier: label %d at row %d is not 0/1", label, i)
		}
	}
	return nil
}

var _ domsvc.Classifier = (*RandomForest)(nil)
