package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/bibbank/breachrisk/internal/domain/model"
)

// ForestConfig parameterises RandomForest.
type ForestConfig struct {
	Trees          int    `json:"trees"`
	MaxDepth       int    `json:"max_depth"` // 0 means unbounded
	MinSamplesLeaf int    `json:"min_samples_leaf"`
	Seed           uint64 `json:"seed"`
}

// DefaultForestConfig returns 100 fully grown trees with seed 42.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{Trees: 100, MinSamplesLeaf: 1, Seed: 42}
}

// treeNode is one node of a flattened regression tree. Leaves have
// Feature == -1.
type treeNode struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t"`
	Left      int     `json:"l"`
	Right     int     `json:"r"`
	Value     float64 `json:"v"`
}

type regressionTree struct {
	Nodes []treeNode `json:"nodes"`
}

func (t *regressionTree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature < 0 {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// RandomForest is a bagged ensemble of CART regression trees split on mean
// squared error. Its prediction is the mean over trees.
type RandomForest struct {
	Config ForestConfig      `json:"config"`
	Trees  []*regressionTree `json:"trees"`
}

// NewRandomForest creates an untrained forest.
func NewRandomForest(cfg ForestConfig) *RandomForest {
	if cfg.Trees <= 0 {
		cfg.Trees = 100
	}
	if cfg.MinSamplesLeaf <= 0 {
		cfg.MinSamplesLeaf = 1
	}
	return &RandomForest{Config: cfg}
}

func (f *RandomForest) Kind() model.ModelKind { return model.ModelKindForest }

// Fit grows the trees in parallel. Tree i draws its bootstrap sample from a
// generator seeded with (Seed, i), so results do not depend on scheduling.
func (f *RandomForest) Fit(ctx context.Context, X [][]float64, y []float64) error {
	if err := checkTrainingSet(X, y); err != nil {
		return err
	}

	trees := make([]*regressionTree, f.Config.Trees)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range trees {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(f.Config.Seed, uint64(i)))
			sample := make([]int, len(X))
			for j := range sample {
				sample[j] = rng.IntN(len(X))
			}
			b := treeBuilder{X: X, y: y, cfg: f.Config}
			b.grow(sample, 0)
			trees[i] = &regressionTree{Nodes: b.nodes}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("forest: %w", err)
	}
	f.Trees = trees
	return nil
}

func (f *RandomForest) Predict(x []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	var sum float64
	for _, t := range f.Trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.Trees))
}

func (f *RandomForest) validate() error {
	if len(f.Trees) == 0 {
		return errors.New("forest has no trees")
	}
	for i, t := range f.Trees {
		if t == nil || len(t.Nodes) == 0 {
			return fmt.Errorf("forest tree %d is empty", i)
		}
		for j, n := range t.Nodes {
			if n.Feature >= featureCount {
				return fmt.Errorf("forest tree %d node %d splits on feature %d of %d", i, j, n.Feature, featureCount)
			}
			if n.Feature >= 0 && (n.Left <= j || n.Right <= j || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes)) {
				return fmt.Errorf("forest tree %d node %d has invalid children", i, j)
			}
		}
	}
	return nil
}

type treeBuilder struct {
	X     [][]float64
	y     []float64
	nodes []treeNode
	cfg   ForestConfig
}

// grow appends the subtree for idx and returns its root index.
func (b *treeBuilder) grow(idx []int, depth int) int {
	var sum float64
	for _, i := range idx {
		sum += b.y[i]
	}
	self := len(b.nodes)
	b.nodes = append(b.nodes, treeNode{Feature: -1, Value: sum / float64(len(idx))})

	if len(idx) < 2*b.cfg.MinSamplesLeaf || (b.cfg.MaxDepth > 0 && depth >= b.cfg.MaxDepth) {
		return self
	}
	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		return self
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
	b.nodes[self] = treeNode{Feature: feature, Threshold: threshold, Left: l, Right: r}
	return self
}

// bestSplit scans every feature for the threshold minimising the summed
// squared error of the two children.
func (b *treeBuilder) bestSplit(idx []int) (feature int, threshold float64, ok bool) {
	n := len(idx)
	var total, totalSq float64
	for _, i := range idx {
		total += b.y[i]
		totalSq += b.y[i] * b.y[i]
	}
	best := totalSq - total*total/float64(n)
	// Pure nodes cannot be improved.
	if best <= 1e-12 {
		return 0, 0, false
	}

	sorted := slices.Clone(idx)
	minLeaf := b.cfg.MinSamplesLeaf
	for f := range b.X[idx[0]] {
		slices.SortFunc(sorted, func(a, c int) int {
			switch va, vc := b.X[a][f], b.X[c][f]; {
			case va < vc:
				return -1
			case va > vc:
				return 1
			default:
				return 0
			}
		})

		var leftSum, leftSq float64
		for k := 0; k < n-1; k++ {
			yi := b.y[sorted[k]]
			leftSum += yi
			leftSq += yi * yi

			cur, next := b.X[sorted[k]][f], b.X[sorted[k+1]][f]
			nl := k + 1
			if cur == next || nl < minLeaf || n-nl < minLeaf {
				continue
			}
			rightSum := total - leftSum
			sse := (leftSq - leftSum*leftSum/float64(nl)) +
				((totalSq - leftSq) - rightSum*rightSum/float64(n-nl))
			if sse < best-1e-12 {
				best, feature, threshold, ok = sse, f, cur+(next-cur)/2, true
			}
		}
	}
	return feature, threshold, ok
}

func checkTrainingSet(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return errors.New("empty training set")
	}
	if len(X) != len(y) {
		return fmt.Errorf("training set has %d rows and %d targets", len(X), len(y))
	}
	width := len(X[0])
	for i, row := range X {
		if len(row) != width {
			return fmt.Errorf("row %d has %d features, want %d", i, len(row), width)
		}
	}
	return nil
}
