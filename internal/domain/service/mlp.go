package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/bibbank/breachrisk/internal/domain/model"
)

// MLPConfig parameterises the feed-forward network.
type MLPConfig struct {
	Hidden       []int   `json:"hidden"`
	Epochs       int     `json:"epochs"`
	BatchSize    int     `json:"batch_size"`
	LearningRate float64 `json:"learning_rate"`
	Seed         uint64  `json:"seed"`
}

// DefaultMLPConfig returns two ReLU layers of 64 and 32 units trained with
// Adam for 20 epochs in batches of 16.
func DefaultMLPConfig() MLPConfig {
	return MLPConfig{
		Hidden:       []int{64, 32},
		Epochs:       20,
		BatchSize:    16,
		LearningRate: 0.001,
		Seed:         42,
	}
}

const (
	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-7
)

type denseLayer struct {
	// W is indexed [out][in].
	W [][]float64 `json:"w"`
	B []float64   `json:"b"`
}

// MLP is a fully connected regression network with ReLU hidden layers and
// a single linear output, trained on mean squared error.
type MLP struct {
	Config MLPConfig    `json:"config"`
	Layers []denseLayer `json:"layers"`
}

// NewMLP creates an untrained network.
func NewMLP(cfg MLPConfig) *MLP {
	def := DefaultMLPConfig()
	if len(cfg.Hidden) == 0 {
		cfg.Hidden = def.Hidden
	}
	if cfg.Epochs <= 0 {
		cfg.Epochs = def.Epochs
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = def.LearningRate
	}
	return &MLP{Config: cfg}
}

func (m *MLP) Kind() model.ModelKind { return model.ModelKindMLP }

// Fit initialises weights with Glorot-uniform and runs mini-batch Adam.
func (m *MLP) Fit(ctx context.Context, X [][]float64, y []float64) error {
	if err := checkTrainingSet(X, y); err != nil {
		return err
	}
	rng := rand.New(rand.NewPCG(m.Config.Seed, 0))

	sizes := append([]int{len(X[0])}, m.Config.Hidden...)
	sizes = append(sizes, 1)
	m.Layers = make([]denseLayer, len(sizes)-1)
	for l := range m.Layers {
		in, out := sizes[l], sizes[l+1]
		limit := math.Sqrt(6 / float64(in+out))
		layer := denseLayer{W: make([][]float64, out), B: make([]float64, out)}
		for o := range layer.W {
			layer.W[o] = make([]float64, in)
			for i := range layer.W[o] {
				layer.W[o][i] = (rng.Float64()*2 - 1) * limit
			}
		}
		m.Layers[l] = layer
	}

	grads, first, second := m.zeroLike(), m.zeroLike(), m.zeroLike()
	step := 0
	for epoch := 0; epoch < m.Config.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("mlp: %w", err)
		}
		order := rng.Perm(len(X))
		for start := 0; start < len(order); start += m.Config.BatchSize {
			end := min(start+m.Config.BatchSize, len(order))
			batch := order[start:end]

			grads.zero()
			for _, i := range batch {
				m.backprop(X[i], y[i], float64(len(batch)), grads)
			}
			step++
			m.adam(grads, first, second, step)
		}
	}
	return nil
}

// forward returns the activations of every layer, input first.
func (m *MLP) forward(x []float64) [][]float64 {
	acts := make([][]float64, len(m.Layers)+1)
	acts[0] = x
	for l, layer := range m.Layers {
		out := make([]float64, len(layer.B))
		for o, w := range layer.W {
			z := layer.B[o]
			for i, v := range acts[l] {
				z += w[i] * v
			}
			if l < len(m.Layers)-1 && z < 0 {
				z = 0
			}
			out[o] = z
		}
		acts[l+1] = out
	}
	return acts
}

func (m *MLP) backprop(x []float64, target, batchSize float64, grads gradients) {
	acts := m.forward(x)
	pred := acts[len(acts)-1][0]
	delta := []float64{2 * (pred - target) / batchSize}

	for l := len(m.Layers) - 1; l >= 0; l-- {
		layer := m.Layers[l]
		in := acts[l]
		for o, d := range delta {
			grads[l].B[o] += d
			for i, v := range in {
				grads[l].W[o][i] += d * v
			}
		}
		if l == 0 {
			break
		}
		prev := make([]float64, len(in))
		for i := range prev {
			// ReLU derivative: the activation was clipped at zero.
			if in[i] <= 0 {
				continue
			}
			for o, d := range delta {
				prev[i] += layer.W[o][i] * d
			}
		}
		delta = prev
	}
}

func (m *MLP) adam(grads, first, second gradients, step int) {
	lr := m.Config.LearningRate
	c1 := 1 - math.Pow(adamBeta1, float64(step))
	c2 := 1 - math.Pow(adamBeta2, float64(step))
	update := func(p, g, mean, variance *float64) {
		grad := *g
		*mean = adamBeta1*(*mean) + (1-adamBeta1)*grad
		*variance = adamBeta2*(*variance) + (1-adamBeta2)*grad*grad
		*p -= lr * (*mean / c1) / (math.Sqrt(*variance/c2) + adamEpsilon)
	}
	for l := range m.Layers {
		for o := range m.Layers[l].W {
			for i := range m.Layers[l].W[o] {
				update(&m.Layers[l].W[o][i], &grads[l].W[o][i], &first[l].W[o][i], &second[l].W[o][i])
			}
			update(&m.Layers[l].B[o], &grads[l].B[o], &first[l].B[o], &second[l].B[o])
		}
	}
}

func (m *MLP) Predict(x []float64) float64 {
	if len(m.Layers) == 0 {
		return 0
	}
	acts := m.forward(x)
	return acts[len(acts)-1][0]
}

func (m *MLP) validate() error {
	if len(m.Layers) == 0 {
		return errors.New("mlp has no layers")
	}
	for l, layer := range m.Layers {
		if len(layer.W) == 0 || len(layer.W) != len(layer.B) {
			return fmt.Errorf("mlp layer %d is malformed", l)
		}
		in := featureCount
		if l > 0 {
			in = len(m.Layers[l-1].B)
		}
		for o, row := range layer.W {
			if len(row) != in {
				return fmt.Errorf("mlp layer %d unit %d takes %d inputs, want %d", l, o, len(row), in)
			}
		}
	}
	if len(m.Layers[len(m.Layers)-1].B) != 1 {
		return errors.New("mlp output layer must have one unit")
	}
	return nil
}

// gradients mirrors the parameter shapes of an MLP.
type gradients []denseLayer

func (m *MLP) zeroLike() gradients {
	g := make(gradients, len(m.Layers))
	for l, layer := range m.Layers {
		g[l] = denseLayer{W: make([][]float64, len(layer.W)), B: make([]float64, len(layer.B))}
		for o := range layer.W {
			g[l].W[o] = make([]float64, len(layer.W[o]))
		}
	}
	return g
}

func (g gradients) zero() {
	for l := range g {
		clear(g[l].B)
		for o := range g[l].W {
			clear(g[l].W[o])
		}
	}
}
