// Package generate runs recurrent text generation over a built model.
//
// A Generator feeds token ids through the model one at a time and draws
// the next id from the final output with a Sampler.
package generate

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// SamplingConfig configures the sampling strategy for text generation.
type SamplingConfig struct {
	// Temperature controls randomness. 0 = greedy, 1 = normal, >1 = more random.
	Temperature float64

	// TopK limits sampling to top K tokens. 0 = disabled.
	TopK int

	// TopP (nucleus sampling) limits to tokens with cumulative prob < P. 1.0 = disabled.
	TopP float64

	// RepeatPenalty divides positive logits (multiplies negative ones) of
	// tokens seen in the last RepeatWindow ids. 1.0 = no penalty.
	RepeatPenalty float64
	RepeatWindow  int

	// Seed for reproducibility. -1 = random.
	Seed int64
}

// DefaultSamplingConfig returns sensible defaults for generation.
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Temperature:   1.0,
		TopK:          0,
		TopP:          1.0,
		RepeatPenalty: 1.0,
		RepeatWindow:  64,
		Seed:          -1,
	}
}

// Sampler samples token ids from logits.
type Sampler struct {
	config SamplingConfig
	rng    *rand.Rand
}

// NewSampler creates a new sampler with the given configuration.
func NewSampler(config SamplingConfig) *Sampler {
	seed := config.Seed
	if seed < 0 {
		seed = rand.Int63() //nolint:gosec // sampling, not cryptography
	}
	return &Sampler{
		config: config,
		rng:    rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic seed for reproducibility
	}
}

// Sample returns the next token id from logits.
//
// The pipeline is: repetition penalty, temperature, top-k, top-p, then a
// draw from the softmax. Temperature 0 returns the argmax.
func (s *Sampler) Sample(logits []float64, previous []int32) int32 {
	logits = append([]float64{}, logits...)

	if s.config.RepeatPenalty != 1.0 && len(previous) > 0 {
		s.applyRepetitionPenalty(logits, previous)
	}

	if s.config.Temperature == 0 {
		return int32(floats.MaxIdx(logits)) //nolint:gosec // vocab size is bounded by the model
	}
	if s.config.Temperature != 1.0 {
		floats.Scale(1/s.config.Temperature, logits)
	}

	if s.config.TopK > 0 && s.config.TopK < len(logits) {
		s.topKFilter(logits)
	}
	if s.config.TopP > 0 && s.config.TopP < 1.0 {
		s.topPFilter(logits)
	}

	return s.multinomial(softmax(logits))
}

func (s *Sampler) applyRepetitionPenalty(logits []float64, prev []int32) {
	recent := prev
	if w := s.config.RepeatWindow; w > 0 && len(prev) > w {
		recent = prev[len(prev)-w:]
	}

	seen := make(map[int32]bool, len(recent))
	for _, tok := range recent {
		if seen[tok] || int(tok) >= len(logits) || tok < 0 {
			continue
		}
		seen[tok] = true
		if logits[tok] > 0 {
			logits[tok] /= s.config.RepeatPenalty
		} else {
			logits[tok] *= s.config.RepeatPenalty
		}
	}
}

// topKFilter sets every logit below the k-th largest to -Inf.
func (s *Sampler) topKFilter(logits []float64) {
	sorted := append([]float64{}, logits...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	threshold := sorted[s.config.TopK-1]

	for i := range logits {
		if logits[i] < threshold {
			logits[i] = math.Inf(-1)
		}
	}
}

// topPFilter keeps the smallest prefix of tokens, by descending
// probability, whose mass exceeds TopP.
func (s *Sampler) topPFilter(logits []float64) {
	probs := softmax(logits)
	order := make([]int, len(probs))
	floats.Argsort(append([]float64{}, probs...), order)

	keep := make([]bool, len(logits))
	cum := 0.0
	for i := len(order) - 1; i >= 0; i-- {
		keep[order[i]] = true
		cum += probs[order[i]]
		if cum > s.config.TopP {
			break
		}
	}

	for i := range logits {
		if !keep[i] {
			logits[i] = math.Inf(-1)
		}
	}
}

func (s *Sampler) multinomial(probs []float64) int32 {
	r := s.rng.Float64()

	cum := 0.0
	for i, p := range probs {
		cum += p
		if r < cum {
			return int32(i) //nolint:gosec // vocab size is bounded by the model
		}
	}
	return int32(len(probs) - 1) //nolint:gosec // vocab size is bounded by the model
}

// softmax converts logits to probabilities. -Inf logits get probability 0.
func softmax(logits []float64) []float64 {
	maxVal := floats.Max(logits)
	probs := make([]float64, len(logits))
	for i, v := range logits {
		if !math.IsInf(v, -1) {
			probs[i] = math.Exp(v - maxVal)
		}
	}
	if sum := floats.Sum(probs); sum > 0 {
		floats.Scale(1/sum, probs)
	}
	return probs
}
