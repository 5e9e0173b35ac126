package generate

import (
	"context"
	"errors"
	"fmt"

	"github.com/born-ml/chainnet/internal/tensor"
	"github.com/born-ml/chainnet/internal/tokenizer"
)

// ErrEmptyPrompt is returned when the prompt encodes to no tokens.
var ErrEmptyPrompt = errors.New("prompt encodes to no tokens")

// Model is a recurrent model that maps one token id to next-token logits.
//
// Text models start with an Embedding (optionally behind an Input of
// unknown length), so a rank-1 tensor holding a single id is a valid
// input.
type Model interface {
	Forward(input *tensor.Tensor) *tensor.Tensor
	ResetState()
}

// Result is one generated token.
type Result struct {
	Token   string // Decoded token text
	TokenID int32  // Token ID
}

// Generator produces text from a recurrent model.
type Generator struct {
	Model   Model
	Vocab   tokenizer.Tokenizer
	Sampler *Sampler
	Backend tensor.Backend
}

// Generate resets the model state, feeds prompt one token at a time and
// samples n further tokens. It returns the generated text without the
// prompt.
func (g *Generator) Generate(prompt string, n int) (string, error) {
	var ids []int32
	err := g.Stream(context.Background(), prompt, n, func(r Result) error {
		ids = append(ids, r.TokenID)
		return nil
	})
	if err != nil {
		return "", err
	}
	return g.Vocab.Decode(ids)
}

// Stream is Generate with a callback per sampled token. A callback error
// stops generation and is returned.
func (g *Generator) Stream(ctx context.Context, prompt string, n int, fn func(Result) error) error {
	ids, err := g.Vocab.Encode(prompt)
	if err != nil {
		return fmt.Errorf("encode prompt: %w", err)
	}
	if len(ids) == 0 {
		return ErrEmptyPrompt
	}

	g.Model.ResetState()
	var logits *tensor.Tensor
	for _, id := range ids {
		logits = g.step(id)
	}

	history := append([]int32{}, ids...)
	for range n {
		if err := ctx.Err(); err != nil {
			return err
		}

		next := g.Sampler.Sample(logits.Data(), history)
		text, err := g.Vocab.Decode([]int32{next})
		if err != nil {
			return fmt.Errorf("decode sampled token: %w", err)
		}
		if err := fn(Result{Token: text, TokenID: next}); err != nil {
			return err
		}

		history = append(history, next)
		logits = g.step(next)
	}
	return nil
}

func (g *Generator) step(id int32) *tensor.Tensor {
	x := tensor.Full(tensor.Shape{1}, float64(id), g.Backend)
	return g.Model.Forward(x).Flatten()
}
