// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/chainnet/internal/layer"
	"github.com/born-ml/chainnet/internal/nn"
	"github.com/born-ml/chainnet/tensor"
)

// Module is anything with a forward pass.
type Module = nn.Module

// WeightLoader accepts weights streamed in stream order.
type WeightLoader = nn.WeightLoader

// Stateful is implemented by modules that carry state across Forward calls.
type Stateful = nn.Stateful

// Parameter is a named weight tensor.
type Parameter = nn.Parameter

// Sequential applies modules in order.
type Sequential = nn.Sequential

// NewSequential creates a Sequential from modules.
func NewSequential(modules ...Module) *Sequential {
	return nn.NewSequential(modules...)
}

// Fill streams weights into loaders in order. Leftover or missing weights
// yield a *stream.CountMismatchError.
func Fill(loaders []WeightLoader, weights []float64) error {
	return nn.Fill(loaders, weights)
}

// Layers

// Input reshapes flat data to the declared input shape.
type Input = nn.Input

// NewInput creates an input layer. Dimensions of 0 mark unknown sizes.
func NewInput(dims []int) *Input {
	return nn.NewInput(dims)
}

// NewTokenInput creates an input layer that passes token ids through.
func NewTokenInput(dims []int) *Input {
	return nn.NewTokenInput(dims)
}

// Dense is a fully connected layer.
type Dense = nn.Dense

// NewDense creates a Dense layer with zero weights.
func NewDense(in, out int, act tensor.Activation, backend tensor.Backend) *Dense {
	return nn.NewDense(in, out, act, backend)
}

// Conv2D is a channels-last 2D convolution.
type Conv2D = nn.Conv2D

// Padding selects "valid" or "same" spatial padding.
type Padding = layer.Padding

// Padding modes.
const (
	PaddingValid = layer.PaddingValid
	PaddingSame  = layer.PaddingSame
)

// NewConv2D creates a Conv2D layer with zero weights.
func NewConv2D(inChannels, filters int, size, stride [2]int, padding Padding, act tensor.Activation, backend tensor.Backend) *Conv2D {
	return nn.NewConv2D(inChannels, filters, size, stride, padding, act, backend)
}

// MaxPooling2D is a channels-last 2D max pool.
type MaxPooling2D = nn.MaxPooling2D

// NewMaxPooling2D creates a MaxPooling2D layer.
func NewMaxPooling2D(size, stride [2]int, padding Padding) *MaxPooling2D {
	return nn.NewMaxPooling2D(size, stride, padding)
}

// Flatten collapses its input to rank 1.
type Flatten = nn.Flatten

// NewFlatten creates a Flatten layer.
func NewFlatten() *Flatten {
	return nn.NewFlatten()
}

// Rescaling computes x*scale + offset.
type Rescaling = nn.Rescaling

// NewRescaling creates a Rescaling layer.
func NewRescaling(scale, offset float64) *Rescaling {
	return nn.NewRescaling(scale, offset)
}

// Embedding maps token ids to vectors.
type Embedding = nn.Embedding

// NewEmbedding creates an Embedding layer with a zero table.
func NewEmbedding(numEmbed, embedDim int, backend tensor.Backend) *Embedding {
	return nn.NewEmbedding(numEmbed, embedDim, backend)
}

// SimpleRNN is a fully connected recurrent layer.
type SimpleRNN = nn.SimpleRNN

// NewSimpleRNN creates a SimpleRNN layer with zero weights and state.
func NewSimpleRNN(in, units int, act tensor.Activation, backend tensor.Backend) *SimpleRNN {
	return nn.NewSimpleRNN(in, units, act, backend)
}

// LSTM holds the weights of a four-gate LSTM layer.
type LSTM = nn.LSTM

// NewLSTM creates an LSTM weight holder with zero weights.
func NewLSTM(in, units int, act, recAct tensor.Activation, backend tensor.Backend) *LSTM {
	return nn.NewLSTM(in, units, act, recAct, backend)
}

// Activation applies an activation function as a layer.
type Activation = nn.Activation

// NewActivation creates an activation layer.
func NewActivation(act tensor.Activation) *Activation {
	return nn.NewActivation(act)
}

// NewGELU returns the GELU activation layer.
func NewGELU() *Activation {
	return nn.NewGELU()
}

// MLP is the Dense -> GELU -> Dense feed-forward block.
type MLP = nn.MLP

// NewMLP creates an MLP with zero weights.
func NewMLP(in, hidden, out int, backend tensor.Backend) *MLP {
	return nn.NewMLP(in, hidden, out, backend)
}

// LayerNorm normalizes over the last axis.
type LayerNorm = nn.LayerNorm

// NewLayerNorm creates a LayerNorm with unit scale.
func NewLayerNorm(features int, epsilon float64, backend tensor.Backend) *LayerNorm {
	return nn.NewLayerNorm(features, epsilon, backend)
}
