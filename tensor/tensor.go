// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/chainnet/internal/tensor"
)

// Shape represents the dimensions of a tensor.
// Example: Shape{28, 28, 1} is a single-channel 28×28 image.
type Shape = tensor.Shape

// RawTensor is the backend-level storage: a float64 buffer and its shape.
type RawTensor = tensor.RawTensor

// Tensor is a RawTensor bound to the Backend that computes on it.
type Tensor = tensor.Tensor

// Backend is the interface compute backends implement.
type Backend = tensor.Backend

// Activation identifies an element-wise activation function.
type Activation = tensor.Activation

// Supported activations.
const (
	ActivationUnknown = tensor.ActivationUnknown
	Linear            = tensor.Linear
	ReLU              = tensor.ReLU
	LeakyReLU         = tensor.LeakyReLU
	Sigmoid           = tensor.Sigmoid
	Tanh              = tensor.Tanh
	GELU              = tensor.GELU
	Softmax           = tensor.Softmax
)

// LeakySlope is the negative-side slope of LeakyReLU.
const LeakySlope = tensor.LeakySlope

// FromSlice creates a tensor over a copy of data.
func FromSlice(data []float64, shape Shape, b Backend) (*Tensor, error) {
	return tensor.FromSlice(data, shape, b)
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape, b Backend) *Tensor {
	return tensor.Zeros(shape, b)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, b Backend) *Tensor {
	return tensor.Ones(shape, b)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float64, b Backend) *Tensor {
	return tensor.Full(shape, value, b)
}

// Arange creates the 1D tensor [0, 1, ..., n-1].
func Arange(n int, b Backend) *Tensor {
	return tensor.Arange(n, b)
}
