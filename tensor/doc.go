// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for tensor operations in chainnet.
//
// Tensors are dense row-major float64 buffers bound to a Backend. Every
// operation returns a new tensor; inputs are never modified.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Ones(tensor.Shape{2, 3}, backend)
//	w := tensor.Full(tensor.Shape{3, 4}, 0.5, backend)
//	y := x.MatMul(w).Activate(tensor.ReLU) // [2, 4]
package tensor
