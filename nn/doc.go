// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the forward engine's layers.
//
// Layers are created with zero weights and filled through WeightLoader,
// which accepts weights streamed in Keras order in chunks of any size.
//
// Example:
//
//	backend := cpu.New()
//	model := nn.NewSequential(
//	    nn.NewFlatten(),
//	    nn.NewDense(784, 10, tensor.Softmax, backend),
//	)
//	if err := nn.Fill(model.Loaders(), weights); err != nil {
//	    log.Fatal(err)
//	}
//	out := model.Forward(image)
package nn
