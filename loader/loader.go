// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package loader loads Keras model descriptions and prepares them for the
// execution target.
//
// Example usage:
//
//	import (
//	    "github.com/born-ml/chainnet/backend/cpu"
//	    "github.com/born-ml/chainnet/loader"
//	)
//
//	desc, err := loader.Load("mnist.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Run locally.
//	model, err := desc.Build(cpu.New())
//	out, err := model.Predict(pixels)
//	fmt.Println(model.Classify(out).Label)
//
//	// Or plan the deployment and write it as a bundle.
//	plan, err := desc.Plan(loader.Q32, 512)
//	err = loader.WriteBundle("mnist.cnet", plan)
package loader

import (
	"io"

	"github.com/born-ml/chainnet/internal/bundle"
	"github.com/born-ml/chainnet/internal/fixed"
	"github.com/born-ml/chainnet/internal/model"
	"github.com/born-ml/chainnet/internal/target"
)

// Description is a parsed model description.
type Description = model.Description

// Model is a built forward model with its description.
type Model = model.Model

// Prediction is a classified model output.
type Prediction = model.Prediction

// Plan holds the encoded layers and weight chunks of a deployment.
type Plan = model.Plan

// Scale selects the fixed-point scale used on the target.
type Scale = fixed.Scale

// Supported scales.
const (
	Q32 = fixed.Q32
	E18 = fixed.E18
)

// Load reads a model description from a JSON file.
func Load(path string) (*Description, error) {
	return model.Load(path)
}

// Parse decodes a model description from r.
func Parse(r io.Reader) (*Description, error) {
	return model.Parse(r)
}

// Bundle is a decoded .cnet file.
type Bundle = bundle.Bundle

// WriteBundle writes a plan to path as a .cnet bundle.
func WriteBundle(path string, plan *Plan) error {
	return bundle.WriteFile(path, plan)
}

// ReadBundle reads and validates a .cnet bundle.
func ReadBundle(path string) (*Bundle, error) {
	return bundle.ReadFile(path)
}

// Target is an in-memory execution target.
type Target = target.Target

// Deploy declares every layer of b on a fresh target and uploads every
// chunk.
func Deploy(b *Bundle) (*Target, error) {
	t := target.New(b.Scale)
	if err := t.Deploy(b.Layers, b.Chunks); err != nil {
		return nil, err
	}
	return t, nil
}
