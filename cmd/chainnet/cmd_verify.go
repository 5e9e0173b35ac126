package main

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/spf13/cobra"

	"github.com/born-ml/chainnet/internal/backend/cpu"
	"github.com/born-ml/chainnet/internal/bundle"
	"github.com/born-ml/chainnet/internal/target"
	"github.com/born-ml/chainnet/internal/tensor"
)

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify MODEL [BUNDLE]",
		Short: "Deploy a model to a simulated target and compare it with the engine",
		Long: `Deploy a model to a simulated target and compare it with the engine.

The model description is planned (or BUNDLE is read), every layer is
declared and every chunk uploaded to an in-memory target. The target's
stored model and the engine's model then run the same input, and the
largest absolute difference between their outputs is checked against
--tolerance.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: VerifyHandler,
	}
	cmd.Flags().String("input", "", "JSON file with input values (default: a ramp of the input size)")
	cmd.Flags().Float64("tolerance", 1e-6, "Largest allowed absolute output difference")
	addPlanFlags(cmd)
	return cmd
}

// VerifyHandler checks that a deployment reproduces the engine's output.
func VerifyHandler(cmd *cobra.Command, args []string) error {
	d, err := loadDescription(args[0])
	if err != nil {
		return err
	}

	var b *bundle.Bundle
	if len(args) == 2 {
		if b, err = bundle.ReadFile(args[1]); err != nil {
			return err
		}
	} else {
		scale, maxChunk, err := planOptions(cmd)
		if err != nil {
			return err
		}
		plan, err := d.Plan(scale, maxChunk)
		if err != nil {
			return err
		}
		b = &bundle.Bundle{Header: bundle.NewHeader(plan), Scale: plan.Scale, Layers: plan.Blobs(), Chunks: plan.Chunks}
	}

	t := target.New(b.Scale)
	if err := t.Deploy(b.Layers, b.Chunks); err != nil {
		return fmt.Errorf("deploy: %w", err)
	}

	backend := cpu.New()
	deployed, err := t.Model(backend)
	if err != nil {
		return err
	}
	reference, err := d.Build(backend)
	if err != nil {
		return err
	}

	var inputs [][]float64
	if path, _ := cmd.Flags().GetString("input"); path != "" {
		if inputs, err = readInputs(path); err != nil {
			return err
		}
	} else {
		specs, err := d.Specs()
		if err != nil {
			return err
		}
		probe, err := probeInput(specs)
		if err != nil {
			return err
		}
		inputs = [][]float64{probe}
	}

	tolerance, _ := cmd.Flags().GetFloat64("tolerance")
	worst := 0.0
	for i, in := range inputs {
		want, err := reference.Predict(in)
		if err != nil {
			return fmt.Errorf("input %d: %w", i, err)
		}
		x, err := tensor.FromSlice(in, tensor.Shape{len(in)}, backend)
		if err != nil {
			return err
		}
		worst = math.Max(worst, maxAbsDiff(want.Data(), deployed.Forward(x).Data()))
		reference.ResetState()
		deployed.ResetState()
	}

	slog.Debug("verified deployment", "model", d.Name, "inputs", len(inputs), "max_diff", worst)
	if worst > tolerance {
		return fmt.Errorf("deployed model differs from the engine by %g (tolerance %g)", worst, tolerance)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "ok: %d layers, %d chunks, max difference %g\n", len(b.Layers), len(b.Chunks), worst)
	return nil
}

// maxAbsDiff returns the largest element-wise difference, or +Inf when
// the lengths differ.
func maxAbsDiff(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	worst := 0.0
	for i := range a {
		worst = math.Max(worst, math.Abs(a[i]-b[i]))
	}
	return worst
}
