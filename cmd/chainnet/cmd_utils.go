package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/born-ml/chainnet/internal/envconfig"
	"github.com/born-ml/chainnet/internal/fixed"
	"github.com/born-ml/chainnet/internal/layer"
	"github.com/born-ml/chainnet/internal/model"
)

// ErrNoInput is returned when a command needs input values and none were
// given.
var ErrNoInput = errors.New("no input values")

func addPlanFlags(cmd *cobra.Command) {
	cmd.Flags().String("scale", "", "Fixed-point scale, q32 or e18 (default $CHAINNET_SCALE or q32)")
	cmd.Flags().Int("max-chunk", 0, "Maximum scalars per weight chunk (default $CHAINNET_MAX_CHUNK or 512)")
}

// planOptions resolves the scale and chunk length. Flags override the
// environment.
func planOptions(cmd *cobra.Command) (fixed.Scale, int, error) {
	scale := envconfig.Scale()
	if s, _ := cmd.Flags().GetString("scale"); s != "" {
		var err error
		if scale, err = fixed.ParseScale(s); err != nil {
			return 0, 0, err
		}
	}

	maxChunk := int(envconfig.MaxChunk()) //nolint:gosec // bounded by configuration
	if n, _ := cmd.Flags().GetInt("max-chunk"); n != 0 {
		maxChunk = n
	}
	if maxChunk <= 0 {
		return 0, 0, fmt.Errorf("max chunk must be positive, got %d", maxChunk)
	}
	return scale, maxChunk, nil
}

func isBundle(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".cnet")
}

// readInputs reads a JSON file holding either one flat input or a list of
// them.
func readInputs(path string) ([][]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var batch [][]float64
	if err := json.Unmarshal(data, &batch); err == nil {
		if len(batch) == 0 {
			return nil, ErrNoInput
		}
		return batch, nil
	}

	var single []float64
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("%s: want a JSON array of numbers or of arrays: %w", path, err)
	}
	if len(single) == 0 {
		return nil, ErrNoInput
	}
	return [][]float64{single}, nil
}

// probeInput returns a deterministic ramp of the model's input size.
func probeInput(specs []layer.Spec) ([]float64, error) {
	in, ok := specs[0].(layer.Input)
	if !ok {
		return nil, fmt.Errorf("%w: model declares no input shape, pass --input", ErrNoInput)
	}
	size := layer.NewShapeContext(in.Dims...).Size()
	if size <= 0 {
		return nil, fmt.Errorf("%w: model input size is unknown, pass --input", ErrNoInput)
	}

	probe := make([]float64, size)
	for i := range probe {
		probe[i] = float64(i%17) / 17
	}
	return probe, nil
}

func loadDescription(path string) (*model.Description, error) {
	if isBundle(path) {
		return nil, fmt.Errorf("%s: expected a model description (.json), got a bundle", path)
	}
	return model.Load(path)
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	return table
}
