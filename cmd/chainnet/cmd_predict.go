package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/born-ml/chainnet/internal/backend/cpu"
	"github.com/born-ml/chainnet/internal/envconfig"
	"github.com/born-ml/chainnet/internal/model"
)

func newPredictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict MODEL INPUT",
		Short: "Classify inputs with the engine",
		Long: `Classify inputs with the engine.

INPUT is a JSON file holding one flat input array or a list of them.
Each row of the output is the most likely class of one input.`,
		Args: cobra.ExactArgs(2),
		RunE: PredictHandler,
	}
	cmd.Flags().Int("workers", 0, "Concurrent models (default $CHAINNET_WORKERS or GOMAXPROCS)")
	return cmd
}

// PredictHandler runs every input through the model and prints its class.
func PredictHandler(cmd *cobra.Command, args []string) error {
	d, err := loadDescription(args[0])
	if err != nil {
		return err
	}
	inputs, err := readInputs(args[1])
	if err != nil {
		return err
	}

	workers := int(envconfig.Workers()) //nolint:gosec // bounded by configuration
	if n, _ := cmd.Flags().GetInt("workers"); n > 0 {
		workers = n
	}

	backend := cpu.New()
	outputs, err := model.PredictBatch(cmd.Context(), d, backend, inputs, workers)
	if err != nil {
		return err
	}

	// Classify only reads the description, so one model serves every row.
	m := &model.Model{Description: d}
	data := make([][]string, 0, len(outputs))
	for i, out := range outputs {
		p := m.Classify(out)
		data = append(data, []string{
			strconv.Itoa(i),
			strconv.Itoa(p.Index),
			p.Label,
			fmt.Sprintf("%.4f", p.Probability),
		})
	}
	table := newTable(cmd.OutOrStdout(), []string{"#", "CLASS", "LABEL", "PROBABILITY"})
	table.AppendBulk(data)
	table.Render()
	return nil
}
