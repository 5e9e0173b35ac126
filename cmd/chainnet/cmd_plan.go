package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan MODEL",
		Short: "Show the weight upload schedule of a model description",
		Args:  cobra.ExactArgs(1),
		RunE:  PlanHandler,
	}
	addPlanFlags(cmd)
	return cmd
}

// PlanHandler prints every chunk a deployment would upload, in order.
func PlanHandler(cmd *cobra.Command, args []string) error {
	scale, maxChunk, err := planOptions(cmd)
	if err != nil {
		return err
	}

	d, err := loadDescription(args[0])
	if err != nil {
		return err
	}
	plan, err := d.Plan(scale, maxChunk)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	data := make([][]string, 0, len(plan.Chunks))
	for i, c := range plan.Chunks {
		data = append(data, []string{
			strconv.Itoa(i),
			c.Kind.String(),
			strconv.Itoa(c.Instance),
			strconv.Itoa(c.Offset),
			strconv.Itoa(len(c.Scalars)),
		})
	}
	table := newTable(w, []string{"#", "KIND", "INSTANCE", "OFFSET", "SCALARS"})
	table.AppendBulk(data)
	table.Render()

	fmt.Fprintf(w, "\n%d layers, %d chunks, scale %s\n", len(plan.Layers), len(plan.Chunks), plan.Scale)
	return nil
}
