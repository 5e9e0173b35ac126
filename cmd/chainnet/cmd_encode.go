package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/born-ml/chainnet/internal/bundle"
)

func newEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode MODEL",
		Short: "Encode a model description into a deployable bundle",
		Args:  cobra.ExactArgs(1),
		RunE:  EncodeHandler,
	}
	cmd.Flags().StringP("output", "o", "", "Bundle path (default MODEL with a .cnet extension)")
	addPlanFlags(cmd)
	return cmd
}

// EncodeHandler plans a description and writes the plan as a bundle.
func EncodeHandler(cmd *cobra.Command, args []string) error {
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

	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".cnet"
	}
	if err := bundle.WriteFile(out, plan); err != nil {
		return err
	}

	slog.Info("wrote bundle", "path", out, "layers", len(plan.Layers), "chunks", len(plan.Chunks))
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
