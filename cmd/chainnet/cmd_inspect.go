package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/born-ml/chainnet/internal/bundle"
	"github.com/born-ml/chainnet/internal/codec"
	"github.com/born-ml/chainnet/internal/envconfig"
	"github.com/born-ml/chainnet/internal/layer"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect MODEL",
		Short: "Show the layers of a model description or bundle",
		Long: `Show the layers of a model description (.json) or a bundle (.cnet).

For each layer the table lists its kind, the shape it receives and hands
on, its weight count and its encoded size.`,
		Args: cobra.ExactArgs(1),
		RunE: InspectHandler,
	}
}

// InspectHandler prints the layer table of a description or bundle.
func InspectHandler(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	path := args[0]

	var specs []layer.Spec
	scale := envconfig.Scale()
	if isBundle(path) {
		b, err := bundle.ReadFile(path)
		if err != nil {
			return err
		}
		printHeader(w, &b.Header)

		scale = b.Scale
		if specs, err = (codec.Decoder{Scale: scale}).DecodeModel(b.Layers); err != nil {
			return err
		}
	} else {
		d, err := loadDescription(path)
		if err != nil {
			return err
		}
		if specs, err = d.Specs(); err != nil {
			return err
		}
	}

	layers, err := codec.Encoder{Scale: scale}.EncodeModel(specs)
	if err != nil {
		return err
	}

	data := make([][]string, 0, len(layers))
	for i, l := range layers {
		data = append(data, []string{
			strconv.Itoa(i),
			l.Kind.String(),
			l.Input.String(),
			l.Output.String(),
			strconv.Itoa(l.Weights),
			strconv.Itoa(len(l.Blob)),
		})
	}
	table := newTable(w, []string{"#", "KIND", "INPUT", "OUTPUT", "WEIGHTS", "BYTES"})
	table.AppendBulk(data)
	table.Render()

	if err := codec.Check(layers); err != nil {
		fmt.Fprintf(w, "\nnot deployable:\n  %s\n", strings.ReplaceAll(err.Error(), "\n", "\n  "))
	}
	return nil
}

func printHeader(w io.Writer, h *bundle.Header) {
	kinds := make([]string, 0, len(h.Totals))
	for k := range h.Totals {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)

	totals := make([]string, 0, len(kinds))
	for _, k := range kinds {
		totals = append(totals, fmt.Sprintf("%s=%d", k, h.Totals[k]))
	}

	table := newTable(w, nil)
	table.AppendBulk([][]string{
		{"model", h.ModelName},
		{"bundle", h.BundleID},
		{"format", strconv.Itoa(h.FormatVersion)},
		{"written by", h.ChainnetVersion},
		{"scale", h.Scale},
		{"max chunk", strconv.Itoa(h.MaxChunkLen)},
		{"chunks", strconv.Itoa(h.ChunkCount)},
		{"weights", strings.Join(totals, " ")},
	})
	table.Render()
	fmt.Fprintln(w)
}
