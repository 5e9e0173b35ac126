package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/born-ml/chainnet/internal/backend/cpu"
	"github.com/born-ml/chainnet/internal/generate"
	"github.com/born-ml/chainnet/internal/tokenizer"
)

// ErrNoVocabulary is returned when generating from a model without a
// vocabulary.
var ErrNoVocabulary = errors.New("model description has no vocabulary")

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate MODEL PROMPT",
		Short: "Generate text with a recurrent model",
		Args:  cobra.ExactArgs(2),
		RunE:  GenerateHandler,
	}

	defaults := generate.DefaultSamplingConfig()
	cmd.Flags().IntP("tokens", "n", 32, "Number of tokens to generate")
	cmd.Flags().Float64("temperature", defaults.Temperature, "Sampling temperature, 0 for greedy")
	cmd.Flags().Int("top-k", defaults.TopK, "Sample from the K most likely tokens, 0 to disable")
	cmd.Flags().Float64("top-p", defaults.TopP, "Nucleus sampling mass, 1 to disable")
	cmd.Flags().Float64("repeat-penalty", defaults.RepeatPenalty, "Penalty for recently seen tokens, 1 to disable")
	cmd.Flags().Int64("seed", defaults.Seed, "Random seed, -1 for a random one")
	return cmd
}

// GenerateHandler streams generated text to stdout.
func GenerateHandler(cmd *cobra.Command, args []string) error {
	d, err := loadDescription(args[0])
	if err != nil {
		return err
	}
	if len(d.Vocabulary) == 0 {
		return fmt.Errorf("%s: %w", args[0], ErrNoVocabulary)
	}
	vocab, err := tokenizer.NewVocabulary(d.Vocabulary)
	if err != nil {
		return err
	}

	backend := cpu.New()
	m, err := d.Build(backend)
	if err != nil {
		return err
	}

	cfg := generate.DefaultSamplingConfig()
	flags := cmd.Flags()
	cfg.Temperature, _ = flags.GetFloat64("temperature")
	cfg.TopK, _ = flags.GetInt("top-k")
	cfg.TopP, _ = flags.GetFloat64("top-p")
	cfg.RepeatPenalty, _ = flags.GetFloat64("repeat-penalty")
	cfg.Seed, _ = flags.GetInt64("seed")
	n, _ := flags.GetInt("tokens")

	g := &generate.Generator{
		Model:   m,
		Vocab:   vocab,
		Sampler: generate.NewSampler(cfg),
		Backend: backend,
	}

	w := cmd.OutOrStdout()
	fmt.Fprint(w, args[1])
	err = g.Stream(cmd.Context(), args[1], n, func(r generate.Result) error {
		_, err := fmt.Fprint(w, r.Token)
		return err
	})
	fmt.Fprintln(w)
	return err
}
