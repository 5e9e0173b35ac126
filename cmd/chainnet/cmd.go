package main

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/born-ml/chainnet/internal/bundle"
	"github.com/born-ml/chainnet/internal/envconfig"
)

// appendEnvDocs adds the environment variables a command honors to its
// usage text.
func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// NewCLI builds the root command with every subcommand attached.
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "chainnet",
		Short:         "Encode, deploy and run Keras models on a bounded execution target",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			if version, _ := cmd.Flags().GetBool("version"); version {
				versionHandler(cmd, args)
				return
			}
			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	inspectCmd := newInspectCmd()
	encodeCmd := newEncodeCmd()
	planCmd := newPlanCmd()
	verifyCmd := newVerifyCmd()
	predictCmd := newPredictCmd()
	generateCmd := newGenerateCmd()
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run:   versionHandler,
	}

	envVars := envconfig.AsMap()
	envs := []envconfig.EnvVar{envVars["CHAINNET_DEBUG"]}

	for _, cmd := range []*cobra.Command{encodeCmd, planCmd, verifyCmd} {
		appendEnvDocs(cmd, append(slices.Clone(envs), envVars["CHAINNET_MAX_CHUNK"], envVars["CHAINNET_SCALE"]))
	}
	appendEnvDocs(predictCmd, append(slices.Clone(envs), envVars["CHAINNET_WORKERS"]))
	appendEnvDocs(generateCmd, envs)

	rootCmd.AddCommand(
		inspectCmd,
		encodeCmd,
		planCmd,
		verifyCmd,
		predictCmd,
		generateCmd,
		versionCmd,
	)

	return rootCmd
}

func setupLogging() {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: envconfig.LogLevel()})
	slog.SetDefault(slog.New(handler))
}

func versionHandler(cmd *cobra.Command, _ []string) {
	fmt.Fprintf(cmd.OutOrStdout(), "chainnet version %s (bundle format %d)\n", bundle.ChainnetVersion, bundle.FormatVersion)
}
