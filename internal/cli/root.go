// Package cli wires up the carbon command tree.
package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/carbonwasm/carbon/internal/logger"
)

var logLevel string

// NewRootCommand builds the carbon root command with its subcommands.
// Flags can also be set through CARBON_-prefixed environment variables.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "carbon",
		Short: "wasm module runtime and conformance test generator",
		Long: `carbon loads modules in the WebAssembly binary format and keeps a
conformance corpus exercised: gentests synthesizes one Go test per binary
fixture, and inspect dumps a decoded module.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Configure(viper.GetString("log-level"), term.IsTerminal(int(os.Stderr.Fd())))
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	viper.SetEnvPrefix("CARBON")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(newGentestsCommand())
	rootCmd.AddCommand(newInspectCommand())

	return rootCmd
}

// Execute runs the root command and returns its exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		logger.Logger.Error(err)
		return 1
	}
	return 0
}
