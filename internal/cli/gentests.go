package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/carbonwasm/carbon/internal/harness"
	"github.com/carbonwasm/carbon/internal/logger"
)

func newGentestsCommand() *cobra.Command {
	cfg := harness.DefaultConfig

	cmd := &cobra.Command{
		Use:   "gentests [fixture]",
		Short: "Synthesize conformance tests from binary fixtures",
		Long: `With no argument, gentests provisions the fixture directory (runs the
extraction step and sweeps non-binary artifacts), then regenerates the
whole output document. With a fixture filename as argument it appends a
single test case to the existing document and skips provisioning.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.FixtureDir = viper.GetString("fixtures")
			cfg.SourceDir = viper.GetString("source")
			cfg.ExtractCmd = viper.GetString("extract-cmd")
			cfg.Output = viper.GetString("output")
			cfg.Package = viper.GetString("package")
			cfg.RuntimeImport = viper.GetString("runtime-import")
			cfg.Ascend = viper.GetInt("ascend")
			cfg.SkipProvision = viper.GetBool("skip-provision")
			cfg.TemplateFile = viper.GetString("templates")

			s, err := harness.NewSynthesizer(cfg, logger.Logger)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				return s.SingleRun(args[0])
			}
			count, err := s.FullRun(cmd.Context())
			if err != nil {
				return err
			}
			logger.Logger.Info("generation complete", "cases", count, "output", cfg.Output)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("fixtures", cfg.FixtureDir, "directory of binary fixtures")
	flags.String("source", cfg.SourceDir, "directory the extraction step runs in")
	flags.String("extract-cmd", cfg.ExtractCmd, "extraction executable, invoked with no arguments")
	flags.String("output", cfg.Output, "generated test file")
	flags.String("package", cfg.Package, "package clause of the generated file")
	flags.String("runtime-import", cfg.RuntimeImport, "import path of the runtime package under test")
	flags.String("templates", "", "txtar archive overriding the embedded templates")
	flags.Int("ascend", cfg.Ascend, "../ segments prepended to the fixture root in generated tests")
	flags.Bool("skip-provision", false, "reuse the fixture directory as-is in full mode")

	for _, name := range []string{"fixtures", "source", "extract-cmd", "output", "package", "runtime-import", "templates", "ascend", "skip-provision"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}

	return cmd
}
