package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/carbonwasm/carbon/wasm"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.wasm>",
		Short: "Decode a wasm binary and print a per-section summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("can't read file %s: %w", args[0], err)
			}
			rt := wasm.Default()
			if err := rt.Load(buf); err != nil {
				return err
			}
			for _, m := range rt.Modules {
				fmt.Fprintln(cmd.OutOrStdout(), args[0])
				fmt.Fprint(cmd.OutOrStdout(), m.Summary())
			}
			return nil
		},
	}
}
