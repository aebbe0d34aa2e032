package cli

import (
	"github.com/spf13/cobra"
)

// Options are the persistent flags shared by every subcommand.
type Options struct {
	Verbose bool
	Format  Format
}

// NewRootCommand builds the qext command tree.
func NewRootCommand() *cobra.Command {
	opts := &Options{Format: FormatText}

	cmd := &cobra.Command{
		Use:           "qext",
		Short:         "qext - parameterized SELECT builder",
		Long:          "Render YAML query definitions into SQL with named parameters.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "log build steps to stderr")
	flags.Var(&opts.Format, "format", "output format: text, json or yaml")

	// Applies to subcommands too; cobra looks the handler up through parents.
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fail(StatusUsage, "invalid flags", err)
	})

	cmd.AddCommand(NewRenderCommand(opts))
	return cmd
}
