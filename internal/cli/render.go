package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	qext "github.com/willemverspyck/query-extension"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*Options
	Positional bool
	Check      bool
}

// RenderResult is the output of the render command.
type RenderResult struct {
	SQL        string      `json:"sql" yaml:"sql"`
	Parameters []ParamView `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Args       []any       `json:"args,omitempty" yaml:"args,omitempty"`
}

// ParamView is the serializable form of a parameter.
type ParamView struct {
	Name  string `json:"name" yaml:"name"`
	Type  string `json:"type" yaml:"type"`
	Value any    `json:"value" yaml:"value"`
}

// String renders the result for text output: the SQL, then one line per
// parameter or positional argument.
func (r RenderResult) String() string {
	var buf strings.Builder
	buf.WriteString(r.SQL)
	for _, p := range r.Parameters {
		fmt.Fprintf(&buf, "\n:%s (%s) = %v", p.Name, p.Type, p.Value)
	}
	for i, a := range r.Args {
		fmt.Fprintf(&buf, "\n$%d = %v", i+1, a)
	}
	return buf.String()
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *Options) *cobra.Command {
	opts := &RenderOptions{Options: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <definition.yaml>",
		Short: "Render a YAML query definition",
		Long: `Render a YAML query definition to SQL and its named parameters.

Use "-" to read the definition from stdin. With --positional, named
placeholders are rewritten to $N ordinals and arguments are printed in order.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Positional, "positional", "p", false, "rewrite named placeholders to $N ordinals")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "fail on missing or unused parameters")

	return cmd
}

func runRender(opts *RenderOptions, path string, cmd *cobra.Command) error {
	printer := &Printer{
		Format:  opts.Format,
		Out:     cmd.OutOrStdout(),
		Log:     cmd.ErrOrStderr(),
		Verbose: opts.Verbose,
	}

	src, err := openDefinition(path, cmd.InOrStdin())
	if err != nil {
		return fail(StatusUsage, "cannot read definition", err)
	}
	defer src.Close()

	def, err := qext.LoadDefinition(src)
	if err != nil {
		return fail(StatusFailed, "invalid definition", err)
	}

	query, err := def.Build()
	if err != nil {
		return fail(StatusFailed, "cannot build query", err)
	}
	printer.Logf("Built query from %s", path)

	if opts.Check {
		if err := qext.Check(query); err != nil {
			return fail(StatusFailed, "parameter check failed", err)
		}
		printer.Logf("Parameter check passed")
	}

	var result RenderResult
	if opts.Positional {
		text, args, err := qext.Positional(query)
		if err != nil {
			return fail(StatusFailed, "cannot render query", err)
		}
		result = RenderResult{SQL: text, Args: args}
	} else {
		text, params, err := query.Reify()
		if err != nil {
			return fail(StatusFailed, "cannot render query", err)
		}
		result = RenderResult{SQL: text, Parameters: paramViews(params)}
	}

	return printer.Print(result)
}

func openDefinition(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(stdin), nil
	}
	return os.Open(path)
}

func paramViews(params qext.Parameters) []ParamView {
	out := make([]ParamView, 0, len(params))
	for _, name := range params.Names() {
		p := params[name]
		out = append(out, ParamView{
			Name:  name,
			Type:  p.Type().String(),
			Value: p.Value().Native(),
		})
	}
	return out
}
