package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/bndr/gotabulate"
	"github.com/spf13/cobra"

	"github.com/jhump/attrdef/processor"
)

var describeCmd = &cobra.Command{
	Use:   "describe [flags] <package>...",
	Short: "Print the derived field definitions",
	Long: `Print a table of the fields derived from each selected type, instead of
generating code. This shows the attribute namespace and, for each field, its
name, type, whether it is required and its default value.

Examples:
  attrgen describe github.com/foo/bar
  attrgen describe --type Server github.com/foo/bar`,
	RunE: runDescribe,
}

func init() {
	rootCmd.AddCommand(describeCmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	opts, err := resolveOptions(cmd, args)
	if err != nil {
		return err
	}
	logger := newLogger()
	procs := []processor.Processor{describeProcessor(cmd.OutOrStdout(), opts.Types...)}
	cfg := opts.processorConfig(procs, &logger)
	return cfg.Execute()
}

// describeProcessor returns a processor that writes a table of the derived
// field definitions of each selected type to w.
func describeProcessor(w io.Writer, names ...string) processor.Processor {
	return func(ctx *processor.Context, _ processor.OutputFactory) error {
		elems, err := processor.SelectTypes(ctx, names...)
		if err != nil {
			return err
		}
		for _, e := range elems {
			d, err := processor.DeriveElement(e)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(w, describeTable(d)); err != nil {
				return err
			}
		}
		return nil
	}
}

func describeTable(d *processor.Derived) string {
	if len(d.Fields) == 0 {
		return fmt.Sprintf("%s (@%s): <no fields>", d.TypeName, d.Namespace)
	}
	var rows [][]interface{}
	for _, f := range d.Fields {
		def := "-"
		if f.Default.HasValue() {
			def = f.Default.Literal().String()
		}
		rows = append(rows, []interface{}{f.Name, f.GoName, f.Type.String(), strconv.FormatBool(f.Required), def})
	}
	t := gotabulate.Create(rows)
	t.SetHeaders([]string{"field", "go name", "type", "required", "default"})
	t.SetAlign("left")
	return fmt.Sprintf("%s (@%s):\n%s", d.TypeName, d.Namespace, t.Render("grid"))
}
