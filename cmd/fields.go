package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"sheetexport/columns"
	"sheetexport/source"
)

var fieldsYAML bool

var fieldsCmd = &cobra.Command{
	Use:   "fields <table>",
	Short: "List all fields in the specified table",
	Long: `List all fields in the specified table.

With --yaml the fields are printed as a columns file that can be edited and
passed back to export with --columns.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table := args[0]
		return withDB("", func(ctx context.Context, conn source.Conn) error {
			fields, err := source.Fields(conn, table)
			if err != nil {
				return withTableHint(err)
			}
			if fieldsYAML {
				return writeColumnsFile(cmd.OutOrStdout(), fields)
			}
			source.WriteFields(cmd.OutOrStdout(), table, fields)
			return nil
		})
	},
}

// writeColumnsFile renders fields as a columns mapping with suggested types.
func writeColumnsFile(w io.Writer, fields []source.FieldInfo) error {
	defs := make([]columns.Field, 0, len(fields))
	for _, f := range fields {
		defs = append(defs, columns.Field{Key: f.Name, Type: f.CellType()})
	}
	m, err := columns.New(defs...)
	if err != nil {
		return err
	}
	return columns.WriteYAML(w, m)
}

func init() {
	fieldsCmd.Flags().BoolVar(&fieldsYAML, "yaml", false, "Print the fields as a YAML columns file")
	rootCmd.AddCommand(fieldsCmd)
}
