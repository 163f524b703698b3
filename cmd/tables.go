package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"sheetexport/source"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List all tables in the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB("", func(ctx context.Context, conn source.Conn) error {
			tables, err := source.Tables(conn)
			if err != nil {
				return err
			}
			source.WriteTables(cmd.OutOrStdout(), tables)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}
