package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"tablegen/internal/export"
	"tablegen/internal/table"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.xlsx>",
	Short: "Print the first sheet of an .xlsx file as a pipe table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tbl, err := export.ReadFile(args[0])
		if err != nil {
			return err
		}

		log.Debug().
			Str("path", args[0]).
			Int("columns", tbl.Columns()).
			Int("rows", len(tbl.Rows)).
			Msg("workbook loaded")

		fmt.Fprint(cmd.OutOrStdout(), table.Markdown(tbl))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
