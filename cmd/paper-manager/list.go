package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Summarize the table",
	Long: `List prints the same summary the assistant sees: the total count and
the first papers in table order. With --all every paper is written in the
chosen format.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openTable()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if all, _ := cmd.Flags().GetBool("all"); all {
			format, _ := cmd.Flags().GetString("format")
			return writeRecords(out, st.All(), format)
		}
		limit, _ := cmd.Flags().GetInt("limit")
		fmt.Fprintln(out, st.Summarize(limit))
		return nil
	},
}

func init() {
	listCmd.Flags().Int("limit", 10, "number of papers in the summary")
	listCmd.Flags().Bool("all", false, "write every paper instead of a summary")
	listCmd.Flags().String("format", "table", "output format with --all: table, json, yaml or csv")
	rootCmd.AddCommand(listCmd)
}
