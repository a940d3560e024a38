package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find papers by title or keywords",
	Long: `Search lists papers whose title or keywords contain the query,
ignoring case, in table order. An empty query lists every paper.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openTable()
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		return writeRecords(cmd.OutOrStdout(), st.Search(strings.Join(args, " ")), format)
	},
}

func init() {
	searchCmd.Flags().String("format", "table", "output format: table, json, yaml or csv")
	rootCmd.AddCommand(searchCmd)
}
