package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var partitionCmd = &cobra.Command{
	Use:   "partition",
	Short: "Rewrite the per-type tables",
	Long: `Partition splits the table into one table per configured paper type,
written to <root>/<type>/papers.csv. Papers whose type is not configured are
left out. The main table is not modified.

A main table that does not exist yet is treated as empty: every per-type
table is written with only its header row. A table that exists but cannot
be read, or whose header lacks a required column, is an error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, _ := cmd.Flags().GetString("root")
		if root == "" {
			root = cfg.HF.Folder
		}
		if root == "" {
			return fmt.Errorf("no destination: pass --root or set hf.folder")
		}
		return repartition(cmd.OutOrStdout(), root)
	},
}

func init() {
	partitionCmd.Flags().String("root", "", "destination directory (default: hf.folder from config)")
	rootCmd.AddCommand(partitionCmd)
}
