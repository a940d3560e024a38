package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <title>",
	Short: "Delete papers by exact title",
	Long: `Delete removes every paper whose title equals the argument, ignoring
case. Matching is on the whole title; arXiv IDs alone do not match.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func init() {
	addShardFlags(deleteCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	title := strings.Join(args, " ")

	st, err := openTable()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	removed, err := st.Delete(title)
	if err != nil {
		return err
	}
	if !removed {
		fmt.Fprintf(out, "Not found: %s\n", title)
		return nil
	}
	fmt.Fprintf(out, "Deleted: %s\n", title)
	return repartition(out, shardRoot(cmd))
}
