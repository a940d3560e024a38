// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-manager/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Review archived chat sessions",
	Long: `History reads the transcript archive written by chat. Each chat run
is one session, and /clear starts a new one.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived sessions, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, err := history.Open(cfg.History.DBFile)
		if err != nil {
			return err
		}
		defer archive.Close()

		sessions, err := archive.Sessions(commandContext(cmd))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No archived sessions.")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SESSION\tSTARTED\tTURNS")
		for _, s := range sessions {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", s.SessionID, s.StartedAt.Local().Format(time.DateTime), s.Turns)
		}
		return tw.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <session>",
	Short: "Print one session's transcript",
	Long: `Show prints the turns of a session. The session may be given by any
unambiguous prefix of its ID.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		archive, err := history.Open(cfg.History.DBFile)
		if err != nil {
			return err
		}
		defer archive.Close()

		id, err := archive.Resolve(ctx, args[0])
		if err != nil {
			return err
		}
		turns, err := archive.Turns(ctx, id)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
			return history.WriteYAML(out, turns)
		}
		fmt.Fprintf(out, "Session %s (%d turns)\n", id, len(turns))
		for _, t := range turns {
			fmt.Fprintf(out, "\n[%d] %s  %s\n", t.Seq, strings.ToUpper(string(t.Role)), t.CreatedAt.Local().Format(time.DateTime))
			fmt.Fprintln(out, t.Content)
		}
		return nil
	},
}

func init() {
	historyShowCmd.Flags().Bool("yaml", false, "output the transcript as YAML")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)

	rootCmd.AddCommand(historyCmd)
}
