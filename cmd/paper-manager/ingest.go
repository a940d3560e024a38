// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-manager/internal/session"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Apply <add> blocks from a saved reply",
	Long: `Ingest reads text containing <add> blocks, from a file or standard
input, and adds the papers it describes exactly as if the assistant had sent
that text as a reply. No model is called.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	addShardFlags(ingestCmd)
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("reading reply: %w", err)
	}

	st, err := openTable()
	if err != nil {
		return err
	}

	sess := session.New(st, newProvider(0),
		session.WithPaperTypes(cfg.Paper.Types),
		session.WithShardRoot(shardRoot(cmd)),
		session.WithLogger(logger))

	if n := printNotifications(cmd.OutOrStdout(), cmd.ErrOrStderr(), sess.Apply(commandContext(cmd), string(data))); n > 0 {
		return fmt.Errorf("%d error(s) while applying the reply", n)
	}
	return nil
}
