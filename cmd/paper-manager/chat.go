// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-manager/internal/history"
	"github.com/pdiddy/paper-manager/internal/session"
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Talk to the assistant and add the papers it proposes",
	Long: `Chat starts a conversation with the configured model. Each reply is
streamed to the terminal; papers in <add> blocks are added to the table
once the reply is complete, and the per-type tables are rewritten.

With a message argument, chat sends that one message and exits. Otherwise
it reads messages from standard input, one per line. Interactive commands:

  /clear   forget the conversation so far
  /quit    exit`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().Bool("no-stream", false, "request whole replies instead of streaming")
	chatCmd.Flags().Bool("no-history", false, "do not archive this conversation")
	chatCmd.Flags().Duration("timeout", 0, "how long to wait for the model to start replying (default 10m); replies may stream longer")
	addShardFlags(chatCmd)

	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	st, err := openTable()
	if err != nil {
		return err
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	provider := newProvider(timeout)
	if provider.APIKey == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: no API key; set api.api_key or write .secrets/openrouter-api-key")
	}

	opts := []session.Option{
		session.WithParams(params()),
		session.WithPaperTypes(cfg.Paper.Types),
		session.WithShardRoot(shardRoot(cmd)),
		session.WithLogger(logger),
	}
	if noStream, _ := cmd.Flags().GetBool("no-stream"); noStream {
		opts = append(opts, session.WithoutStreaming())
	}

	var rec *history.Recorder
	noHistory, _ := cmd.Flags().GetBool("no-history")
	if cfg.History.Enabled && !noHistory {
		archive, err := history.Open(cfg.History.DBFile)
		if err != nil {
			logger.Warn("transcript archive unavailable", zap.Error(err))
		} else {
			defer archive.Close()
			rec = archive.NewRecorder()
			opts = append(opts, session.WithRecorder(rec))
			logger.Debug("archiving session", zap.String("session", rec.SessionID()))
		}
	}

	sess := session.New(st, provider, opts...)
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	if len(args) > 0 {
		if n := printNotifications(out, errOut, sess.Send(ctx, strings.Join(args, " "))); n > 0 {
			return fmt.Errorf("%d error(s) while handling the message", n)
		}
		return nil
	}

	fmt.Fprintf(out, "paper-manager chat: model %s, table %s (%d papers)\n", cfg.API.Model, st.Path(), st.Len())
	fmt.Fprintln(out, "Type /clear to forget the conversation, /quit to exit.")
	return chatLoop(ctx, cmd.InOrStdin(), out, errOut, sess, rec)
}

// chatLoop reads one message per line until EOF, /quit, or ctx ends.
func chatLoop(ctx context.Context, in io.Reader, out, errOut io.Writer, sess *session.Session, rec *history.Recorder) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(out, "> ")
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return nil
			}
			line = strings.TrimSpace(l)
		}

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/clear":
			if err := sess.Reset(); err != nil {
				fmt.Fprintf(errOut, "error: %v\n", err)
				continue
			}
			if rec != nil {
				rec.Rotate()
			}
			fmt.Fprintln(out, "-> conversation cleared")
			continue
		}

		printNotifications(out, errOut, sess.Send(ctx, line))
	}
}
