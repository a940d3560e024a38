// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-manager/internal/arxiv"
	"github.com/pdiddy/paper-manager/internal/llm"
	"github.com/pdiddy/paper-manager/internal/partition"
	"github.com/pdiddy/paper-manager/internal/secrets"
	"github.com/pdiddy/paper-manager/internal/session"
	"github.com/pdiddy/paper-manager/internal/store"
	"github.com/pdiddy/paper-manager/pkg/types"
)

const (
	defaultTimeout = 10 * time.Minute
	appReferer     = "https://github.com/pdiddy/paper-manager"
	appTitle       = "paper-manager"
)

// openTable opens the configured bibliography table.
func openTable() (*store.Store, error) {
	return store.Open(cfg.Paper.CSVFile, store.WithLogger(logger))
}

// newProvider builds the model backend from configuration and secrets.
// timeout bounds the wait for the response headers only; a streamed reply
// may take as long as the model needs.
func newProvider(timeout time.Duration) *llm.OpenRouter {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout
	return &llm.OpenRouter{
		APIKey:  loadedSecrets.Or(secrets.OpenRouterAPIKey, cfg.API.APIKey),
		BaseURL: cfg.API.BaseURL,
		Client:  &http.Client{Transport: transport},
		Referer: appReferer,
		Title:   appTitle,
		Log:     logger,
	}
}

// params returns the request parameters from configuration.
func params() llm.Params {
	return llm.Params{
		Model:       cfg.API.Model,
		Temperature: cfg.API.Temperature,
		MaxTokens:   cfg.API.MaxTokens,
	}
}

// shardRoot resolves the --shard-root and --no-partition flags.
func shardRoot(cmd *cobra.Command) string {
	if off, _ := cmd.Flags().GetBool("no-partition"); off {
		return ""
	}
	if root, _ := cmd.Flags().GetString("shard-root"); root != "" {
		return root
	}
	return cfg.HF.Folder
}

// addShardFlags registers the flags read by shardRoot.
func addShardFlags(cmd *cobra.Command) {
	cmd.Flags().String("shard-root", "", "directory for per-type tables (default: hf.folder from config)")
	cmd.Flags().Bool("no-partition", false, "do not rewrite per-type tables after adding papers")
}

// repartition rewrites the shards when a root is configured.
func repartition(w io.Writer, root string) error {
	if root == "" {
		return nil
	}
	if err := partition.Repartition(root, cfg.Paper.CSVFile, cfg.Paper.Types, logger); err != nil {
		return fmt.Errorf("repartition: %w", err)
	}
	fmt.Fprintf(w, "Shards updated under %s\n", root)
	return nil
}

// printNotifications writes session output: reply fragments verbatim,
// outcomes on their own lines. It returns the number of error notifications.
func printNotifications(out, errOut io.Writer, ch <-chan session.Notification) int {
	errs := 0
	midLine := false
	for n := range ch {
		switch n.Kind {
		case session.KindChunk:
			fmt.Fprint(out, n.Text)
			midLine = !strings.HasSuffix(n.Text, "\n")
		case session.KindInfo:
			if midLine {
				fmt.Fprintln(out)
				midLine = false
			}
			fmt.Fprintf(out, "-> %s\n", n.Text)
		case session.KindError:
			if midLine {
				fmt.Fprintln(out)
				midLine = false
			}
			fmt.Fprintf(errOut, "error: %s\n", n.Text)
			errs++
		}
	}
	if midLine {
		fmt.Fprintln(out)
	}
	return errs
}

// writeRecords renders records in the given output format.
func writeRecords(w io.Writer, papers []types.PaperRecord, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(papers)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(papers); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case "csv":
		return store.WriteTable(w, papers)
	case "table", "":
		if len(papers) == 0 {
			fmt.Fprintln(w, "No papers found.")
			return nil
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tTITLE\tTYPE\tKEYWORDS\tURL")
		for i, p := range papers {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, truncate(p.Title, 60), p.Type, truncate(p.Keywords, 30), p.URL)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(w, "\n%d paper(s)\n", len(papers))
		return nil
	default:
		return fmt.Errorf("unsupported format %q: use table, json, yaml or csv", format)
	}
}

// describeEntry prints the arXiv metadata behind a looked-up title.
func describeEntry(w io.Writer, e arxiv.Entry) {
	if len(e.Authors) > 0 {
		fmt.Fprintf(w, "  Authors:  %s\n", strings.Join(e.Authors, ", "))
	}
	if e.Category != "" {
		fmt.Fprintf(w, "  Category: %s\n", e.Category)
	}
	if e.Summary != "" {
		fmt.Fprintf(w, "  Abstract: %s\n", truncate(strings.Join(strings.Fields(e.Summary), " "), 200))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// commandContext returns the command context, or Background when unset.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
