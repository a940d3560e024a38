package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-manager/internal/arxiv"
	"github.com/pdiddy/paper-manager/pkg/types"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add one paper to the table",
	Long: `Add appends a paper to the table unless one with the same title
(ignoring case) or the same bracketed arXiv ID is already present.

When --title is omitted and the URL (or --arxiv) names an arXiv paper, the
title is fetched from the arXiv API and written as "[arXiv_ID] Title".`,
	Example: `  paper-manager add --title "[2210.01117] Omnigrok: Grokking Beyond Algorithmic Data" \
    --url https://arxiv.org/abs/2210.01117 --keywords "grok, llm, interp" --type interpretability
  paper-manager add --arxiv 2312.00752 --keywords "linear, mamba" --type efficiency`,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().String("title", "", "paper title, ideally \"[arXiv_ID] Title\"")
	addCmd.Flags().String("url", "", "paper URL")
	addCmd.Flags().String("arxiv", "", "arXiv ID or URL; fills in the title and URL")
	addCmd.Flags().String("keywords", "", "comma-separated keywords")
	addCmd.Flags().String("type", "", "paper type")
	addShardFlags(addCmd)

	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	url, _ := cmd.Flags().GetString("url")
	arxivRef, _ := cmd.Flags().GetString("arxiv")
	keywords, _ := cmd.Flags().GetString("keywords")
	paperType, _ := cmd.Flags().GetString("type")

	rec := types.PaperRecord{
		Title:    strings.TrimSpace(title),
		Keywords: strings.TrimSpace(keywords),
		URL:      strings.TrimSpace(url),
		Type:     strings.TrimSpace(paperType),
	}

	var looked *arxiv.Entry
	if rec.Title == "" {
		ref := arxivRef
		if ref == "" {
			ref = rec.URL
		}
		id, ok := arxiv.ParseID(ref)
		if !ok {
			return fmt.Errorf("--title is required unless --url or --arxiv names an arXiv paper")
		}
		client := &arxiv.Client{HTTP: &http.Client{Timeout: 30 * time.Second}, UserAgent: appTitle + "/" + version}
		entry, err := client.Lookup(commandContext(cmd), id)
		if err != nil {
			return err
		}
		looked = &entry
		rec.Title = arxiv.FormatTitle(entry.ID, entry.Title)
		if rec.URL == "" {
			rec.URL = arxiv.AbsURL(entry.ID)
		}
	}
	if rec.URL == "" {
		if id, ok := arxiv.ParseID(arxivRef); ok {
			rec.URL = arxiv.AbsURL(id)
		} else {
			return fmt.Errorf("--url must not be empty")
		}
	}

	st, err := openTable()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	added, err := st.Add(rec)
	if err != nil {
		return err
	}
	if !added {
		fmt.Fprintf(out, "Skipped duplicate: %s\n", rec.Title)
		return nil
	}
	fmt.Fprintf(out, "Added: %s\n", rec.Title)
	if looked != nil {
		describeEntry(out, *looked)
	}
	return repartition(out, shardRoot(cmd))
}
