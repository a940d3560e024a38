// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-manager CLI.
//
// paper-manager keeps a bibliography table of research papers. The chat
// command lets a language model propose papers in <add> blocks which are
// parsed and added to the table; the remaining commands edit, search and
// partition the table directly.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/paper-manager/internal/config"
	"github.com/pdiddy/paper-manager/internal/logging"
	"github.com/pdiddy/paper-manager/internal/secrets"
	"github.com/pdiddy/paper-manager/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the configuration loaded in PersistentPreRunE.
	cfg types.Config

	// cfgPath is the configuration file in use, or "" for defaults only.
	cfgPath string

	// loadedSecrets holds API keys loaded from .secrets/ at startup.
	loadedSecrets secrets.Secrets

	logger = zap.NewNop()
)

// rootCmd is the base command for the paper-manager CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-manager",
	Short: "Keep a bibliography of research papers with help from a language model",
	Long: `paper-manager maintains a CSV bibliography of research papers
(title, keywords, url, type). Describe papers to the assistant with the chat
command and the papers it proposes are added to the table, skipping ones
already present by title or arXiv ID.

The table can also be edited directly (add, delete), queried (search, list),
and split into one table per paper type (partition).`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: "+config.DefaultPath+", ./paper-manager.toml or ~/.config/paper-manager/config.toml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("secrets-dir", secrets.DefaultDir, "directory of secret files")
}

// setup loads configuration, secrets and the logger for every command.
func setup(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	used, err := config.Setup(viper.GetViper(), path)
	if err != nil {
		return err
	}
	cfgPath = used

	cfg, err = config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	debug, _ := cmd.Flags().GetBool("debug")
	logger = logging.New(debug)
	if !debug && !cfg.UI.Debug {
		logger = logger.WithOptions(zap.IncreaseLevel(zapcore.WarnLevel))
	}
	if cfgPath != "" {
		logger.Debug("using config file", zap.String("path", cfgPath))
	}

	dir, _ := cmd.Flags().GetString("secrets-dir")
	loadedSecrets, err = secrets.Load(dir, logger)
	if err != nil {
		return err
	}
	if names := loadedSecrets.Names(); len(names) > 0 {
		logger.Debug("loaded secrets", zap.Strings("keys", names))
	}
	return nil
}

func main() {
	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
