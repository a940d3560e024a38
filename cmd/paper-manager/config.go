// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-manager/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show, change, and save the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Show prints the configuration after defaults, the config file, and
PAPER_MANAGER_* environment overrides are applied. Credentials are masked
unless --reveal is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		reveal, _ := cmd.Flags().GetBool("reveal")

		shown := cfg
		if !reveal {
			shown = config.Redact(cfg)
		}

		out := cmd.OutOrStdout()
		if cfgPath != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "# config file: %s\n", cfgPath)
		}
		switch format {
		case "toml", "":
			data, err := config.Encode(shown)
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(shown)
		case "yaml":
			return yaml.NewEncoder(out).Encode(shown)
		default:
			return fmt.Errorf("unsupported format %q: use toml, json or yaml", format)
		}
	},
}

var configSaveCmd = &cobra.Command{
	Use:   "save [path]",
	Short: "Write the effective configuration to a TOML file",
	Long: `Save writes the effective configuration, including credentials, to
path (default: the config file in use, or ` + config.DefaultPath + `).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := saveTarget(args)
		if err := config.Save(path, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved configuration to %s\n", path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting and save the file",
	Long: `Set changes one "section.key" setting, for example api.model or
paper.types (comma-separated), and writes the configuration file.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		updated, err := config.Set(viper.GetViper(), args[0], args[1])
		if err != nil {
			return err
		}
		path := saveTarget(nil)
		if err := config.Save(path, updated); err != nil {
			return err
		}
		cfg = updated
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", args[0], path)
		return nil
	},
}

var configFilesCmd = &cobra.Command{
	Use:   "files [dir]",
	Short: "List configuration files",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "config"
		if len(args) == 1 {
			dir = args[0]
		}
		files, err := config.Files(dir)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(files) == 0 {
			fmt.Fprintf(out, "No configuration files in %s\n", dir)
			return nil
		}
		for _, f := range files {
			marker := " "
			if f == cfgPath {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %s\n", marker, f)
		}
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the settings accepted by config set",
	Run: func(cmd *cobra.Command, args []string) {
		for _, k := range config.Keys() {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}
	},
}

// saveTarget picks where config save and config set write.
func saveTarget(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	if cfgPath != "" {
		return cfgPath
	}
	return config.DefaultPath
}

func init() {
	configShowCmd.Flags().String("format", "toml", "output format: toml, json or yaml")
	configShowCmd.Flags().Bool("reveal", false, "print credentials unmasked")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSaveCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configFilesCmd)
	configCmd.AddCommand(configKeysCmd)

	rootCmd.AddCommand(configCmd)
}
