package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/MeKo-Tech/sheetscan/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create configuration files",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	Long: `Print the configuration after merging the config file, SHEETSCAN_*
environment variables, bound flags and defaults, as YAML.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		loader := GetConfigLoader()
		out, err := yaml.Marshal(loader.GetResolvedConfig())
		if err != nil {
			return fmt.Errorf("encode configuration: %w", err)
		}

		if used := loader.GetConfigFileUsed(); used != "" {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "# config file: %s\n", used)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Write a configuration file holding the defaults",
	Long: `Write the default configuration as YAML. The file defaults to
sheetscan.yaml in the working directory and is not overwritten unless --force
is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.ConfigFileName + ".yaml"
		if len(args) == 1 {
			path = args[0]
		}

		if force, _ := cmd.Flags().GetBool("force"); !force {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			} else if !errors.Is(err, os.ErrNotExist) {
				return err
			}
		}

		if err := config.GenerateDefaultConfigFile(path); err != nil {
			return fmt.Errorf("write config file: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
}
