package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"semforge/internal/config"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "semforge",
		Short: "Optimize and evaluate custom semantic types against CSV datasets",
		Long: `semforge profiles table columns against candidate semantic type rules,
persists the finite-list or regex definitions that qualify, and scores the
whole registry with precision/recall/F1 against labeled ground truth.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "path to a semforge.yaml config file")
	flags.String("datasets-root", "", "root directory for dataset CSVs")
	flags.String("registry-path", "", "directory holding persisted semantic types")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")

	cobra.CheckErr(viper.BindPFlag("config", flags.Lookup("config")))
	cobra.CheckErr(viper.BindPFlag("datasets_root", flags.Lookup("datasets-root")))
	cobra.CheckErr(viper.BindPFlag("registry_path", flags.Lookup("registry-path")))
	cobra.CheckErr(viper.BindPFlag("log_level", flags.Lookup("log-level")))
	cobra.CheckErr(viper.BindPFlag("log_format", flags.Lookup("log-format")))
	viper.SetEnvPrefix("semforge")
	viper.AutomaticEnv()

	root.AddCommand(newOptimizeCommand())
	root.AddCommand(newEvaluateCommand())
	root.AddCommand(newOptimizeAndEvalCommand())
	root.AddCommand(newCampaignCommand())
	root.AddCommand(newTypesCommand())
	return root
}

// loadConfig resolves the effective configuration: defaults, then file,
// then environment, then explicit flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return cfg, err
	}
	if v := viper.GetString("datasets_root"); v != "" {
		cfg.DatasetsRoot = v
	}
	if v := viper.GetString("registry_path"); v != "" {
		cfg.RegistryPath = v
	}
	if v := viper.GetString("log_level"); v != "" {
		cfg.Log.Level = v
	}
	if v := viper.GetString("log_format"); v != "" {
		cfg.Log.Format = v
	}
	return cfg, nil
}
