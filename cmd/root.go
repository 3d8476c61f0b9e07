package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/opgrid/alarmlens/cmd/compose"
	"github.com/opgrid/alarmlens/cmd/presets"
	"github.com/opgrid/alarmlens/cmd/queryalarms"
	"github.com/opgrid/alarmlens/cmd/reconcile"
	"github.com/opgrid/alarmlens/internal/pkg/version"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "alarmlens",
	Short: "alarmlens filters alarms for you",
	Long: `alarmlens manages alarm filter models and composes query predicates:
edit models stay synchronized with the filter configuration, and checked
filters compile into the predicate handed to the alarm record store.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Detailed())
	},
}

func addSubCommandPalattes() {
	rootCmd.AddCommand(presets.PresetsCmd)
	rootCmd.AddCommand(compose.ComposeCmd)
	rootCmd.AddCommand(queryalarms.QueryCmd)
	rootCmd.AddCommand(reconcile.ReconcileCmd)
	rootCmd.AddCommand(versionCmd)
}

func init() {
	cobra.OnInitialize(initConfig)

	addSubCommandPalattes()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.alarmlens.yaml)")
	rootCmd.PersistentFlags().String("models", "", "model tree file (default is models.yaml)")
	rootCmd.PersistentFlags().String("translations", "", "translation table file")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".alarmlens")
	}

	viper.SetDefault("models", "models.yaml")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
