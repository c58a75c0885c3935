package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/loykin/apifetch/cmd/apifetch/commands"
	"github.com/loykin/apifetch/internal/constants"
	"github.com/loykin/apifetch/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:           "apifetch",
	Short:         "Call HTTP endpoints described in a YAML catalog",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnvFile(viper.GetString("env_file"))
	},
}

// loadEnvFile loads an explicit .env file, or ./.env when present. Variables
// already set in the process are not overridden.
func loadEnvFile(path string) error {
	if p, ok := util.TrimEmptyCheck(path); ok {
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load env file %s: %w", p, err)
		}
		return nil
	}
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
	return nil
}

func init() {
	// Defaults
	v := viper.GetViper()
	v.SetDefault("config", constants.DefaultConfigPath)
	v.SetDefault("env_file", "")
	v.SetDefault("log_level", "")

	// Environment variables support: APIFETCH_CONFIG, APIFETCH_ENV_FILE, APIFETCH_LOG_LEVEL
	v.SetEnvPrefix("APIFETCH")
	v.AutomaticEnv()

	rootCmd.PersistentFlags().String("config", v.GetString("config"), "path to a config yaml")
	rootCmd.PersistentFlags().String("env-file", v.GetString("env_file"), "load environment variables from this .env file")
	rootCmd.PersistentFlags().String("log-level", v.GetString("log_level"), "override logging.level (error, warn, info, debug)")
	_ = v.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("env_file", rootCmd.PersistentFlags().Lookup("env-file"))
	_ = v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(commands.EndpointsCmd)
	rootCmd.AddCommand(commands.FetchCmd)
	rootCmd.AddCommand(commands.BatchCmd)
	rootCmd.AddCommand(commands.SearchCmd)
	rootCmd.AddCommand(commands.WaitCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		exitHandler.LogFatalError(err, "command execution failed")
	}
}
