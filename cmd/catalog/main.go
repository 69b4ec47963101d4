package main

import (
	"fmt"
	"os"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/mytheresa/catalog-service/config"
)

const envFileFlag = "env-file"

// configFlags are registered on every command that reads configuration.
var configFlags = map[string]cobraflags.Flag{
	envFileFlag: &cobraflags.StringFlag{
		Name:  envFileFlag,
		Value: ".env",
		Usage: "Dotenv file loaded before reading CATALOG_* variables (ignored when missing)",
	},
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "catalog",
		Short:         "Collections and products REST service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newMigrateCommand())
	return rootCmd
}

func loadConfig() (*config.Config, error) {
	return config.Load(configFlags[envFileFlag].GetString())
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
