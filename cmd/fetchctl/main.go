package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ajitpratap0/fetch-sdk-go/pkg/config"
)

const serviceName = "fetchctl"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	rootCmd := newRootCmd(viper.New())
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fetchctl",
		Short: "Fetch remote resources through resilient transports",
		Long: `fetchctl opens remote locations through the best available transport.

Commands:
  fetchctl get <location>    Stream a location to stdout or a file
  fetchctl providers         List registered transports and their availability`,
		SilenceUsage: true,
	}

	config.BindFlags(rootCmd, v)

	rootCmd.AddCommand(newGetCmd(v))
	rootCmd.AddCommand(newProvidersCmd(v))

	return rootCmd
}

func loadConfig(cmd *cobra.Command, v *viper.Viper) (config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	return config.LoadInto(v, config.EnvPrefix, configFile, "/etc/fetch")
}
