package cli

import (
	"fmt"
	"os"

	"clashctl/internal/app"
	"clashctl/internal/clash"
	"github.com/spf13/cobra"
)

var (
	appInstance *app.App
	version     = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "clashctl",
	Short: "Control a local Clash/mihomo daemon from your terminal",
	Long: `clashctl - command-line controller for the Clash REST API

  List policy groups and nodes, probe node latency, and switch a
  group's active node.

  Quick start:
    clashctl list
    clashctl ping --group Proxy
    clashctl switch Proxy "HK 01"
    clashctl config --host 127.0.0.1:9090`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		var err error
		appInstance, err = app.New(configPath, cmd.ErrOrStderr())
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		return nil
	},
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().String("host", "", "API host (default: config file, $CLASH_API_HOST, or 127.0.0.1:9090)")
	rootCmd.PersistentFlags().String("secret", "", "API secret (default: config file or $CLASH_API_SECRET)")
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")

	rootCmd.AddCommand(versionCmd)
}

// clientFromFlags resolves the effective config for this invocation and
// returns a client bound to it.
func clientFromFlags(cmd *cobra.Command) *clash.Client {
	host, _ := cmd.Flags().GetString("host")
	secret, _ := cmd.Flags().GetString("secret")
	return appInstance.Client(host, secret)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("clashctl %s\n", version)
	},
}
