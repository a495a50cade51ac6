package cli

import (
	"fmt"
	"io"

	"clashctl/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or set the default host/secret",
	Long: `Show or update the persisted default host and secret.

Setting a value writes the whole config store immediately. Without a
mutation (or with --show) the stored values are printed, falling back
to environment and built-in defaults for unset fields.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		host, _ := cmd.Flags().GetString("host")
		secret, _ := cmd.Flags().GetString("secret")
		show, _ := cmd.Flags().GetBool("show")

		store := appInstance.Store
		changed := false
		if cmd.Flags().Changed("host") {
			store.Host = host
			changed = true
		}
		if cmd.Flags().Changed("secret") {
			store.Secret = secret
			changed = true
		}

		if changed {
			if err := store.Save(appInstance.ConfigPath); err != nil {
				return err
			}
			appInstance.Store = store
			fmt.Fprintf(cmd.OutOrStdout(), "Saved config to %s\n", appInstance.ConfigPath)
		}

		if show || !changed {
			renderStoredConfig(cmd.OutOrStdout(), store)
		}
		return nil
	},
}

// renderStoredConfig prints the persisted values, falling back to the
// environment/built-in defaults for fields the store leaves unset. The
// current invocation's --host/--secret flags are deliberately not
// consulted here.
func renderStoredConfig(w io.Writer, store config.Store) {
	host := store.Host
	if host == "" {
		host = config.DefaultHost()
	}
	secret := store.Secret
	if secret == "" {
		secret = config.DefaultSecret()
	}
	if secret == "" {
		secret = "(empty)"
	}
	fmt.Fprintf(w, "host: %s\n", host)
	fmt.Fprintf(w, "secret: %s\n", secret)
}

func init() {
	configCmd.Flags().String("host", "", "set the default host")
	configCmd.Flags().String("secret", "", "set the default secret")
	configCmd.Flags().Bool("show", false, "show the stored configuration")

	rootCmd.AddCommand(configCmd)
}
