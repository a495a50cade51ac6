package cli

import (
	"fmt"
	"io"
	"strings"

	"clashctl/internal/clash"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List policy groups and nodes",
	Long: `List the daemon's policy groups and endpoint nodes.

With no flags both sections are shown, groups first. Entries appear in
the order the daemon reports them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		groupsOnly, _ := cmd.Flags().GetBool("groups")
		nodesOnly, _ := cmd.Flags().GetBool("nodes")

		client := clientFromFlags(cmd)
		snapshot, err := client.Proxies(cmd.Context())
		if err != nil {
			return err
		}

		showGroups := groupsOnly || !nodesOnly
		showNodes := nodesOnly || !groupsOnly
		renderList(cmd.OutOrStdout(), snapshot, showGroups, showNodes)
		return nil
	},
}

// renderList prints the partitioned snapshot, groups block first.
func renderList(w io.Writer, snapshot *clash.Snapshot, showGroups, showNodes bool) {
	if showGroups {
		fmt.Fprintln(w, "=== Policy Groups ===")
		for _, group := range snapshot.Groups() {
			fmt.Fprintf(w, "%s [%s]: now=%s; members=%s\n",
				group.Name, group.Type, group.Now, strings.Join(group.All, ", "))
		}
	}
	if showNodes {
		fmt.Fprintln(w, "=== Endpoint Nodes ===")
		for _, node := range snapshot.Nodes() {
			fmt.Fprintf(w, "%s [%s], udp=%v\n", node.Name, node.Type, node.UDP)
		}
	}
}

func init() {
	listCmd.Flags().Bool("groups", false, "show only policy groups")
	listCmd.Flags().Bool("nodes", false, "show only endpoint nodes")

	rootCmd.AddCommand(listCmd)
}
