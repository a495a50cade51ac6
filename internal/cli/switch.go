package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	pkgerrors "clashctl/pkg/errors"
	"github.com/spf13/cobra"
)

var switchCmd = &cobra.Command{
	Use:   "switch <group> <node>",
	Short: "Switch a policy group to the given node",
	Long: `Switch a policy group's active node and echo the server response.

With --validate the group's current members are fetched first and the
switch is refused when the node is not among them. The check races
against concurrent changes at the daemon; the daemon's own answer is
authoritative.`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeSwitchArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		group, node := args[0], args[1]
		validate, _ := cmd.Flags().GetBool("validate")

		client := clientFromFlags(cmd)
		ctx := cmd.Context()

		if validate {
			members, err := client.MembersOf(ctx, group)
			if err != nil {
				return err
			}
			if !slices.Contains(members, node) {
				return &pkgerrors.NotInGroupError{Group: group, Node: node, Members: members}
			}
		}

		raw, err := client.Select(ctx, group, node)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), buf.String())
		return nil
	},
}

func init() {
	switchCmd.Flags().Bool("validate", false, "check the node is a group member before switching")

	rootCmd.AddCommand(switchCmd)
}
