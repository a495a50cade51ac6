package cli

import (
	"context"
	"io"
	"strings"
	"time"

	"clashctl/internal/app"
	"clashctl/internal/clash"
	"github.com/spf13/cobra"
)

// ensureApp lazily initializes appInstance for shell completion.
// Cobra may invoke ValidArgsFunction without running PersistentPreRunE.
func ensureApp(cmd *cobra.Command) error {
	if appInstance != nil {
		return nil
	}
	configPath, _ := cmd.Flags().GetString("config")
	var err error
	appInstance, err = app.New(configPath, io.Discard)
	return err
}

// completionClient builds a client with a short timeout so completion
// stays responsive when the daemon is down.
func completionClient(cmd *cobra.Command) (*clash.Client, context.Context, context.CancelFunc, error) {
	if err := ensureApp(cmd); err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	return clientFromFlags(cmd), ctx, cancel, nil
}

func filterPrefix(names []string, toComplete string) []string {
	var out []string
	for _, name := range names {
		if strings.HasPrefix(strings.ToLower(name), strings.ToLower(toComplete)) {
			out = append(out, name)
		}
	}
	return out
}

// completeGroupNamesForFlag provides completion for policy group names.
func completeGroupNamesForFlag(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	client, ctx, cancel, err := completionClient(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer cancel()

	snapshot, err := client.Proxies(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var names []string
	for _, group := range snapshot.Groups() {
		names = append(names, group.Name)
	}
	return filterPrefix(names, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeNodeNamesForFlag provides completion for leaf node names.
func completeNodeNamesForFlag(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	client, ctx, cancel, err := completionClient(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer cancel()

	snapshot, err := client.Proxies(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var names []string
	for _, node := range snapshot.Nodes() {
		names = append(names, node.Name)
	}
	return filterPrefix(names, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeSwitchArgs completes the switch command's positionals: first
// the group name, then that group's members.
func completeSwitchArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return completeGroupNamesForFlag(cmd, args, toComplete)
	case 1:
		client, ctx, cancel, err := completionClient(cmd)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		defer cancel()

		members, err := client.MembersOf(ctx, args[0])
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return filterPrefix(members, toComplete), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
