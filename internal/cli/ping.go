package cli

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"clashctl/internal/latency"
	pkgerrors "clashctl/pkg/errors"
	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Probe node latency",
	Long: `Probe delay of individual nodes or a whole policy group.

With --group, every member of the group is probed and --node arguments
are ignored. A failing probe is reported for that node only; the rest
of the batch still runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		groupName, _ := cmd.Flags().GetString("group")
		nodes, _ := cmd.Flags().GetStringArray("node")
		testURL, _ := cmd.Flags().GetString("url")
		timeoutMS, _ := cmd.Flags().GetInt("timeout")
		workers, _ := cmd.Flags().GetInt64("workers")

		client := clientFromFlags(cmd)
		ctx := cmd.Context()

		targets := nodes
		if groupName != "" {
			members, err := client.MembersOf(ctx, groupName)
			if err != nil {
				return err
			}
			if len(members) == 0 {
				return fmt.Errorf("group '%s' has no members", groupName)
			}
			targets = members
			fmt.Fprintf(cmd.OutOrStdout(), "Testing group '%s' (%d nodes)\n", groupName, len(members))
		}
		if len(targets) == 0 {
			return pkgerrors.ErrNoTargets
		}

		runner := latency.NewRunner(client, latency.RunnerConfig{
			Workers:   workers,
			TestURL:   testURL,
			TimeoutMS: timeoutMS,
		})

		start := time.Now()
		results := runner.Run(ctx, targets)

		renderPingResults(cmd.OutOrStdout(), cmd.ErrOrStderr(), results)
		if len(results) > 1 {
			renderPingSummary(cmd.OutOrStdout(), results, time.Since(start))
		}
		return nil
	},
}

// renderPingResults prints one line per target in input order. Measured
// delays and daemon-reported timeouts go to stdout, request failures to
// stderr.
func renderPingResults(stdout, stderr io.Writer, results []latency.Result) {
	for _, result := range results {
		switch {
		case result.Err != nil:
			fmt.Fprintf(stderr, "%s: request failed (%v)\n", result.Target, result.Err)
		case !result.OK:
			fmt.Fprintf(stdout, "%s: timeout/no response\n", result.Target)
		default:
			fmt.Fprintf(stdout, "%s: %d ms\n", result.Target, result.DelayMS)
		}
	}
}

// renderPingSummary prints a results table sorted by latency with
// timeouts and failures at the end.
func renderPingSummary(out io.Writer, results []latency.Result, elapsed time.Duration) {
	sorted := make([]latency.Result, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := sorted[i], sorted[j]
		if ri.OK != rj.OK {
			return ri.OK
		}
		if ri.OK && rj.OK {
			return ri.DelayMS < rj.DelayMS
		}
		// Timeouts before request failures.
		return ri.Err == nil && rj.Err != nil
	})

	var ok, timeout, failed int
	for _, result := range results {
		switch {
		case result.Err != nil:
			failed++
		case !result.OK:
			timeout++
		default:
			ok++
		}
	}

	fmt.Fprintf(out, "\nResults (sorted by latency):\n")

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tLATENCY\tSTATUS")
	fmt.Fprintln(w, "-\t----\t-------\t------")
	for i, result := range sorted {
		latStr := "N/A"
		statusStr := "FAIL"
		switch {
		case result.OK:
			latStr = fmt.Sprintf("%d ms", result.DelayMS)
			statusStr = "OK"
		case result.Err == nil:
			statusStr = "TIMEOUT"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, result.Target, latStr, statusStr)
	}
	w.Flush()

	fmt.Fprintf(out, "\nSummary: %d tested, %d ok, %d timeout, %d failed (%.1fs)\n",
		len(results), ok, timeout, failed, elapsed.Seconds())
}

func init() {
	pingCmd.Flags().StringP("group", "g", "", "policy group: probe all of its members")
	pingCmd.Flags().StringArrayP("node", "n", nil, "node name, repeatable; ignored when --group is set")
	pingCmd.Flags().String("url", latency.DefaultTestURL, "probe URL")
	pingCmd.Flags().IntP("timeout", "t", latency.DefaultTimeoutMS, "per-probe timeout in milliseconds")
	pingCmd.Flags().Int64P("workers", "w", 4, "number of concurrent probes")

	pingCmd.RegisterFlagCompletionFunc("group", completeGroupNamesForFlag)
	pingCmd.RegisterFlagCompletionFunc("node", completeNodeNamesForFlag)

	rootCmd.AddCommand(pingCmd)
}
