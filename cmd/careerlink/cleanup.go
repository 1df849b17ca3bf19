package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/careerlink/internal/confirm"
	"github.com/pdiddy/careerlink/internal/reconcile"
)

var cleanupAllCmd = &cobra.Command{
	Use:   "cleanup-all",
	Short: "Delete duplicates in every collection",
	Long: `Cleanup-all scans every profile, shows the duplicate counts per
collection, and after two confirmations (a yes/no question, then typing
"DELETE <n>" with the exact number of deletions) reconciles each
collection in turn with the profiles' automatic picks. Every profile is
scanned again just before its deletes run, so profiles that share a
collection never remove the record another profile kept.`,
	Args: cobra.NoArgs,
	RunE: runCleanupAll,
}

func init() {
	cleanupAllCmd.Flags().Bool("details", false, "print every duplicate group before confirming")

	rootCmd.AddCommand(cleanupAllCmd)
}

func runCleanupAll(cmd *cobra.Command, args []string) error {
	details, _ := cmd.Flags().GetBool("details")
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	svc, closeStore, err := openService(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	runs, err := svc.ScanAll(ctx)
	if err != nil {
		return err
	}

	sums := make([]reconcile.Summary, len(runs))
	total := 0
	for i, r := range runs {
		sums[i] = r.Summary()
		total += sums[i].Duplicates
	}
	reconcile.WriteSummaries(out, sums)
	if total == 0 {
		fmt.Fprintln(out, "Nothing to clean up.")
		return nil
	}
	if details {
		for _, r := range runs {
			if len(r.Session.Groups()) > 0 {
				fmt.Fprintln(out)
				reconcile.WritePlan(out, r)
			}
		}
	}

	prompt := confirm.New(cmd.InOrStdin(), out)
	ok, err := prompt.YesNo(fmt.Sprintf("\nDelete %d duplicate document(s) across all collections?", total))
	if err != nil {
		return err
	}
	if ok {
		ok, err = prompt.Phrase("This cannot be undone.", confirm.DeletePhrase(total))
		if err != nil {
			return err
		}
	}
	if !ok {
		fmt.Fprintln(out, "Cancelled; nothing was deleted.")
		return nil
	}

	// Each profile is rescanned before it runs; the confirmed total caps
	// what the rescans may delete.
	res, err := svc.Cleanup(ctx, total, out)
	fmt.Fprintf(out, "\nCleanup finished: %d of %d deleted, %d failed\n", res.Succeeded, res.Requested, res.Failed)
	if err != nil {
		return err
	}
	if res.Failed > 0 {
		return fmt.Errorf("%d delete(s) failed", res.Failed)
	}
	return nil
}
