package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/careerlink/internal/confirm"
	"github.com/pdiddy/careerlink/internal/reconcile"
	"github.com/pdiddy/careerlink/internal/review"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <profile>",
	Short: "Delete duplicates in one collection after confirmation",
	Long: `Reconcile scans the profile's collection, proposes one record to keep per
duplicate group, and after confirmation deletes the others one at a time.
A failed delete is reported and the run continues with the next document.

Picks can be changed before confirming: --keep overrides one group,
--plan applies the picks from an edited export, and --interactive opens a
prompt for walking the groups.`,
	Args: cobra.ExactArgs(1),
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().BoolP("interactive", "i", false, "review groups and change picks before confirming")
	reconcileCmd.Flags().StringArray("keep", nil, "keep a document: <group number or key>=<id> (repeatable)")
	reconcileCmd.Flags().String("plan", "", "apply retention picks from an exported plan file")
	reconcileCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	reconcileCmd.Flags().Bool("dry-run", false, "show the plan and exit without deleting")
	reconcileCmd.Flags().Bool("verify", false, "re-scan after deleting and report remaining duplicates")
	reconcileCmd.Flags().Bool("export", false, "write the executed plan and report to the export directory")

	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	interactive, _ := cmd.Flags().GetBool("interactive")
	keeps, _ := cmd.Flags().GetStringArray("keep")
	planFile, _ := cmd.Flags().GetString("plan")
	yes, _ := cmd.Flags().GetBool("yes")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	verify, _ := cmd.Flags().GetBool("verify")
	export, _ := cmd.Flags().GetBool("export")
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	svc, closeStore, err := openService(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	run, err := svc.Scan(ctx, args[0])
	if err != nil {
		return err
	}
	if len(run.Session.Groups()) == 0 {
		fmt.Fprintf(out, "No duplicates in %s (%d documents scanned).\n", run.Profile.Collection, run.Session.Scanned())
		return nil
	}

	if planFile != "" {
		exported, err := reconcile.LoadExport(planFile)
		if err != nil {
			return err
		}
		if exported.Profile != run.Profile.Name {
			return fmt.Errorf("plan %s is for profile %q, not %q", planFile, exported.Profile, run.Profile.Name)
		}
		stale, err := svc.ApplyRetention(run, exported.Retention())
		if err != nil {
			return fmt.Errorf("applying %s: %w", planFile, err)
		}
		for _, key := range stale {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: group %q from %s no longer has duplicates\n", key, planFile)
		}
	}

	for _, k := range keeps {
		if err := applyKeep(run, k); err != nil {
			return err
		}
	}

	// After an interactive review the confirmation is read through the
	// review's terminal so no typed answer is lost between the two readers.
	askYesNo := confirm.New(cmd.InOrStdin(), out).YesNo
	if interactive {
		if !confirm.IsTerminal(os.Stdin) {
			return errors.New("--interactive needs a terminal on stdin")
		}
		rv := review.New(run, out)
		defer rv.Close()
		if err := rv.Run(); err != nil {
			if errors.Is(err, review.ErrAborted) {
				fmt.Fprintln(out, "Aborted; nothing was deleted.")
				return nil
			}
			return err
		}
		askYesNo = rv.YesNo
	}

	plan, err := run.Session.BuildPlan()
	if err != nil {
		return err
	}
	reconcile.WritePlan(out, run)
	if dryRun {
		fmt.Fprintln(out, "Dry run; nothing was deleted.")
		return nil
	}

	if !yes {
		ok, err := askYesNo(fmt.Sprintf("\nDelete %d document(s) from %s?", plan.Len(), plan.Collection))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Cancelled; nothing was deleted.")
			return nil
		}
	}
	if err := run.Session.Confirm(plan.Len()); err != nil {
		return err
	}

	report, execErr := svc.Execute(ctx, run, reconcile.ProgressWriter(out, 10))
	if report != nil {
		reconcile.WriteReport(out, report)
	}
	if export {
		path, err := reconcile.ExportYAML(cfg.Reconcile.ExportDir, run)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s\n", path)
	}
	if execErr != nil {
		return execErr
	}

	if verify {
		groups, err := svc.Verify(ctx, run.Profile.Name)
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			fmt.Fprintln(out, "Verified: no duplicates remain.")
		} else {
			fmt.Fprintf(out, "Verification found %d duplicate group(s) remaining.\n", len(groups))
		}
	}

	if n := len(report.Failed); n > 0 {
		return fmt.Errorf("%d delete(s) failed", n)
	}
	return nil
}

// applyKeep applies one --keep override. The group may be given by its
// key or by its number in the plan listing; a key wins when both match.
func applyKeep(run *reconcile.Run, arg string) error {
	group, id, ok := strings.Cut(arg, "=")
	if !ok || group == "" || id == "" {
		return fmt.Errorf("invalid --keep %q: want <group>=<id>", arg)
	}
	key := group
	if _, isKey := run.Session.Group(group); !isKey {
		if n, err := strconv.Atoi(group); err == nil {
			groups := run.Session.Groups()
			if n < 1 || n > len(groups) {
				return fmt.Errorf("invalid --keep %q: group must be 1 to %d", arg, len(groups))
			}
			key = groups[n-1].Key
		}
	}
	return run.Session.Override(key, id)
}
