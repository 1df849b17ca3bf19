package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/careerlink/internal/reconcile"
)

var scanCmd = &cobra.Command{
	Use:   "scan [profiles...]",
	Short: "Report duplicate groups without changing anything",
	Long: `Scan reads each profile's collection, groups documents by the profile's
normalized key, and shows every duplicate group with the record the
profile's policy proposes to keep. With no arguments every profile is
scanned. Scan never deletes.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().Bool("json", false, "print groups and proposed picks as JSON")
	scanCmd.Flags().Bool("export", false, "write each profile's plan to YAML and JSON files")
	scanCmd.Flags().String("export-dir", "", "directory for exported plans (default from config, \"reports\")")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	export, _ := cmd.Flags().GetBool("export")
	exportDir, _ := cmd.Flags().GetString("export-dir")
	if exportDir == "" {
		exportDir = cfg.Reconcile.ExportDir
	}

	out := cmd.OutOrStdout()

	svc, closeStore, err := openService(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	var runs []*reconcile.Run
	if len(args) == 0 {
		runs, err = svc.ScanAll(cmd.Context())
		if err != nil {
			return err
		}
	} else {
		for _, name := range args {
			run, err := svc.Scan(cmd.Context(), name)
			if err != nil {
				return err
			}
			runs = append(runs, run)
		}
	}

	if asJSON {
		if err := reconcile.WriteJSON(out, runs); err != nil {
			return err
		}
	} else {
		sums := make([]reconcile.Summary, len(runs))
		for i, r := range runs {
			sums[i] = r.Summary()
		}
		reconcile.WriteSummaries(out, sums)
		for _, r := range runs {
			if len(r.Session.Groups()) == 0 {
				continue
			}
			fmt.Fprintln(out)
			reconcile.WritePlan(out, r)
		}
	}

	if export {
		for _, r := range runs {
			for _, write := range []func(string, *reconcile.Run) (string, error){reconcile.ExportYAML, reconcile.ExportJSON} {
				path, err := write(exportDir, r)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s\n", path)
			}
		}
	}
	return nil
}
