package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <profile> <value>...",
	Short: "Check whether a record with the same key already exists",
	Long: `Check normalizes the given key values the way the profile does and lists
existing documents with the same key. Give one value per key field, in the
order the profile lists them (see "careerlink profiles"). Use it before
creating a record, e.g.:

  careerlink check institutions "National University of Lesotho"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Bool("exit-code", false, "exit with status 1 when a match exists")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	exitCode, _ := cmd.Flags().GetBool("exit-code")
	out := cmd.OutOrStdout()

	svc, closeStore, err := openService(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	matches, err := svc.Check(cmd.Context(), args[0], args[1:]...)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Fprintln(out, "No existing document matches.")
		return nil
	}

	fmt.Fprintf(out, "%d existing document(s) match:\n", len(matches))
	for _, d := range matches {
		fmt.Fprintf(out, "  %-24s %s\n", d.ID, d.Label())
	}
	if exitCode {
		return fmt.Errorf("%d existing document(s) match", len(matches))
	}
	return nil
}
