package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/careerlink/internal/dedupe"
	"github.com/pdiddy/careerlink/internal/profile"
	"github.com/pdiddy/careerlink/pkg/types"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the deduplication profiles in effect",
	Long: `Profiles prints the built-in profiles merged with any profiles defined in
the configuration file. With --yaml the output can be pasted into the
profiles section of careerlink.yaml as a starting point.`,
	Args: cobra.NoArgs,
	RunE: runProfiles,
}

func init() {
	profilesCmd.Flags().Bool("yaml", false, "print profiles as YAML")

	rootCmd.AddCommand(profilesCmd)
}

func runProfiles(cmd *cobra.Command, args []string) error {
	asYAML, _ := cmd.Flags().GetBool("yaml")
	out := cmd.OutOrStdout()

	reg, err := profile.NewRegistry(cfg.Profiles)
	if err != nil {
		return err
	}

	if asYAML {
		var doc struct {
			Profiles []types.ProfileConfig `yaml:"profiles"`
		}
		for _, p := range reg.All() {
			doc.Profiles = append(doc.Profiles, p.ProfileConfig)
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(doc)
	}

	fmt.Fprintf(out, "%-14s %-14s %-24s %s\n", "PROFILE", "COLLECTION", "KEY", "POLICY")
	for _, p := range reg.All() {
		policy := p.Policy().Name()
		switch pol := p.Policy().(type) {
		case dedupe.Completeness:
			policy += " (" + strings.Join(pol.Fields, ", ") + ")"
		case dedupe.Recency:
			policy += " (" + pol.Field + ")"
		}
		fmt.Fprintf(out, "%-14s %-14s %-24s %s\n", p.Name, p.Collection, strings.Join(p.KeyFields, " + "), policy)
	}
	return nil
}
