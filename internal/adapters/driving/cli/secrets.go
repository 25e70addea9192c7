package cli

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"
)

var secretsJSON bool

var secretsCmd = withServices(&cobra.Command{
	Use:   "secrets",
	Short: "Check which required secrets are set",
	Long: `Reports whether each required configuration value is present in the
environment or the configured secret store. Values are never printed.`,
	Args: cobra.NoArgs,
	RunE: runSecrets,
})

func init() {
	secretsCmd.Flags().BoolVar(&secretsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(secretsCmd)
}

func runSecrets(cmd *cobra.Command, _ []string) error {
	if secretsProbe == nil {
		return errors.New("secrets probe not configured")
	}

	present := secretsProbe.Probe(cmd.Context())
	if secretsJSON {
		return writeJSON(cmd, present)
	}

	st := newStyles(cmd.OutOrStdout())
	missing := 0
	for _, name := range slices.Sorted(maps.Keys(present)) {
		mark := st.Success.Render("set")
		if !present[name] {
			mark = st.Error.Render("missing")
			missing++
		}
		cmd.Printf("  %-28s %s\n", name, mark)
	}

	if missing > 0 {
		cmd.Println(st.Muted.Render(fmt.Sprintf("%d of %d missing", missing, len(present))))
	}
	return nil
}
