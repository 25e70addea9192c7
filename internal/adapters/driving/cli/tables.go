package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var tablesJSON bool

var tablesCmd = withServices(&cobra.Command{
	Use:   "tables",
	Short: "List configured table mappings",
	Args:  cobra.NoArgs,
	RunE:  runTables,
})

func init() {
	tablesCmd.Flags().BoolVar(&tablesJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(tablesCmd)
}

func runTables(cmd *cobra.Command, _ []string) error {
	if syncService == nil {
		return errors.New("sync service not configured")
	}

	mappings := syncService.Tables()
	if tablesJSON {
		return writeJSON(cmd, mappings)
	}

	if len(mappings) == 0 {
		cmd.Println("No table mappings configured.")
		return nil
	}

	st := newStyles(cmd.OutOrStdout())
	for i := range mappings {
		m := &mappings[i]
		cmd.Println(st.Title.Render(m.Name))
		cmd.Printf("  %q -> %s (key %s, %d columns)\n", m.SourceTable, m.SinkTable, m.ConflictKey, len(m.Columns))
		if m.BaseIDKey != "" {
			cmd.Println(st.Muted.Render("  base from " + m.BaseIDKey))
		}
	}
	return nil
}
