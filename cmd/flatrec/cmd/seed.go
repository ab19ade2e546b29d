package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"flatrec/pkg/store/pebblestore"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed <fixture.yaml>",
	Short: "Load a YAML fixture into the store",
	Long: `Load tables and records from a YAML fixture file into the pebble
store. Records without a sys_id get one minted.

Example fixture:

  tables:
    - name: incident
      display_field: number
      fields: [sys_id, number, short_description, caller_id]
      records:
        - values:
            number: INC0010042
            short_description: Disk full
          display:
            caller_id: Abel Tuter

Example:
  flatrec seed ./fixtures/demo.yaml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, ok := cmd.Context().Value(storeKey).(*pebblestore.Store)
		if !ok {
			fmt.Printf("Error: seed requires the pebble backend\n")
			return
		}

		if err := store.LoadFixtureFile(args[0]); err != nil {
			fmt.Printf("Error loading fixture: %v\n", err)
			return
		}
		fmt.Printf("Loaded fixture %s\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
