package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <table> <id>",
	Short: "Get a flattened record",
	Long: `Get a record by sys_id or business key and print it as JSON, every
field flattened into a value/display_value pair.

Examples:
  flatrec get incident INC0010042
  flatrec get incident 9d385017c611228701d22104cc95c371 --exclude-empty
  flatrec get incident INC0010042 --short-text`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		table, id := args[0], args[1]
		excludeEmpty, _ := cmd.Flags().GetBool("exclude-empty")
		shortText, _ := cmd.Flags().GetBool("short-text")

		accessor, ok := accessorFromContext(cmd)
		if !ok {
			fmt.Printf("Error: accessor not found in context\n")
			return
		}

		if shortText {
			fmt.Println(accessor.GetShortTextAsText(cmd.Context(), table, id))
			return
		}
		fmt.Println(accessor.GetFieldsAsText(cmd.Context(), table, id, excludeEmpty))
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().Bool("exclude-empty", false, "Omit fields with empty raw values")
	getCmd.Flags().Bool("short-text", false, "Print only the short description")
}
