package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// refsCmd represents the refs command
var refsCmd = &cobra.Command{
	Use:   "refs <table> <field> <target>",
	Short: "Find records referencing a target",
	Long: `Find every record in a table whose reference field holds the target
record's sys_id, and print them as a JSON list.

The target may be a sys_id or a business key; business keys need
--target-table to resolve against.

Examples:
  flatrec refs interaction opened_for 5137153cc611227c000bbd1bd8cd2005
  flatrec refs interaction opened_for abel.tuter --target-table=sys_user`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		table, field, target := args[0], args[1], args[2]
		targetTable, _ := cmd.Flags().GetString("target-table")
		excludeEmpty, _ := cmd.Flags().GetBool("exclude-empty")

		accessor, ok := accessorFromContext(cmd)
		if !ok {
			fmt.Printf("Error: accessor not found in context\n")
			return
		}

		fmt.Println(accessor.FindReferencingAsText(cmd.Context(), table, field, target, targetTable, excludeEmpty))
	},
}

// interactionsCmd represents the interactions command
var interactionsCmd = &cobra.Command{
	Use:   "interactions <user>",
	Short: "List a user's interactions",
	Long: `List every interaction record opened for a user, identified by
sys_id or user name, as a JSON list.

Example:
  flatrec interactions abel.tuter`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		excludeEmpty, _ := cmd.Flags().GetBool("exclude-empty")

		accessor, ok := accessorFromContext(cmd)
		if !ok {
			fmt.Printf("Error: accessor not found in context\n")
			return
		}

		fmt.Println(accessor.InteractionsForUserAsText(cmd.Context(), args[0], excludeEmpty))
	},
}

func init() {
	rootCmd.AddCommand(refsCmd)
	refsCmd.Flags().String("target-table", "", "Table to resolve a business-key target against")
	refsCmd.Flags().Bool("exclude-empty", false, "Omit fields with empty raw values")

	rootCmd.AddCommand(interactionsCmd)
	interactionsCmd.Flags().Bool("exclude-empty", false, "Omit fields with empty raw values")
}
