package merge

import (
	"fmt"

	"github.com/Kirov7/CouloyLite/cmd/root"
	"github.com/spf13/cobra"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Rewrite the log as a snapshot of the live keys",
	Long: `merge replays the log, discards a damaged tail if there is one and then
rewrites the file so it only holds the keys that are still alive.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		db, err := root.OpenDB()
		if err != nil {
			return err
		}
		defer func() {
			if cerr := db.Close(); err == nil {
				err = cerr
			}
		}()

		stats := db.RecoveryStats()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "replayed %d records in %d transactions\n", stats.Records, stats.Transactions)
		if stats.Err != nil {
			fmt.Fprintf(out, "discarded %d bytes: %v\n", stats.TruncatedBytes, stats.Err)
		}
		if err := db.Merge(); err != nil {
			return err
		}
		fmt.Fprintf(out, "merged %d live keys\n", db.Size())
		return nil
	},
}

func init() {
	root.AddCommand(mergeCmd)
}
