package exec

import (
	"fmt"

	"github.com/Kirov7/CouloyLite/cmd/root"
	"github.com/spf13/cobra"
)

var execCmd = &cobra.Command{
	Use:   "exec <command> [args...]",
	Short: "Run one command against the storage target and print its reply",
	Example: `  couloy-lite exec SET greeting hello
  couloy-lite -d ./data.klite exec LRANGE queue 0 -1`,
	Args: cobra.MinimumNArgs(1),
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

		words := make([][]byte, len(args))
		for i, arg := range args {
			words[i] = []byte(arg)
		}
		if err := db.WriteCommand(words...); err != nil {
			return err
		}
		r, err := db.ReadReply()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), root.FormatReply(r))
		return nil
	},
}

func init() {
	root.AddCommand(execCmd)
}
