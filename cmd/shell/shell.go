package shell

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Kirov7/CouloyLite"
	"github.com/Kirov7/CouloyLite/cmd/root"
	"github.com/spf13/cobra"
)

const prompt = "couloy-lite> "

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Read commands line by line from stdin and print their replies",
	Long: `shell keeps the storage target open and runs one command per line.
Words may be double quoted with \n \t \" \\ \xHH escapes, or single quoted.
MULTI/EXEC/DISCARD work as usual, quit or exit leaves the shell.`,
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
		if rerr := db.RecoveryStats().Err; rerr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", rerr)
		}
		return run(db, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	root.AddCommand(shellCmd)
}

// run drives db from in until EOF or quit
func run(db *CouloyLite.DB, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		words, err := root.SplitLine(scanner.Text())
		if err != nil {
			fmt.Fprintf(out, "(error) %v\n", err)
			continue
		}
		if len(words) == 0 {
			continue
		}
		switch strings.ToLower(words[0]) {
		case "quit", "exit":
			return nil
		}

		args := make([][]byte, len(words))
		for i, w := range words {
			args[i] = []byte(w)
		}
		if err := db.WriteCommand(args...); err != nil {
			return err
		}
		r, err := db.ReadReply()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, root.FormatReply(r))
	}
}
