package main

import (
	_ "github.com/Kirov7/CouloyLite/cmd/exec"
	_ "github.com/Kirov7/CouloyLite/cmd/merge"
	"github.com/Kirov7/CouloyLite/cmd/root"
	_ "github.com/Kirov7/CouloyLite/cmd/shell"
)

func main() {
	root.Execute()
}
