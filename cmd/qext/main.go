// Command qext renders YAML query definitions into parameterized SQL.
package main

import (
	"fmt"
	"os"

	"github.com/willemverspyck/query-extension/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "qext:", err)
	}
	os.Exit(int(cli.StatusOf(err)))
}
