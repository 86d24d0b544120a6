package main

import (
	"os"

	"github.com/codalotl/editview/internal/cli"
)

func main() {
	// Run has already printed any error.
	code, _ := cli.Run(os.Args, nil)
	os.Exit(code)
}
