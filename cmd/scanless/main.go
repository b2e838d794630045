package main

import (
	"os"

	"github.com/scanless/scanless/cli"
)

func main() {
	os.Exit(cli.Run())
}
