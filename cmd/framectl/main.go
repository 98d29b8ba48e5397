package main

import (
	"fmt"
	"os"

	"github.com/ZoussCity/stardome/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "framectl:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
