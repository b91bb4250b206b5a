package main

import (
	"os"

	"github.com/quench-lang/quench/pkg/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
