package main

import (
	"os"

	"refdoc/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
