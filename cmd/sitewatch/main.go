package main

import (
	"os"

	"github.com/dshills/sitewatch/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
