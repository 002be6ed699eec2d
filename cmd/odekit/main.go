package main

import (
	"os"

	"github.com/njchilds90/odekit/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
