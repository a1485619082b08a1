package main

import (
	"github.com/pfrederiksen/cricscore/internal/cli"
)

var version = "dev"

func main() {
	cli.Version = version
	cli.Execute()
}
