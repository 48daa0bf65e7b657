package main

import (
	"os"

	"github.com/ibrahimsafah/sn-itil-bsm-discovery/cmd/bsmd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
