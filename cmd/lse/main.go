// Command lse inspects images and fonts the way the resource runtime loads them.
package main

import (
	"os"

	"github.com/lightsource/lse/cmd/lse/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
