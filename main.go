// file: main.go
// version: 1.1.0
// guid: 09a1b712-a3ad-4fba-8439-489658320979

package main

import (
	"os"

	"github.com/jdfalk/medication-identifier/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
