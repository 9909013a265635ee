// main is the entry point for the stationsync CLI.
package main

import (
	"github.com/huangsam/stationsync/cmd"
	"github.com/huangsam/stationsync/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("stationsync", err)
	}
}
