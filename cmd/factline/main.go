// Command factline is the CLI for the reconciliation and temporal
// tracking registry: syncing upstream sources, querying who held a
// position and when, and inspecting the canonical record set.
package main

import (
	"github.com/factline/registry/cmd/factline/cmd"
)

// Build information. Populated at build-time via -ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
