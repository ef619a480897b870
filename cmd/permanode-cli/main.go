// Command permanode-cli controls a permanode daemon.
package main

import (
	"os"

	"permanode/cli"
)

// version, commit and buildTime are set at build time via ldflags
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	cli.SetBuildInfo(commit, buildTime)
	os.Exit(cli.Execute(version))
}
