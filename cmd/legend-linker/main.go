package main

import (
	"os"

	"github.com/ironsheep/legend-linker/cmd/legend-linker/cmd"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	root := cmd.NewRootCommand(cmd.BuildInfo{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
	})
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
