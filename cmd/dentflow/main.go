package main

import (
	"os"

	"github.com/dentflow/dentflow/internal/cli"
	"github.com/dentflow/dentflow/pkg/buildinfo"
)

func main() {
	cli.SetVersion(buildinfo.Version, buildinfo.Commit, buildinfo.Date)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
