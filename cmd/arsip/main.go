package main

import (
	"fmt"
	"os"

	"github.com/mwantia/arsip/cmd/arsip/cli"
	"github.com/mwantia/arsip/cmd/arsip/cli/backup"
	"github.com/mwantia/arsip/cmd/arsip/cli/records"
)

var (
	version = "0.0.1-dev"
	commit  = "main"
)

func main() {
	info := cli.VersionInfo{
		Version: version,
		Commit:  commit,
	}
	root := cli.NewRootCommand(info)

	root.AddCommand(cli.NewVersionCommand(info))
	root.AddCommand(cli.NewConfigCommand())

	root.AddCommand(backup.NewBackupCommand())

	root.AddCommand(records.NewLettersCommand())
	root.AddCommand(records.NewDocsCommand())
	root.AddCommand(records.NewCodesCommand())
	root.AddCommand(records.NewFoldersCommand())
	root.AddCommand(records.NewStatsCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
