package main

import (
	"fmt"

	"github.com/carlmjohnson/versioninfo"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "listrik %s (revision %s, modified %t, built %s)\n",
				versioninfo.Version, versioninfo.Revision, versioninfo.DirtyBuild, versioninfo.LastCommit.Format("2006-01-02"))
		},
	}
}
