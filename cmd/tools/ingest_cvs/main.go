// Package main implements ingest_cvs, a command line runner for the CV
// ingestion pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "ingest_cvs",
	Short:        "Ingest PDF CVs into TalentTrack",
	Long:         "Runs the same extraction pipeline as POST /api/aicv/ against local files, or prepares the database for it.",
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
