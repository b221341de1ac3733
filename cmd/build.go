package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/adalundhe/sememe/core/sememe"
)

var (
	buildRebuild bool
	buildJSON    bool
)

// buildCmd builds or restores the semantic database and reports its shape.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the semantic database and refresh its cache",
	Long: `Build the semantic database from the hierarchy and glossary resources.

A valid cache is reused unless --rebuild is given; a missing or corrupt
cache is always rebuilt and rewritten.

Examples:
  sememe build                       # Restore from cache or build
  sememe build --rebuild             # Ignore the cache and rebuild
  sememe build --json                # Print statistics as JSON`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().BoolVar(&buildRebuild, "rebuild", false, "Rebuild from the raw resources even if a cache exists")
	buildCmd.Flags().BoolVar(&buildJSON, "json", false, "Output statistics as JSON")
}

func runBuild(cmd *cobra.Command, _ []string) error {
	db, err := openDatabase(buildRebuild)
	if err != nil {
		return err
	}
	return printStats(cmd.OutOrStdout(), db, buildJSON)
}

func printStats(w io.Writer, db *sememe.Database, asJSON bool) error {
	stats := db.Stats()
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}
	fmt.Fprintf(w, "Source:            %s\n", stats.Source)
	fmt.Fprintf(w, "Sememes:           %d\n", stats.Sememes)
	fmt.Fprintf(w, "Words:             %d\n", stats.Words)
	fmt.Fprintf(w, "Senses:            %d\n", stats.Senses)
	fmt.Fprintf(w, "Hierarchy records: %d\n", stats.HierarchyNodes)
	fmt.Fprintf(w, "Linked sememes:    %d\n", stats.LinkedSememes)
	fmt.Fprintf(w, "Anomalies:         %d\n", stats.Anomalies)
	return nil
}
