package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mathbib/mbib/internal/bibtex"
	"github.com/mathbib/mbib/internal/record"
	"github.com/mathbib/mbib/internal/texsource"
)

var generateOut string

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&generateOut, "out", "", "Write generated bibliography to file instead of stdout")
}

var generateCmd = &cobra.Command{
	Use:   "generate <TEXFILE>...",
	Short: "Generate a bibliography from citation keys in TeX files",
	Long: `Scan TeX files for \cite-family keys and generate BibLaTeX entries
for each. Keys may be KEY:ID identifiers or aliases from the global config.

Null records are skipped with a warning; a single record that cannot be
resolved does not abort the whole bibliography.

Example:
  mbib generate paper.tex --out references.bib`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	s := mustSession()
	defer s.Close()
	ctx := context.Background()

	keys, err := texsource.ExtractKeysFromFiles(args)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	var entries []record.Fields
	for _, key := range keys {
		rec := s.archive(key)

		null, err := rec.IsNull(ctx, true)
		if err != nil {
			if record.IsNullRecord(err) {
				fmt.Fprintf(os.Stderr, "warning: skipping %q: %v\n", key, err)
				continue
			}
			exitOnResolveError(err)
		}
		if null {
			continue
		}

		entry, err := rec.BibEntry(ctx)
		if err != nil {
			exitOnResolveError(err)
		}
		entries = append(entries, entry)
	}

	bib, err := bibtex.WriteEntries(entries)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	if generateOut == "" {
		fmt.Print(bib)
		return nil
	}
	if err := os.WriteFile(generateOut, []byte(bib), 0644); err != nil {
		exitWithError(ExitError, "writing %s: %v", generateOut, err)
	}
	if humanOutput {
		fmt.Printf("Wrote %d entries to %s\n", len(entries), generateOut)
	} else {
		outputJSON(StatusResponse{Status: "written", Path: generateOut})
	}
	return nil
}
