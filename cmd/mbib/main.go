// Package main provides the mbib CLI entry point.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mathbib/mbib/internal/config"
	"github.com/mathbib/mbib/internal/local"
	"github.com/mathbib/mbib/internal/record"
	"github.com/mathbib/mbib/internal/relations"
	"github.com/mathbib/mbib/internal/remote"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	// dataDirFlag overrides the data directory location
	dataDirFlag string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mbib",
	Short: "Bibliography manager for mathematical repositories",
	Long: `mbib manages bibliographic records for papers mirrored across
mathematical repositories (arXiv, zbMATH, DOI registries).

Given one identifier it discovers every related identifier, merges the
repositories' records into a single canonical record, and generates
BibLaTeX entries from citation keys found in TeX sources.

Identifiers are written KEY:ID, e.g. arxiv:1703.04289 or zbl:1396.37064.
Resolved relations are cached in a local data directory and reused.
All commands output JSON by default for scripting; use --human otherwise.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Data directory (default: $MBIB_DATA_DIR or XDG data home)")
	rootCmd.Version = Version
}

// session bundles the collaborators every record command needs, rooted at
// one explicitly resolved data directory.
type session struct {
	root     string
	store    *relations.Store
	client   *remote.Client
	resolver *record.Resolver
	local    *local.Source
}

// mustSession builds a session, exiting on configuration errors.
func mustSession() *session {
	_ = godotenv.Load()

	root, err := config.DataDir(dataDirFlag)
	if err != nil {
		exitWithError(ExitConfigError, "resolving data directory: %v", err)
	}

	store, err := relations.Open(root)
	if err != nil {
		exitWithError(ExitError, "opening relation store: %v", err)
	}

	client := remote.NewClient()
	return &session{
		root:     root,
		store:    store,
		client:   client,
		resolver: record.NewResolver(client, store),
		local:    local.NewSource(root),
	}
}

// Close releases the session's relation store.
func (s *session) Close() {
	s.store.Close()
}

// archive builds an archive record for a KEY:ID string, resolving aliases
// from the global config. Exits on malformed identifiers.
func (s *session) archive(keyStr string) *record.ArchiveRecord {
	alias := ""
	if cfg, err := config.LoadGlobal(); err == nil {
		if target, ok := cfg.Aliases[keyStr]; ok {
			alias = keyStr
			keyStr = target
		}
	}

	rec, err := record.NewArchiveFromString(keyStr, alias, s.resolver, s.store, s.local)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	return rec
}

// exitOnResolveError maps resolution failures to exit codes.
func exitOnResolveError(err error) {
	switch {
	case errors.Is(err, record.ErrRemoteAccess):
		exitWithError(ExitNetworkError, "no connection: %v", err)
	case record.IsNullRecord(err):
		exitWithError(ExitDataError, "%v", err)
	default:
		exitWithError(ExitError, "%v", err)
	}
}
