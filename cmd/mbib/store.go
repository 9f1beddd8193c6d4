package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mathbib/mbib/internal/relations"
)

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storeInfoCmd)
}

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect the relation store",
}

var storeInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show relation store location and size",
	Args:  cobra.NoArgs,
	RunE:  runStoreInfo,
}

func runStoreInfo(cmd *cobra.Command, args []string) error {
	s := mustSession()
	defer s.Close()

	count, err := s.store.Count()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	path := filepath.Join(s.root, relations.DBFile)
	if humanOutput {
		fmt.Printf("Store:   %s\n", path)
		fmt.Printf("Entries: %d\n", count)
		return nil
	}
	outputJSON(map[string]any{"path": path, "entries": count})
	return nil
}
