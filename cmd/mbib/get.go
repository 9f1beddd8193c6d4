package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mathbib/mbib/internal/bibtex"
)

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.AddCommand(getJSONCmd)
	getCmd.AddCommand(getBibtexCmd)
	getCmd.AddCommand(getKeyCmd)
	getCmd.AddCommand(getRelatedCmd)
}

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Retrieve records from KEY:ID identifiers",
}

var getJSONCmd = &cobra.Command{
	Use:   "json <KEY:ID>",
	Short: "Print every repository's record for an identifier",
	Long: `Resolve KEY:ID and print a JSON mapping from each related
identifier to the fields its repository reports.

Example:
  mbib get json arxiv:1703.04289`,
	Args: cobra.ExactArgs(1),
	RunE: runGetJSON,
}

func runGetJSON(cmd *cobra.Command, args []string) error {
	s := mustSession()
	defer s.Close()

	data, err := s.archive(args[0]).AsJSON(context.Background())
	if err != nil {
		exitOnResolveError(err)
	}
	fmt.Println(string(data))
	return nil
}

var getBibtexCmd = &cobra.Command{
	Use:   "bibtex <KEY:ID>",
	Short: "Print a BibLaTeX entry for an identifier",
	Args:  cobra.ExactArgs(1),
	RunE:  runGetBibtex,
}

func runGetBibtex(cmd *cobra.Command, args []string) error {
	s := mustSession()
	defer s.Close()

	entry, err := s.archive(args[0]).BibEntry(context.Background())
	if err != nil {
		exitOnResolveError(err)
	}

	rendered, err := bibtex.WriteEntry(entry)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	fmt.Print(rendered)
	return nil
}

var getKeyCmd = &cobra.Command{
	Use:   "key <KEY:ID>",
	Short: "Print the highest-priority identifier for a record",
	Args:  cobra.ExactArgs(1),
	RunE:  runGetKey,
}

func runGetKey(cmd *cobra.Command, args []string) error {
	s := mustSession()
	defer s.Close()

	priority, err := s.archive(args[0]).PriorityKey(context.Background())
	if err != nil {
		exitOnResolveError(err)
	}

	if humanOutput {
		fmt.Println(priority)
	} else {
		outputJSON(map[string]string{"key": priority.String()})
	}
	return nil
}

var getRelatedCmd = &cobra.Command{
	Use:   "related <KEY:ID>",
	Short: "Print every identifier related to a record",
	Args:  cobra.ExactArgs(1),
	RunE:  runGetRelated,
}

func runGetRelated(cmd *cobra.Command, args []string) error {
	s := mustSession()
	defer s.Close()

	keys, err := s.archive(args[0]).RelatedKeys(context.Background())
	if err != nil {
		exitOnResolveError(err)
	}

	if humanOutput {
		for _, k := range keys {
			fmt.Println(k)
		}
		return nil
	}

	strs := make([]string, len(keys))
	for i, k := range keys {
		strs[i] = k.String()
	}
	outputJSON(map[string][]string{"related": strs})
	return nil
}
