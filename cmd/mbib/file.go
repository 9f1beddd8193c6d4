package main

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mathbib/mbib/internal/keyid"
	"github.com/mathbib/mbib/internal/pdfmeta"
)

func init() {
	rootCmd.AddCommand(fileCmd)
	fileCmd.AddCommand(filePathCmd)
	fileCmd.AddCommand(fileOpenCmd)
	fileCmd.AddCommand(fileDownloadCmd)
	fileCmd.AddCommand(fileIdentifyCmd)
}

var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "Manage files associated with records",
}

var filePathCmd = &cobra.Command{
	Use:   "path <KEY:ID>",
	Short: "Print the local file path for a record, if one exists",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilePath,
}

func runFilePath(cmd *cobra.Command, args []string) error {
	s := mustSession()
	defer s.Close()

	path, ok := s.recordFile(args[0])
	if !ok {
		exitWithError(ExitNoFile, "no file associated with %s", args[0])
	}

	if humanOutput {
		fmt.Println(path)
	} else {
		outputJSON(StatusResponse{Status: "found", Path: path})
	}
	return nil
}

var fileOpenCmd = &cobra.Command{
	Use:   "open <KEY:ID>",
	Short: "Open the file associated with a record",
	Args:  cobra.ExactArgs(1),
	RunE:  runFileOpen,
}

func runFileOpen(cmd *cobra.Command, args []string) error {
	s := mustSession()
	defer s.Close()

	path, ok := s.recordFile(args[0])
	if !ok {
		exitWithError(ExitNoFile, "no file associated with %s", args[0])
	}

	opener := "xdg-open"
	if runtime.GOOS == "darwin" {
		opener = "open"
	}
	if err := exec.Command(opener, path).Start(); err != nil {
		exitWithError(ExitError, "opening %s: %v", path, err)
	}
	return nil
}

var fileDownloadCmd = &cobra.Command{
	Use:   "download <KEY:ID>",
	Short: "Download the record's file from the first repository offering one",
	Args:  cobra.ExactArgs(1),
	RunE:  runFileDownload,
}

func runFileDownload(cmd *cobra.Command, args []string) error {
	s := mustSession()
	defer s.Close()
	ctx := context.Background()

	keys, err := s.archive(args[0]).RelatedKeys(ctx)
	if err != nil {
		exitOnResolveError(err)
	}

	for _, k := range keys {
		dest := s.local.FilePath(k)
		if err := s.client.Download(ctx, k, dest); err != nil {
			continue
		}
		if humanOutput {
			fmt.Println(dest)
		} else {
			outputJSON(StatusResponse{Status: "downloaded", Path: dest})
		}
		return nil
	}

	exitWithError(ExitNoFile, "no repository offers a download for %s", args[0])
	return nil
}

var fileIdentifyCmd = &cobra.Command{
	Use:   "identify <PDF>",
	Short: "Identify a PDF by the repository identifiers printed in it",
	Long: `Scan the first pages of a PDF for arXiv identifiers and DOIs,
and print the KEY:ID identifiers found.

Example:
  mbib file identify ~/Downloads/paper.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runFileIdentify,
}

func runFileIdentify(cmd *cobra.Command, args []string) error {
	keys, err := pdfmeta.Identify(args[0])
	if err != nil {
		exitWithError(ExitDataError, "reading %s: %v", args[0], err)
	}
	if len(keys) == 0 {
		exitWithError(ExitNoFile, "no identifiers found in %s", args[0])
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
	outputJSON(map[string][]string{"identifiers": strs})
	return nil
}

// recordFile finds the local file for a record, checking the identifier
// itself first and then every related identifier.
func (s *session) recordFile(keyStr string) (string, bool) {
	rec := s.archive(keyStr)

	if path, ok := s.local.ExistingFile([]keyid.KeyID{rec.Key.DropAlias()}); ok {
		return path, true
	}

	keys, err := rec.RelatedKeys(context.Background())
	if err != nil {
		exitOnResolveError(err)
	}
	return s.local.ExistingFile(keys)
}
