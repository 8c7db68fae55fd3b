// Package cmd contains the simctl commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/ardanlabs/consensus/foundation/consensus/archive"
	"github.com/ardanlabs/consensus/foundation/consensus/archive/badgerdb"
	"github.com/ardanlabs/consensus/foundation/consensus/archive/disk"
	"github.com/spf13/cobra"
)

var (
	archivePath    string
	archiveBackend string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&archivePath, "archive", "a", "zblock/rounds", "Path to the round archive.")
	rootCmd.PersistentFlags().StringVarP(&archiveBackend, "backend", "b", "disk", "Archive backend to use: disk or badger.")
}

var rootCmd = &cobra.Command{
	Use:   "simctl",
	Short: "Run and inspect chain-agreement simulations",
}

// Execute runs the selected command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openArchive opens the round archive selected by the persistent flags for
// reading only.
func openArchive() (archive.Storage, error) {
	switch archiveBackend {
	case "disk":
		return disk.New(archivePath)
	case "badger":
		return badgerdb.NewReadOnly(archivePath)
	}

	return nil, fmt.Errorf("backend %q does not exist", archiveBackend)
}

// newArchive opens the round archive selected by the persistent flags for
// writing.
func newArchive() (archive.Storage, error) {
	switch archiveBackend {
	case "disk":
		return disk.New(archivePath)
	case "badger":
		return badgerdb.New(archivePath)
	}

	return nil, fmt.Errorf("backend %q does not exist", archiveBackend)
}

// readAll loads every archived round in order.
func readAll(strg archive.Storage) ([]archive.RoundData, error) {
	var rounds []archive.RoundData

	iter := strg.ForEach()
	for data, err := iter.Next(); !iter.Done(); data, err = iter.Next() {
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, data)
	}

	return rounds, nil
}
