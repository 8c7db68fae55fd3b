package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/ardanlabs/consensus/foundation/consensus/archive"
	"github.com/ardanlabs/consensus/foundation/consensus/block"
	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the per-round majority and convergence.",
	Run:   summaryRun,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func summaryRun(cmd *cobra.Command, args []string) {
	strg, err := openArchive()
	if err != nil {
		log.Fatal(err)
	}
	defer strg.Close()

	rounds, err := readAll(strg)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%-8s %-10s %-10s %-10s %s\n", "ROUND", "MAJ.HT", "MAJ.HASH", "CONVERGED", "HEIGHTS")
	for _, rd := range rounds {
		height, hash := majority(rd.Records)

		heights := make([]string, len(rd.Records))
		for i, rec := range rd.Records {
			heights[i] = fmt.Sprintf("%d", rec.Height)
		}

		fmt.Printf("%-8d %-10d %-10s %-10t %s\n", rd.Round, height, block.ShortID(hash), converged(rd.Records), strings.Join(heights, " "))
	}
}

// majority returns the majority height and tip hash for one round's records
// using the same first-encountered tie-break the round engine applies.
func majority(records []archive.Record) (uint64, string) {
	heightCounts := make(map[uint64]int)
	for _, rec := range records {
		heightCounts[rec.Height]++
	}

	var majorityHeight uint64
	best := 0
	for _, rec := range records {
		if count := heightCounts[rec.Height]; count > best {
			best = count
			majorityHeight = rec.Height
		}
	}

	hashCounts := make(map[string]int)
	for _, rec := range records {
		if rec.Height == majorityHeight {
			hashCounts[rec.Hash]++
		}
	}

	var majorityHash string
	best = 0
	for _, rec := range records {
		if rec.Height != majorityHeight {
			continue
		}

		if count := hashCounts[rec.Hash]; count > best {
			best = count
			majorityHash = rec.Hash
		}
	}

	return majorityHeight, majorityHash
}

// converged reports whether every record in the round carries the same
// height and hash.
func converged(records []archive.Record) bool {
	if len(records) == 0 {
		return false
	}

	for _, rec := range records[1:] {
		if rec.Height != records[0].Height || rec.Hash != records[0].Hash {
			return false
		}
	}

	return true
}
