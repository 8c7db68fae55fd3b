package cmd

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/ardanlabs/consensus/foundation/consensus/archive"
	"github.com/ardanlabs/consensus/foundation/consensus/block"
	"github.com/spf13/cobra"
)

var (
	recordsRound int
	recordsJSON  bool
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Print the archived per-node records.",
	Run:   recordsRun,
}

func init() {
	rootCmd.AddCommand(recordsCmd)
	recordsCmd.Flags().IntVar(&recordsRound, "round", -1, "Limit the output to a single round.")
	recordsCmd.Flags().BoolVar(&recordsJSON, "json", false, "Emit the records as a JSON array.")
}

func recordsRun(cmd *cobra.Command, args []string) {
	strg, err := openArchive()
	if err != nil {
		log.Fatal(err)
	}
	defer strg.Close()

	rounds, err := readAll(strg)
	if err != nil {
		log.Fatal(err)
	}

	var records []archive.Record
	for _, rd := range rounds {
		if recordsRound >= 0 && rd.Round != recordsRound {
			continue
		}
		records = append(records, rd.Records...)
	}

	if recordsJSON {
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(string(data))
		return
	}

	fmt.Printf("%-8s %-8s %-8s %s\n", "ROUND", "NODE", "HEIGHT", "HASH")
	for _, rec := range records {
		fmt.Printf("%-8d %-8d %-8d %s\n", rec.Round, rec.NodeID, rec.Height, block.ShortID(rec.Hash))
	}
}
