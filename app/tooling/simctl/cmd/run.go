package cmd

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/ardanlabs/consensus/foundation/consensus/block"
	"github.com/ardanlabs/consensus/foundation/consensus/node"
	"github.com/ardanlabs/consensus/foundation/consensus/selector"
	"github.com/ardanlabs/consensus/foundation/consensus/state"
	"github.com/spf13/cobra"
)

var (
	runNodes    int
	runRounds   int
	runSeed     int64
	runStrategy string
	runChains   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a one-shot simulation and archive the results.",
	Run:   runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().IntVarP(&runNodes, "nodes", "n", 5, "Number of nodes in the simulated network.")
	runCmd.Flags().IntVarP(&runRounds, "rounds", "r", 5, "Number of rounds to run.")
	runCmd.Flags().Int64VarP(&runSeed, "seed", "s", 0, "Randomness seed. Zero seeds from the clock.")
	runCmd.Flags().StringVar(&runStrategy, "strategy", selector.StrategyUniform, "Candidate selection strategy.")
	runCmd.Flags().BoolVar(&runChains, "chains", false, "Print every node's full chain after each round.")
}

func runRun(cmd *cobra.Command, args []string) {
	seed := runSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(seed))

	pick, err := selector.Retrieve(runStrategy)
	if err != nil {
		log.Fatal(err)
	}

	gen := block.NewGenerator(rnd)
	nodes := make([]*node.Node, runNodes)
	for i := range nodes {
		nodes[i] = node.New(i, gen)
	}

	strg, err := newArchive()
	if err != nil {
		log.Fatal(err)
	}
	defer strg.Close()

	st, err := state.New(state.Config{
		Nodes:    nodes,
		Rounds:   runRounds,
		Selector: pick,
		Rand:     rnd,
		Archive:  strg,
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("running %d nodes for %d rounds: seed %d, strategy %s\n\n", runNodes, runRounds, seed, runStrategy)

	for i := 0; i < runRounds; i++ {
		records, err := st.RunRound()
		if err != nil {
			log.Fatal(err)
		}

		fmt.Printf("=== round %d ===\n", i)
		for _, rec := range records {
			fmt.Printf("node %d | height %d | tip %s\n", rec.NodeID, rec.Height, block.ShortID(rec.Hash))
		}

		if runChains {
			for _, n := range nodes {
				chain, err := st.RetrieveChain(n.ID())
				if err != nil {
					log.Fatal(err)
				}

				fmt.Printf("chain %d:\n", n.ID())
				for _, b := range chain {
					fmt.Printf("  %s\n", b)
				}
			}
		}
		fmt.Println()
	}

	if st.Converged() {
		fmt.Println("network converged")
		return
	}
	fmt.Println("network did not converge")
}
