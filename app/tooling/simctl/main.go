// This program provides tooling to run one-shot simulations and inspect
// archived rounds.
package main

import (
	"github.com/ardanlabs/consensus/app/tooling/simctl/cmd"
)

func main() {
	cmd.Execute()
}
