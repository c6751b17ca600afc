// Command partitioner reads a cell/net hypergraph description, runs the
// multi-start FM partitioner, and writes the resulting group assignment.
package main

import (
	"github.com/eda-tools/fmpart/cmd/partitioner/cmd"
)

func main() {
	cmd.Execute()
}
