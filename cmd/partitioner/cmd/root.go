package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/eda-tools/fmpart/pkg/utils"
)

var (
	verbose bool
	logger  utils.Logger
)

// rootCmd is also the only command: partitioner <input> <output> <K>.
// It carries no subcommands, matching the source's single-binary CLI
// shape, but follows the teacher's cobra conventions (PersistentPreRunE
// logger setup, cobra.ExactArgs) rather than stdlib flag parsing.
var rootCmd = &cobra.Command{
	Use:   "partitioner <input> <output> <K>",
	Short: "Fiduccia-Mattheyses multi-way hypergraph partitioner",
	Long: `partitioner reads a cell/net hypergraph from <input>, partitions it into
<K> groups using a multi-start Fiduccia-Mattheyses heuristic, and writes
the resulting group assignment to <output>.`,
	Example: `  partitioner design.txt design.part 4
  partitioner design.txt design.part 4 --trials 16 --budget 30s --stats`,
	Args: cobra.ExactArgs(3),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := utils.LevelInfo
		if verbose {
			level = utils.LevelDebug
		}
		logger = utils.NewDefaultLogger(level, os.Stderr)
		return nil
	},
	RunE: runPartition,
}

// Execute runs the root command and exits 1 on any error, matching
// spec.md §6's CLI exit-code contract.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")
	rootCmd.Flags().IntVar(&trialsFlag, "trials", 0, "number of parallel trials (default: min(32, NumCPU()))")
	rootCmd.Flags().DurationVar(&budgetFlag, "budget", 0, "wall-clock refinement budget (default: 50s)")
	rootCmd.Flags().BoolVar(&statsFlag, "stats", false, "print trial statistics to stderr on success")
	rootCmd.Flags().StringVar(&configFlag, "config", "", "path to an optional YAML config file")
}

// GetLogger returns the logger configured by PersistentPreRunE.
func GetLogger() utils.Logger {
	return logger
}
