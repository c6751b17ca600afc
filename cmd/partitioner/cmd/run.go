package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/eda-tools/fmpart/internal/hypergraph"
	"github.com/eda-tools/fmpart/internal/ioformat"
	"github.com/eda-tools/fmpart/internal/orchestrator"
	"github.com/eda-tools/fmpart/pkg/config"
	"github.com/eda-tools/fmpart/pkg/perrors"
	"github.com/eda-tools/fmpart/pkg/telemetry"
)

var (
	trialsFlag int
	budgetFlag time.Duration
	statsFlag  bool
	configFlag string
)

// runPartition implements the CLI's only behavior: parse <input>, run the
// orchestrator for K groups, write <output>. Exit code semantics (0/1) are
// enforced by Execute via the error return.
func runPartition(cmd *cobra.Command, args []string) error {
	inputPath, outputPath, kArg := args[0], args[1], args[2]
	log := GetLogger()

	k, err := strconv.Atoi(kArg)
	if err != nil || k < 2 {
		return perrors.New(perrors.CodeInput, fmt.Sprintf("K must be an integer >= 2, got %q", kArg))
	}

	cfg, err := config.Load(configFlag)
	if err != nil {
		return err
	}
	trials := cfg.Trials.Count
	if trialsFlag > 0 {
		trials = trialsFlag
	}
	budget := cfg.Budget.Duration
	if budgetFlag > 0 {
		budget = budgetFlag
	}

	shutdown, err := telemetry.Init(cmd.Context())
	if err != nil {
		log.Warn("telemetry disabled: %v", err)
	} else {
		defer func() { _ = shutdown(cmd.Context()) }()
	}

	inFile, err := os.Open(inputPath)
	if err != nil {
		return perrors.Wrap(perrors.CodeInput, fmt.Sprintf("cannot open input %q", inputPath), err)
	}
	defer inFile.Close()

	cellSpecs, netSpecs, err := ioformat.Parse(inFile)
	if err != nil {
		return err
	}

	hg, err := hypergraph.New(cellSpecs, netSpecs, k)
	if err != nil {
		return perrors.Wrap(perrors.CodeInput, "invalid hypergraph", err)
	}

	log.Info("partitioning %d cells, %d nets into %d groups (trials=%d budget=%s)",
		len(hg.Cells), len(hg.Nets), k, trials, budget)

	start := time.Now()
	ctx := context.Background()
	result, err := orchestrator.Run(ctx, hg, orchestrator.Options{
		Trials: trials,
		Budget: budget,
		Log:    log,
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	log.Info("run %s: winning trial %d, cutSize=%d", result.RunID, result.WinningTrial, result.CutSize)
	log.Debug("winning trial %d move trace: %d recorded moves", result.WinningTrial, len(result.Trace))
	for _, mv := range result.Trace {
		log.Debug("move cell=%d %d->%d cutSize=%d sizeDiff=%d", mv.Cell, mv.From, mv.To, mv.CutSize, mv.SizeDiff)
	}

	outFile, err := os.Create(outputPath)
	if err != nil {
		return perrors.Wrap(perrors.CodeInput, fmt.Sprintf("cannot create output %q", outputPath), err)
	}
	defer outFile.Close()

	if err := ioformat.Write(outFile, result.CutSize, result.Hypergraph.Assignment()); err != nil {
		return perrors.Wrap(perrors.CodeInput, "failed to write output", err)
	}

	if statsFlag {
		fmt.Fprintf(os.Stderr, "run=%s trials=%d winner=%d elapsed=%s cutSize=%d\n",
			result.RunID, result.TrialCount, result.WinningTrial, elapsed, result.CutSize)
	}

	return nil
}
