// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

// Command parudd runs AIG-based synthesis examples against the parudd
// engine, exercising its unique table, operation cache and (optionally)
// dynamic variable reordering end to end.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dalzilio/parudd"
	"github.com/dalzilio/parudd/internal/aig"
	"github.com/dalzilio/parudd/internal/synth"
)

var (
	flagWorkers int
	flagStatic  bool
	flagDynamic bool
	flagVerbose bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parudd [flags] <model.aag>",
		Short: "Synthesize a BDD per output of an AIGER model",
		Args:  cobra.ExactArgs(1),
		RunE:  runSynth,
	}

	flags := cmd.Flags()
	flags.SortFlags = false
	flags.IntVarP(&flagWorkers, "workers", "w", 0, "number of workers (0: autodetect)")
	flags.BoolVarP(&flagStatic, "static-reordering", "s", false, "static (Sloan) reordering: not implemented, the run fails with an error")
	flags.BoolVarP(&flagDynamic, "dynamic-reordering", "d", false, "enable dynamic variable reordering")
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "verbose progress logging")

	var flagUsage bool
	flags.BoolVar(&flagUsage, "usage", false, "print a short usage message and exit")
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if flagUsage {
			printUsage(flags)
			os.Exit(0)
		}
		return nil
	}
	cmd.SetUsageTemplate(usageTemplate)
	return cmd
}

const usageTemplate = `Usage: parudd [-w <workers>] [-d] [-s] [-v] [--usage] [--help] <model>
{{.Flags.FlagUsages}}`

// printUsage prints what --usage shows: the usage line followed by every
// flag's description (flags.FlagUsages), the same text as usageTemplate.
func printUsage(flags *pflag.FlagSet) {
	fmt.Println("Usage: parudd [-w <workers>] [-d] [-s] [-v] [--usage] [--help] <model>")
	fmt.Print(flags.FlagUsages())
}

func runSynth(cmd *cobra.Command, args []string) error {
	if flagStatic {
		return fmt.Errorf("static (Sloan) reordering is not implemented; use -d for dynamic reordering")
	}

	modelPath := args[0]
	f, err := os.Open(modelPath)
	if err != nil {
		return fmt.Errorf("cannot open model: %w", err)
	}
	defer f.Close()

	graph, err := aig.Parse(f)
	if err != nil {
		return fmt.Errorf("cannot parse model: %w", err)
	}

	opts := []parudd.Option{parudd.WithWorkers(flagWorkers), parudd.WithVerbose(flagVerbose)}
	if flagDynamic {
		opts = append(opts, parudd.WithReorderType(parudd.Sift))
	}
	engine, err := parudd.NewEngine(opts...)
	if err != nil {
		return fmt.Errorf("cannot initialise engine: %w", err)
	}

	builder := synth.NewBuilder(engine, graph)
	outputs, err := builder.Outputs()
	if err != nil {
		return fmt.Errorf("synthesis failed: %w", err)
	}

	if flagDynamic {
		if res := engine.MaybeReduceHeap(); !res.Ok() {
			fmt.Fprintf(cmd.ErrOrStderr(), "reordering did not complete cleanly: %s\n", res)
		}
	}

	for i, out := range outputs {
		fmt.Fprintf(cmd.OutOrStdout(), "output %d: node index %d (complemented=%v)\n", i, out.Index(), out.Complemented())
	}
	return nil
}

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
