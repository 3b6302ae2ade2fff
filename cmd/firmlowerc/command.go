package main

import (
	"context"
	"fmt"

	"github.com/containerd/log"
	"github.com/spf13/cobra"

	"github.com/mjcc/firmlower/internal/firm"
	"github.com/mjcc/firmlower/internal/llir"
	"github.com/mjcc/firmlower/internal/lower"
)

// newLowerCommand builds the cmd/firmlowerc command tree: a thin cobra
// wrapper around lower.Options. There is no front end in this
// repository's scope, so the command lowers a small built-in
// demonstration program instead of reading MiniJava source — it exists
// to exercise the Options plumbing end to end, not as a production
// entry point.
func newLowerCommand() *cobra.Command {
	opts := lower.Options{}

	cmd := &cobra.Command{
		Use:   "firmlowerc",
		Short: "Lower a demonstration firm graph to LLIR",
		Long: "firmlowerc runs the SSA-to-LLIR lowering core over a small built-in\n" +
			"demonstration program and prints the resulting block structure. It has\n" +
			"no front end: the program lowered is fixed, not read from a file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Dump {
				if err := log.SetLevel("debug"); err != nil {
					return err
				}
			}
			return runLower(cmd.Context(), cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.Dump, "dump", false, "log each method's source graph shape before lowering")
	flags.BoolVar(&opts.Optimize, "optimize", false, "route lowering through the InstructionSelection visitor")

	return cmd
}

func runLower(ctx context.Context, cmd *cobra.Command, opts lower.Options) error {
	prog := demoProgram()

	result := lower.Lower(ctx, prog, opts)

	for _, method := range prog.Methods() {
		if err := result.Failures[method]; err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: FAILED: %v\n", method.Name, err)
			continue
		}
		graph := result.Graphs[method]
		printGraph(cmd, method, graph)
	}
	return nil
}

func printGraph(cmd *cobra.Command, method *firm.Method, g *llir.LlirGraph) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s:\n", method.Name)
	for _, b := range g.Reachable() {
		fmt.Fprintf(out, "  block%d:\n", b.ID)
		for _, in := range b.Inputs {
			fmt.Fprintf(out, "    input %s\n", in.Dst)
		}
		for _, n := range b.Body() {
			fmt.Fprintf(out, "    %s\n", n)
		}
		if t := b.Terminator(); t != nil {
			fmt.Fprintf(out, "    %s\n", t)
		}
		for _, o := range b.Outputs {
			fmt.Fprintf(out, "    output %s\n", o)
		}
	}
}

// demoProgram builds an if-then-else with a φ: if (a < b) x = 1; else
// x = 2; return x; — the smallest program that exercises a Cmp, a
// Branch, and a φ resolved across two non-critical predecessor edges.
func demoProgram() *firm.Program {
	built := firm.Fun("entry", []firm.Mode{firm.ModeIs, firm.ModeIs},
		firm.Bloc("entry",
			firm.ProjVal("a", firm.ModeIs, "start", 0),
			firm.ProjVal("b", firm.ModeIs, "start", 1),
			firm.CmpVal("cmp", firm.RelLess, "a", "b"),
			firm.Branch("cmp", "then", "else")),
		firm.Bloc("then",
			firm.ConstVal("one", firm.ModeIs, 1),
			firm.Goto("join")),
		firm.Bloc("else",
			firm.ConstVal("two", firm.ModeIs, 2),
			firm.Goto("join")),
		firm.Bloc("join",
			firm.PhiVal("x", firm.ModeIs, "one", "two"),
			firm.Ret("x")))
	return built.Program
}
