// Package cmd implements the pasc command-line front end: the external
// collaborator spec §1/§6 names but excludes from the core's scope.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pasc [inputfile]",
	Short: "A tree-walking interpreter for a small Pascal-like language",
	Long: `pasc lexes, parses, semantically analyzes, and interprets programs
written in a small, statically-typed Pascal-like language: a single
named program, nested procedures with typed by-value parameters,
scalar INTEGER/REAL variables, nested BEGIN/END compounds, assignment,
and arithmetic with + - * DIV /.`,
	Args: cobra.ExactArgs(1),
	RunE: runInputFile,
}

var (
	scopeTrace bool
	stackTrace bool
)

// Execute runs the root command, returning the error cobra reports so
// main can translate it into the exit code spec §6 requires.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	rootCmd.Flags().BoolVar(&scopeTrace, "scope", false, "enable scope-tracing diagnostic log")
	rootCmd.Flags().BoolVar(&stackTrace, "stack", false, "enable call-stack trace log")
}
