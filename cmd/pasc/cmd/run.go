package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/pasc/config"
	"github.com/cwbudde/pasc/interp"
	"github.com/cwbudde/pasc/lexer"
	"github.com/cwbudde/pasc/parser"
	"github.com/cwbudde/pasc/semantic"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runInputFile reads the file named by args[0], runs it through the
// four-stage pipeline, and returns any diagnostic as a Go error.
// SilenceErrors stops cobra from printing that error, so this function
// prints it to stderr itself; main maps a non-nil Execute() error to
// exit code 1, per spec §6.
func runInputFile(cmd *cobra.Command, args []string) error {
	filename := args[0]
	src, err := os.ReadFile(filename)
	if err != nil {
		err = fmt.Errorf("failed to read %s: %w", filename, err)
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	cfg := config.New()
	cfg.ScopeTrace = scopeTrace
	cfg.StackTrace = stackTrace
	if scopeTrace || stackTrace {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("failed to start trace logger: %w", err)
		}
		defer logger.Sync() //nolint:errcheck
		cfg.Logger = logger
	}

	l := lexer.New(string(src))
	p, err := parser.New(l)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	program, err := p.ParseProgram()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	analyzer := semantic.New(cfg)
	if err := analyzer.Analyze(program); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	interpreter := interp.New(cfg)
	if _, err := interpreter.Run(program); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	return nil
}
