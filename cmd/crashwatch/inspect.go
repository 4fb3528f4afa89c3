package main

import (
	"fmt"
	"os"

	"github.com/nguyentantai21042004/crashlog-notifier/internal/parser"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <report>...",
	Short: "Parse crash reports and print what a waiter would receive",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := parser.New()
		results := make([]inspectResult, 0, len(args))
		failed := 0
		for _, path := range args {
			rec, err := p.Parse(cmd.Context(), path)
			if err != nil {
				failed++
			}
			results = append(results, inspectResult{path: path, rec: rec, err: err})
		}

		if err := printInspectResults(os.Stdout, results, outputFormat); err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d report(s) could not be parsed", failed, len(args))
		}
		return nil
	},
}
