package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kroy92/copilot-automation-testing/internal/service/scenario"
)

var runCmd = &cobra.Command{
	Use:   "run <scenario.yaml>...",
	Short: "Run scripted conversations and report the result of every turn",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		scenarios := make([]scenario.Scenario, 0, len(args))
		for _, path := range args {
			sc, err := scenario.Load(path)
			if err != nil {
				return err
			}
			scenarios = append(scenarios, sc)
		}

		opts, err := clientOptions()
		if err != nil {
			return err
		}

		runner := scenario.Runner{
			DefaultTimeout:   opts.ReceiveTimeout,
			DefaultThreshold: cfg.AI.Threshold,
		}
		j, err := newJudge(ctx)
		if err != nil {
			return err
		}
		if j != nil {
			runner.Judge = j
		}

		out := cmd.OutOrStdout()
		failed := 0
		for _, sc := range scenarios {
			report := runScenario(cmd, runner, sc)
			fmt.Fprintln(out, renderReport(report))
			if !report.Passed() {
				failed++
			}
		}

		fmt.Fprintln(out, renderSummary(len(scenarios), failed))
		if failed > 0 {
			return fmt.Errorf("%d of %d scenarios failed", failed, len(scenarios))
		}
		return nil
	},
}

// runScenario 为每个场景建立独立的会话。
func runScenario(cmd *cobra.Command, runner scenario.Runner, sc scenario.Scenario) scenario.Report {
	client, err := connect(cmd.Context())
	if err != nil {
		return scenario.Report{Scenario: sc.Name, Err: err}
	}
	defer client.Disconnect()

	return runner.Run(cmd.Context(), client, sc)
}
