package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kroy92/copilot-automation-testing/internal/service/judge"
)

var (
	judgeExpected  string
	judgeActual    string
	judgeThreshold float64
)

var judgeCmd = &cobra.Command{
	Use:   "judge",
	Short: "Score the semantic similarity of two texts with the configured model",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		svc, err := newJudge(ctx)
		if err != nil {
			return err
		}
		if svc == nil {
			return errors.New("judge requires ARK_API_KEY or ARK_ACCESS_KEY/ARK_SECRET_KEY and ARK_MODEL")
		}

		threshold := svc.Threshold()
		if cmd.Flags().Changed("threshold") {
			threshold = judgeThreshold
		}
		if !(threshold >= 0 && threshold <= 1) {
			return judge.ErrInvalidThreshold
		}

		verdict, err := svc.Score(ctx, judgeExpected, judgeActual)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderVerdict(verdict, threshold))

		return verdict.Check(judgeExpected, judgeActual, threshold)
	},
}

func init() {
	judgeCmd.Flags().StringVar(&judgeExpected, "expected", "", "expected text")
	judgeCmd.Flags().StringVar(&judgeActual, "actual", "", "actual bot reply")
	judgeCmd.Flags().Float64Var(&judgeThreshold, "threshold", 0, "pass threshold in [0, 1] (default: JUDGE_THRESHOLD)")
	_ = judgeCmd.MarkFlagRequired("expected")
	_ = judgeCmd.MarkFlagRequired("actual")
}
