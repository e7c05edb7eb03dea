package scenario

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kroy92/copilot-automation-testing/internal/service/directline"
	"github.com/kroy92/copilot-automation-testing/internal/service/judge"
)

// Conversation is the part of *directline.Client the runner drives.
type Conversation interface {
	Send(ctx context.Context, text string) error
	ReceiveWithin(ctx context.Context, timeout time.Duration) (directline.Result, error)
}

// Judge scores a bot reply against an expected text.
type Judge interface {
	Assert(ctx context.Context, expected, actual string, threshold float64) (float64, error)
}

// TurnResult 记录单轮对话的回复与失败原因。
type TurnResult struct {
	Say        string
	Utterances []string
	Score      *float64
	Failures   []string
}

// Passed reports whether every check of the turn held.
func (t TurnResult) Passed() bool {
	return len(t.Failures) == 0
}

// Report is the outcome of one scenario run.
type Report struct {
	Scenario string
	Turns    []TurnResult
	Duration time.Duration
	// Err is set when the conversation itself broke (send failure, stream closed).
	Err error
}

// Passed reports whether every executed turn passed and the run completed.
func (r Report) Passed() bool {
	if r.Err != nil {
		return false
	}
	for _, turn := range r.Turns {
		if !turn.Passed() {
			return false
		}
	}
	return true
}

// Runner 依次执行场景中的轮次，遇到第一个失败的轮次即停止。
type Runner struct {
	Judge            Judge
	DefaultTimeout   time.Duration
	DefaultThreshold float64
}

// Run executes sc against conv.
func (r Runner) Run(ctx context.Context, conv Conversation, sc Scenario) Report {
	started := time.Now()
	report := Report{Scenario: sc.Name}

	timeout := sc.Timeout
	if timeout <= 0 {
		timeout = r.DefaultTimeout
	}

	for i, turn := range sc.Turns {
		result := TurnResult{Say: turn.Say}

		if err := conv.Send(ctx, turn.Say); err != nil {
			result.Failures = append(result.Failures, fmt.Sprintf("send failed: %v", err))
			report.Turns = append(report.Turns, result)
			report.Err = err
			break
		}

		received, err := conv.ReceiveWithin(ctx, timeout)
		if err != nil {
			result.Failures = append(result.Failures, fmt.Sprintf("receive failed: %v", err))
			report.Turns = append(report.Turns, result)
			report.Err = err
			break
		}

		if received.Kind == directline.ResultTimeout {
			result.Failures = append(result.Failures, fmt.Sprintf("bot did not respond within %s", timeout))
		} else {
			result.Utterances = received.Utterances
			r.check(ctx, sc, turn, &result)
		}

		report.Turns = append(report.Turns, result)
		if !result.Passed() {
			log.Printf("[scenario] %s: turn %d failed: %s", sc.Name, i+1, strings.Join(result.Failures, "; "))
			break
		}
	}

	report.Duration = time.Since(started)
	return report
}

func (r Runner) check(ctx context.Context, sc Scenario, turn Turn, result *TurnResult) {
	if turn.ForbidEmpty && hasEmpty(result.Utterances) {
		result.Failures = append(result.Failures, "bot reply contained an empty utterance")
	}

	for _, needle := range turn.Contains {
		if !containsFold(result.Utterances, needle) {
			result.Failures = append(result.Failures, fmt.Sprintf("no utterance contains %q", needle))
		}
	}

	if turn.SimilarTo == "" {
		return
	}
	if r.Judge == nil {
		result.Failures = append(result.Failures, "similar_to requires a configured judge")
		return
	}

	threshold := r.DefaultThreshold
	if sc.Threshold != nil {
		threshold = *sc.Threshold
	}
	if turn.Threshold != nil {
		threshold = *turn.Threshold
	}

	actual := ""
	if len(result.Utterances) > 0 {
		actual = result.Utterances[0]
	}

	score, err := r.Judge.Assert(ctx, turn.SimilarTo, actual, threshold)
	var assertionErr *judge.AssertionError
	switch {
	case err == nil:
		result.Score = &score
	case errors.As(err, &assertionErr):
		result.Score = &assertionErr.Score
		result.Failures = append(result.Failures, err.Error())
	default:
		result.Failures = append(result.Failures, fmt.Sprintf("judge error: %v", err))
	}
}

func hasEmpty(utterances []string) bool {
	for _, u := range utterances {
		if strings.TrimSpace(u) == "" {
			return true
		}
	}
	return false
}

func containsFold(utterances []string, needle string) bool {
	needle = strings.ToLower(needle)
	for _, u := range utterances {
		if strings.Contains(strings.ToLower(u), needle) {
			return true
		}
	}
	return false
}
