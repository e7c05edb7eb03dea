package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kroy92/copilot-automation-testing/internal/service/directline"
	"github.com/kroy92/copilot-automation-testing/internal/service/judge"
	"github.com/kroy92/copilot-automation-testing/internal/service/scenario"
)

func TestRenderReport(t *testing.T) {
	score := 0.62
	report := scenario.Report{
		Scenario: "refunds",
		Turns: []scenario.TurnResult{
			{Say: "hi", Utterances: []string{"Hello!"}},
			{Say: "refund?", Utterances: []string{"Call us"}, Score: &score, Failures: []string{"semantic similarity too low"}},
		},
	}

	out := renderReport(report)
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "refunds")
	assert.Contains(t, out, "Hello!")
	assert.Contains(t, out, "score=0.62")
	assert.Contains(t, out, "semantic similarity too low")
}

func TestRenderReportConnectFailure(t *testing.T) {
	out := renderReport(scenario.Report{Scenario: "down", Err: errors.New("directline auth failed at token")})
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "directline auth failed at token")
}

func TestRenderReply(t *testing.T) {
	assert.Contains(t, renderReply(directline.Result{Kind: directline.ResultMessage, Utterances: []string{"A", "B"}}), "B")
	assert.Contains(t, renderReply(directline.Result{Kind: directline.ResultTimeout}), "no response")
	assert.Contains(t, renderReply(directline.Result{Kind: directline.ResultClosed}), "stream closed")
}

func TestRenderVerdictAndSummary(t *testing.T) {
	out := renderVerdict(judge.Verdict{Score: 0.8, Decision: judge.Similar, Reason: "paraphrase"}, 0.8)
	assert.Contains(t, out, "PASS")
	assert.Contains(t, out, "Similar")
	assert.Contains(t, out, "paraphrase")

	assert.Contains(t, renderSummary(3, 0), "3/3 scenarios passed")
	assert.Contains(t, renderSummary(3, 1), "1/3 scenarios failed")
}
