package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/kroy92/copilot-automation-testing/internal/service/directline"
	"github.com/kroy92/copilot-automation-testing/internal/service/judge"
	"github.com/kroy92/copilot-automation-testing/internal/service/scenario"
)

var (
	green = lipgloss.Color("#05ffa1")
	red   = lipgloss.Color("#ff5f87")
	blue  = lipgloss.Color("#01cdfe")
	gray  = lipgloss.Color("#8a8a8a")

	titleStyle  = lipgloss.NewStyle().Bold(true)
	passStyle   = lipgloss.NewStyle().Bold(true).Foreground(green)
	failStyle   = lipgloss.NewStyle().Bold(true).Foreground(red)
	userStyle   = lipgloss.NewStyle().Foreground(blue)
	botStyle    = lipgloss.NewStyle().Foreground(green)
	mutedStyle  = lipgloss.NewStyle().Foreground(gray)
	reportFrame = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(gray).Padding(0, 1)
)

func badge(passed bool) string {
	if passed {
		return passStyle.Render("PASS")
	}
	return failStyle.Render("FAIL")
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// renderReport 渲染单个场景的逐轮结果。
func renderReport(report scenario.Report) string {
	lines := []string{
		fmt.Sprintf("%s %s %s", badge(report.Passed()), titleStyle.Render(report.Scenario), mutedStyle.Render(report.Duration.Round(time.Millisecond).String())),
	}

	for i, turn := range report.Turns {
		line := fmt.Sprintf("  %d. %s %s", i+1, badge(turn.Passed()), userStyle.Render(turn.Say))
		if turn.Score != nil {
			line += mutedStyle.Render(" score=" + formatScore(*turn.Score))
		}
		lines = append(lines, line)

		for _, u := range turn.Utterances {
			lines = append(lines, "     "+botStyle.Render("bot> ")+u)
		}
		for _, failure := range turn.Failures {
			lines = append(lines, "     "+failStyle.Render("✗ ")+failure)
		}
	}

	if report.Err != nil && len(report.Turns) == 0 {
		lines = append(lines, "  "+failStyle.Render("✗ ")+report.Err.Error())
	}

	return reportFrame.Render(strings.Join(lines, "\n"))
}

func renderSummary(total, failed int) string {
	if failed == 0 {
		return passStyle.Render(fmt.Sprintf("%d/%d scenarios passed", total, total))
	}
	return failStyle.Render(fmt.Sprintf("%d/%d scenarios failed", failed, total))
}

func renderReply(result directline.Result) string {
	switch result.Kind {
	case directline.ResultMessage:
		lines := make([]string, 0, len(result.Utterances))
		for _, u := range result.Utterances {
			lines = append(lines, botStyle.Render("bot> ")+u)
		}
		return strings.Join(lines, "\n")
	case directline.ResultTimeout:
		return mutedStyle.Render("(no response)")
	default:
		return failStyle.Render("(stream closed)")
	}
}

func renderVerdict(v judge.Verdict, threshold float64) string {
	lines := []string{
		fmt.Sprintf("%s score=%s threshold=%s", badge(v.Score >= threshold), formatScore(v.Score), formatScore(threshold)),
		titleStyle.Render(string(v.Decision)),
	}
	if v.Reason != "" {
		lines = append(lines, mutedStyle.Render(v.Reason))
	}
	return reportFrame.Render(strings.Join(lines, "\n"))
}
