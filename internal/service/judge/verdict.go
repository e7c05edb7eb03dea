package judge

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
)

// Decision 是模型给出的相似度类别。
type Decision string

const (
	Identical           Decision = "Identical"
	Similar             Decision = "Similar"
	SomewhatSimilar     Decision = "Somewhat Similar"
	NotSimilar          Decision = "Not Similar"
	CompletelyDifferent Decision = "Completely Different"
)

var decisions = []Decision{Identical, Similar, SomewhatSimilar, NotSimilar, CompletelyDifferent}

// Verdict is one scored comparison.
type Verdict struct {
	Score    float64
	Decision Decision
	Reason   string
}

var (
	scoreKeys    = []string{"similarityscore", "score", "similarity"}
	decisionKeys = []string{"decision", "category", "label"}
	reasonKeys   = []string{"reason", "justification", "explanation"}
)

// parseVerdict 从模型输出中截取第一个 '{' 到最后一个 '}' 的 JSON 并归一化字段名。
func parseVerdict(content string) (Verdict, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return Verdict{}, &ProtocolError{Raw: content, Message: "missing json object"}
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &raw); err != nil {
		return Verdict{}, &ProtocolError{Raw: content, Message: "invalid json object", Cause: err}
	}

	fields := make(map[string]any, len(raw))
	for key, value := range raw {
		fields[normalizeKey(key)] = value
	}

	value, ok := lookup(fields, scoreKeys)
	if !ok {
		return Verdict{}, &ProtocolError{Raw: content, Message: "similarity score is missing"}
	}
	score, err := toScore(value)
	if err != nil {
		return Verdict{}, &ProtocolError{Raw: content, Message: "similarity score is not numeric", Cause: err}
	}
	if !(score >= 0 && score <= 1) {
		return Verdict{}, &ProtocolError{Raw: content, Message: fmt.Sprintf("similarity score %s outside [0, 1]", formatScore(score))}
	}

	verdict := Verdict{Score: score}
	if reason, ok := lookup(fields, reasonKeys); ok {
		verdict.Reason = strings.TrimSpace(fmt.Sprint(reason))
	}

	label := ""
	if raw, ok := lookup(fields, decisionKeys); ok {
		label = fmt.Sprint(raw)
	}
	decision, ok := parseDecision(label)
	if !ok {
		decision = decisionForScore(score)
		log.Printf("[judge] unknown decision %q, derived %q from score %s", label, decision, formatScore(score))
	}
	verdict.Decision = decision
	return verdict, nil
}

// Check 在 Score >= threshold 时返回 nil，否则返回 *AssertionError。
func (v Verdict) Check(expected, actual string, threshold float64) error {
	if v.Score >= threshold {
		return nil
	}
	return &AssertionError{
		Score:     v.Score,
		Threshold: threshold,
		Decision:  v.Decision,
		Reason:    v.Reason,
		Expected:  expected,
		Actual:    actual,
	}
}

func normalizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(key)))
}

func lookup(fields map[string]any, keys []string) (any, bool) {
	for _, key := range keys {
		if value, ok := fields[key]; ok && value != nil {
			return value, true
		}
	}
	return nil, false
}

func toScore(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case string:
		score, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, err
		}
		// ParseFloat 接受 "NaN"、"Inf"，它们会绕过范围比较。
		if math.IsNaN(score) || math.IsInf(score, 0) {
			return 0, fmt.Errorf("non-finite value %q", v)
		}
		return score, nil
	default:
		return 0, fmt.Errorf("unsupported type %T", value)
	}
}

func parseDecision(raw string) (Decision, bool) {
	normalized := normalizeKey(raw)
	for _, d := range decisions {
		if normalizeKey(string(d)) == normalized {
			return d, true
		}
	}
	return "", false
}

// decisionForScore 在模型给出未知类别时按分数推导。
func decisionForScore(score float64) Decision {
	switch {
	case score >= 0.95:
		return Identical
	case score >= 0.7:
		return Similar
	case score >= 0.3:
		return SomewhatSimilar
	case score >= 0.15:
		return NotSimilar
	default:
		return CompletelyDifferent
	}
}
