package judge

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrModelRequired    = errors.New("judge: chat model is required")
	ErrInvalidThreshold = errors.New("judge: threshold must be within [0, 1]")
)

// ProtocolError 表示模型返回的内容无法解析为评分结构。
type ProtocolError struct {
	Raw     string
	Message string
	Cause   error
}

func (e *ProtocolError) Error() string {
	msg := "judge: unexpected model output: " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ProtocolError) Unwrap() error { return e.Cause }

// AssertionError 表示相似度低于阈值，携带诊断信息。
type AssertionError struct {
	Score     float64
	Threshold float64
	Decision  Decision
	Reason    string
	Expected  string
	Actual    string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("semantic similarity too low: %s < %s (%s). Reason: %s Actual: %s",
		formatScore(e.Score), formatScore(e.Threshold), e.Decision, e.Reason, e.Actual)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
