package directline

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned when the client has no live conversation.
var ErrNotConnected = errors.New("directline: client is not connected")

// AuthError 表示在令牌或会话创建阶段凭证无效或缺失。
type AuthError struct {
	Stage      string
	StatusCode int
	Message    string
	Cause      error
}

func (e *AuthError) Error() string {
	msg := fmt.Sprintf("directline auth failed at %s", e.Stage)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *AuthError) Unwrap() error { return e.Cause }

// ProtocolError 表示 HTTP 响应成功但缺少约定字段。
type ProtocolError struct {
	Message string
	Cause   error
}

func (e *ProtocolError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("directline protocol error: %s: %v", e.Message, e.Cause)
	}
	return "directline protocol error: " + e.Message
}

func (e *ProtocolError) Unwrap() error { return e.Cause }

// ConnectionError 表示 WebSocket 握手失败。
type ConnectionError struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *ConnectionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("directline stream handshake failed (status %d): %v", e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("directline stream handshake failed: %v", e.Cause)
}

func (e *ConnectionError) Unwrap() error { return e.Cause }

// StreamClosedError 表示会话中途流被关闭，必须重新协商会话。
type StreamClosedError struct {
	Code  int
	Cause error
}

func (e *StreamClosedError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("directline stream closed (code %d): %v", e.Code, e.Cause)
	}
	return fmt.Sprintf("directline stream closed: %v", e.Cause)
}

func (e *StreamClosedError) Unwrap() error { return e.Cause }

// SendError 表示发送的消息被拒绝，调用方可以重试同一轮。
type SendError struct {
	StatusCode int
	Body       string
	Cause      error
}

func (e *SendError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("directline send failed: %v", e.Cause)
	}
	if e.Body != "" {
		return fmt.Sprintf("directline send failed (status %d): %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("directline send failed (status %d)", e.StatusCode)
}

func (e *SendError) Unwrap() error { return e.Cause }
