package directline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/kroy92/copilot-automation-testing/internal/model/directline"
)

// ResultKind tags the outcome of a Receive call.
type ResultKind int

const (
	// ResultTimeout 等待期内没有新的帧，表示“暂时没有更多回复”。
	ResultTimeout ResultKind = iota + 1
	// ResultMessage 收到了至少一条机器人可见文本。
	ResultMessage
	// ResultClosed 流已终止，会话结束。
	ResultClosed
)

func (k ResultKind) String() string {
	switch k {
	case ResultTimeout:
		return "timeout"
	case ResultMessage:
		return "message"
	case ResultClosed:
		return "closed"
	default:
		return fmt.Sprintf("ResultKind(%d)", int(k))
	}
}

// Result is the tagged outcome of Receive.
type Result struct {
	Kind       ResultKind
	Utterances []string
}

// Received reports whether bot utterances were delivered.
func (r Result) Received() bool {
	return r.Kind == ResultMessage
}

// Receiver 从帧源中提取机器人回复。
type Receiver struct {
	source    FrameSource
	assembler Reassembler
	// complete documents not yet handed to a caller
	pending [][]byte
}

// NewReceiver wraps a frame source.
func NewReceiver(source FrameSource) *Receiver {
	return &Receiver{source: source}
}

// Receive 阻塞直到得到一组机器人回复、单帧等待超时或流被关闭。
//
// 超时对每一帧重新计时；只包含非机器人活动的完整文档会被丢弃，循环继续等待。
func (r *Receiver) Receive(ctx context.Context, timeout time.Duration) (Result, error) {
	for {
		for len(r.pending) > 0 {
			doc := r.pending[0]
			r.pending = r.pending[1:]

			utterances, err := extractUtterances(doc)
			if err != nil {
				log.Printf("[directline] discarding malformed activity set: %v", err)
				continue
			}
			if len(utterances) > 0 {
				return Result{Kind: ResultMessage, Utterances: utterances}, nil
			}
		}

		frame, err := r.source.NextFrame(ctx, timeout)
		if err != nil {
			var closed *StreamClosedError
			switch {
			case errors.Is(err, ErrFrameTimeout):
				if r.assembler.Pending() {
					log.Printf("[directline] receive timed out with %d buffered bytes", len(r.assembler.Buffered()))
				}
				return Result{Kind: ResultTimeout}, nil
			case errors.As(err, &closed):
				return Result{Kind: ResultClosed}, err
			default:
				return Result{}, err
			}
		}

		r.pending = append(r.pending, r.assembler.Feed(frame)...)
	}
}

// extractUtterances 逐条解码活动，单条字段类型错误只丢弃该活动。
func extractUtterances(doc []byte) ([]string, error) {
	var set struct {
		Activities []json.RawMessage `json:"activities"`
	}
	if err := json.Unmarshal(doc, &set); err != nil {
		return nil, err
	}

	var out []string
	for i, raw := range set.Activities {
		var activity directline.Activity
		if err := json.Unmarshal(raw, &activity); err != nil {
			log.Printf("[directline] skipping undecodable activity %d: %v", i, err)
			continue
		}
		out = append(out, activity.Utterances()...)
	}
	return out, nil
}
