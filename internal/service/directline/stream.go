package directline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrFrameTimeout 表示在等待时间内没有收到任何帧。
var ErrFrameTimeout = errors.New("directline: no frame received before timeout")

// FrameSource 按顺序交付流上的原始帧。
type FrameSource interface {
	// NextFrame blocks until a frame arrives, timeout elapses (ErrFrameTimeout)
	// or the stream ends (*StreamClosedError).
	NextFrame(ctx context.Context, timeout time.Duration) (string, error)
	Close() error
}

const (
	frameBacklog      = 16
	closeWriteTimeout = time.Second
)

// Stream 封装到 streamUrl 的 WebSocket 连接。
//
// gorilla/websocket 的读超时会破坏连接状态，因此读取由单独的 pump
// 协程完成，NextFrame 只在通道上等待，超时不会影响后续读取。
type Stream struct {
	conn   *websocket.Conn
	frames chan []byte
	done   chan struct{}

	// err is written by the pump before frames is closed.
	err       error
	closeOnce sync.Once
}

// DialStream 建立流连接并启动读取协程。
func DialStream(ctx context.Context, url string, handshakeTimeout time.Duration) (*Stream, error) {
	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: handshakeTimeout,
	}

	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return nil, &ConnectionError{URL: url, StatusCode: status, Cause: err}
	}

	return newStream(conn), nil
}

func newStream(conn *websocket.Conn) *Stream {
	s := &Stream{
		conn:   conn,
		frames: make(chan []byte, frameBacklog),
		done:   make(chan struct{}),
	}
	go s.readPump()
	return s
}

// readPump 持续读取帧直到连接出错或被关闭。
func (s *Stream) readPump() {
	defer close(s.frames)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.err = err
			return
		}

		select {
		case s.frames <- data:
		case <-s.done:
			s.err = errors.New("stream closed by client")
			return
		}
	}
}

// NextFrame 等待下一帧，每次调用都重新计时。
func (s *Stream) NextFrame(ctx context.Context, timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case data, ok := <-s.frames:
		if !ok {
			return "", closedError(s.err)
		}
		return string(data), nil
	case <-timer.C:
		return "", ErrFrameTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close 发送正常关闭帧并释放底层连接，可重复调用。
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteTimeout))
		if cerr := s.conn.Close(); cerr != nil {
			err = fmt.Errorf("close stream: %w", cerr)
		}
	})
	return err
}

func closedError(err error) *StreamClosedError {
	if err == nil {
		err = errors.New("stream ended")
	}
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return &StreamClosedError{Code: closeErr.Code, Cause: err}
	}
	return &StreamClosedError{Cause: err}
}
