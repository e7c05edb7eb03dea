package mockbot

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	ws "github.com/coder/websocket"
	"github.com/go-chi/chi/v5"

	"github.com/kroy92/copilot-automation-testing/internal/model/directline"
	"github.com/kroy92/copilot-automation-testing/pkg/utils"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

// handleStream 升级为 WebSocket 并推送会话中的活动集合
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	token := r.URL.Query().Get("t")
	if token == "" {
		token, _ = utils.BearerToken(r)
	}
	if _, err := h.conversations.Authorize(r.Context(), conversationID, token); err != nil {
		respondConversationError(w, err)
		return
	}

	sets, cancel, err := h.conversations.Subscribe(r.Context(), conversationID)
	if err != nil {
		respondConversationError(w, err)
		return
	}
	defer cancel()

	conn, err := ws.Accept(w, r, &ws.AcceptOptions{
		InsecureSkipVerify: true,
		CompressionMode:    ws.CompressionDisabled,
	})
	if err != nil {
		log.Printf("[mockbot] websocket accept failed: %v", err)
		return
	}
	defer conn.CloseNow()

	log.Printf("[mockbot] stream opened for conversation %s", conversationID)

	// CloseRead 处理控制帧，客户端关闭连接时 ctx 会被取消。
	ctx := conn.CloseRead(r.Context())

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[mockbot] stream closed for conversation %s", conversationID)
			return
		case set, ok := <-sets:
			if !ok {
				_ = conn.Close(ws.StatusNormalClosure, "conversation ended")
				return
			}
			if err := h.writeSet(ctx, conn, set); err != nil {
				if !errors.Is(err, context.Canceled) {
					log.Printf("[mockbot] stream write failed: %v", err)
				}
				return
			}
		case <-ticker.C:
			pingCtx, cancelPing := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pingCtx)
			cancelPing()
			if err != nil {
				log.Printf("[mockbot] ping failed: %v", err)
				return
			}
		}
	}
}

// writeSet 序列化活动集合，按 chunkSize 拆分后逐帧写出。
func (h *Handler) writeSet(ctx context.Context, conn *ws.Conn, set directline.ActivitySet) error {
	payload, err := json.Marshal(set)
	if err != nil {
		return err
	}

	for _, frame := range utils.SplitFrames(payload, h.chunkSize) {
		writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
		err := conn.Write(writeCtx, ws.MessageText, frame)
		cancel()
		if err != nil {
			return err
		}
	}
	return nil
}
