package mockbot

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/kroy92/copilot-automation-testing/internal/model/directline"
	conversationService "github.com/kroy92/copilot-automation-testing/internal/service/conversation"
	"github.com/kroy92/copilot-automation-testing/pkg/utils"
)

const tokenLifetimeSeconds = 3600

// Handler 模拟 Direct Line v3 服务的 HTTP 处理器
type Handler struct {
	conversations *conversationService.Service
	responder     Responder
	chunkSize     int
}

// New 创建模拟机器人处理器；chunkSize > 0 时流上的文档会被切分成多帧发送。
func New(conversations *conversationService.Service, responder Responder, chunkSize int) *Handler {
	if responder == nil {
		responder = ScriptedResponder{}
	}
	return &Handler{
		conversations: conversations,
		responder:     responder,
		chunkSize:     chunkSize,
	}
}

// RegisterRoutes 注册 Direct Line 路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/token", h.handleToken)
	r.Route("/v3/directline/conversations", func(conv chi.Router) {
		conv.Post("/", h.handleStartConversation)
		conv.Post("/{conversationID}/activities", h.handlePostActivity)
		conv.Get("/{conversationID}/stream", h.handleStream)
	})
}

// handleToken 颁发引导令牌
func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	token := h.conversations.IssueToken(r.Context())
	utils.RespondJSON(w, http.StatusOK, directline.TokenResponse{Token: token, ExpiresIn: tokenLifetimeSeconds})
}

// handleStartConversation 开启会话并返回流地址
func (h *Handler) handleStartConversation(w http.ResponseWriter, r *http.Request) {
	token, ok := utils.BearerToken(r)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "MissingToken", "bearer token is required")
		return
	}

	record, err := h.conversations.Start(r.Context(), token)
	if err != nil {
		utils.RespondError(w, http.StatusForbidden, "TokenInvalid", err.Error())
		return
	}

	log.Printf("[mockbot] conversation %s started", record.ID)
	utils.RespondJSON(w, http.StatusCreated, directline.ConversationResponse{
		ConversationID: record.ID,
		Token:          record.Token,
		StreamURL:      streamURL(r, record),
		ExpiresIn:      tokenLifetimeSeconds,
	})
}

// handlePostActivity 保存用户消息并触发机器人回复
func (h *Handler) handlePostActivity(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	token, ok := utils.BearerToken(r)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "MissingToken", "bearer token is required")
		return
	}
	if _, err := h.conversations.Authorize(r.Context(), conversationID, token); err != nil {
		respondConversationError(w, err)
		return
	}

	var payload directline.OutboundMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "BadArgument", "invalid request body")
		return
	}
	if payload.Type == "" {
		utils.RespondError(w, http.StatusBadRequest, "BadArgument", "activity type is required")
		return
	}

	inbound := directline.Activity{
		Type:   payload.Type,
		Locale: payload.Locale,
		From:   directline.ChannelAccount{ID: payload.From.ID, Role: directline.RoleUser},
		Text:   payload.Text,
	}
	id, err := h.conversations.Post(r.Context(), conversationID, inbound)
	if err != nil {
		respondConversationError(w, err)
		return
	}

	if payload.Type == directline.ActivityTypeMessage {
		for _, reply := range h.responder.Reply(payload.Text) {
			if _, err := h.conversations.Post(r.Context(), conversationID, reply); err != nil {
				log.Printf("[mockbot] failed to post reply to %s: %v", conversationID, err)
				break
			}
		}
	}

	utils.RespondJSON(w, http.StatusOK, directline.ResourceResponse{ID: id})
}

func respondConversationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, conversationService.ErrConversationNotFound):
		utils.RespondError(w, http.StatusNotFound, "BadArgument", err.Error())
	case errors.Is(err, conversationService.ErrTokenMismatch):
		utils.RespondError(w, http.StatusForbidden, "TokenInvalid", err.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, "ServiceError", err.Error())
	}
}

// streamURL 根据请求的主机名构造流地址，令牌通过查询参数 t 携带。
func streamURL(r *http.Request, record directline.Conversation) string {
	scheme := "ws"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "wss"
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     "/v3/directline/conversations/" + record.ID + "/stream",
		RawQuery: url.Values{"t": {record.Token}}.Encode(),
	}
	return u.String()
}
