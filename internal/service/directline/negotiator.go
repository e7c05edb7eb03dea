package directline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/kroy92/copilot-automation-testing/internal/model/directline"
)

const (
	stageToken        = "token"
	stageConversation = "conversation"

	bodyExcerptLimit = 512
)

// Negotiator 用引导令牌换取会话身份并打开流连接。
type Negotiator struct {
	HTTPClient       *http.Client
	BaseURL          string
	HandshakeTimeout time.Duration
}

// Negotiate exchanges the bootstrap credential for a conversation and dials
// its stream. On success the caller owns the returned stream.
func (n Negotiator) Negotiate(ctx context.Context, bootstrapEndpoint string) (directline.Session, *Stream, error) {
	token, err := n.fetchToken(ctx, bootstrapEndpoint)
	if err != nil {
		return directline.Session{}, nil, err
	}

	conversation, err := n.startConversation(ctx, token)
	if err != nil {
		return directline.Session{}, nil, err
	}

	session := directline.Session{
		IdentityToken:     token,
		ConversationID:    conversation.ConversationID,
		ConversationToken: conversation.Token,
		StreamURL:         conversation.StreamURL,
	}

	stream, err := DialStream(ctx, session.StreamURL, n.HandshakeTimeout)
	if err != nil {
		return directline.Session{}, nil, err
	}

	log.Printf("[directline] conversation %s started", session.ConversationID)
	return session, stream, nil
}

func (n Negotiator) fetchToken(ctx context.Context, endpoint string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", &AuthError{Stage: stageToken, Message: "invalid token endpoint", Cause: err}
	}

	resp, err := n.client().Do(req)
	if err != nil {
		return "", &AuthError{Stage: stageToken, Cause: err}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return "", &AuthError{Stage: stageToken, StatusCode: resp.StatusCode, Message: readExcerpt(resp.Body)}
	}

	var payload directline.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", &AuthError{Stage: stageToken, Message: "undecodable token response", Cause: err}
	}
	if strings.TrimSpace(payload.Token) == "" {
		return "", &AuthError{Stage: stageToken, Message: "response has no token"}
	}
	return payload.Token, nil
}

func (n Negotiator) startConversation(ctx context.Context, token string) (directline.ConversationResponse, error) {
	url := strings.TrimSuffix(n.BaseURL, "/") + "/conversations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return directline.ConversationResponse{}, &AuthError{Stage: stageConversation, Message: "invalid base url", Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client().Do(req)
	if err != nil {
		return directline.ConversationResponse{}, &AuthError{Stage: stageConversation, Cause: err}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return directline.ConversationResponse{}, &AuthError{Stage: stageConversation, StatusCode: resp.StatusCode, Message: readExcerpt(resp.Body)}
	}

	var payload directline.ConversationResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return directline.ConversationResponse{}, &ProtocolError{Message: "undecodable conversation response", Cause: err}
	}

	var missing []string
	if payload.ConversationID == "" {
		missing = append(missing, "conversationId")
	}
	if payload.Token == "" {
		missing = append(missing, "token")
	}
	if payload.StreamURL == "" {
		missing = append(missing, "streamUrl")
	}
	if len(missing) > 0 {
		return directline.ConversationResponse{}, &ProtocolError{Message: "conversation response missing " + strings.Join(missing, ", ")}
	}

	return payload, nil
}

func (n Negotiator) client() *http.Client {
	if n.HTTPClient != nil {
		return n.HTTPClient
	}
	return http.DefaultClient
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func readExcerpt(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, bodyExcerptLimit))
	if err != nil && !errors.Is(err, io.EOF) {
		return ""
	}
	return strings.TrimSpace(string(data))
}
