package directline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/kroy92/copilot-automation-testing/internal/model/directline"
)

// Sender 把一轮用户输入投递到会话。
type Sender struct {
	HTTPClient *http.Client
	BaseURL    string
	Locale     string
	UserID     string
}

// Send posts a single user utterance. A nil error only means the turn was
// accepted into the conversation, not that the bot has replied.
func (s Sender) Send(ctx context.Context, session directline.Session, text string) error {
	payload, err := json.Marshal(directline.OutboundMessage{
		Locale: s.Locale,
		Type:   directline.ActivityTypeMessage,
		From:   directline.ChannelAccount{ID: s.UserID},
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}

	endpoint := fmt.Sprintf("%s/conversations/%s/activities", strings.TrimSuffix(s.BaseURL, "/"), url.PathEscape(session.ConversationID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return &SendError{Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+session.ConversationToken)
	req.Header.Set("Content-Type", "application/json")

	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return &SendError{Cause: err}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return &SendError{StatusCode: resp.StatusCode, Body: readExcerpt(resp.Body)}
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
