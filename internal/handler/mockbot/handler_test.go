package mockbot_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kroy92/copilot-automation-testing/internal/handler/mockbot"
	"github.com/kroy92/copilot-automation-testing/internal/model/directline"
	"github.com/kroy92/copilot-automation-testing/internal/service/conversation"
)

func newServer(t *testing.T, chunkSize int) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	mockbot.New(conversation.NewService(), nil, chunkSize).RegisterRoutes(r)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, token string, body any, out any) int {
	t.Helper()

	var reader *strings.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(data))
	} else {
		reader = strings.NewReader("")
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func openConversation(t *testing.T, ts *httptest.Server) directline.ConversationResponse {
	t.Helper()

	var token directline.TokenResponse
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/token", "", nil, &token))
	require.NotEmpty(t, token.Token)

	var conv directline.ConversationResponse
	require.Equal(t, http.StatusCreated, doJSON(t, http.MethodPost, ts.URL+"/v3/directline/conversations", token.Token, nil, &conv))
	return conv
}

func TestStartConversationRequiresIssuedToken(t *testing.T) {
	ts := newServer(t, 0)

	assert.Equal(t, http.StatusUnauthorized, doJSON(t, http.MethodPost, ts.URL+"/v3/directline/conversations", "", nil, nil))

	var body map[string]map[string]string
	assert.Equal(t, http.StatusForbidden, doJSON(t, http.MethodPost, ts.URL+"/v3/directline/conversations", "forged", nil, &body))
	assert.Equal(t, "TokenInvalid", body["error"]["code"])

	conv := openConversation(t, ts)
	assert.NotEmpty(t, conv.ConversationID)
	assert.NotEmpty(t, conv.Token)
	assert.True(t, strings.HasPrefix(conv.StreamURL, "ws://"), conv.StreamURL)
	assert.Contains(t, conv.StreamURL, "/v3/directline/conversations/"+conv.ConversationID+"/stream?t=")
}

func TestPostActivityValidation(t *testing.T) {
	ts := newServer(t, 0)
	conv := openConversation(t, ts)
	activities := ts.URL + "/v3/directline/conversations/" + conv.ConversationID + "/activities"
	message := directline.OutboundMessage{Locale: "en-EN", Type: "message", From: directline.ChannelAccount{ID: "user1"}, Text: "hi"}

	assert.Equal(t, http.StatusUnauthorized, doJSON(t, http.MethodPost, activities, "", message, nil))
	assert.Equal(t, http.StatusForbidden, doJSON(t, http.MethodPost, activities, "wrong", message, nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodPost, ts.URL+"/v3/directline/conversations/missing/activities", conv.Token, message, nil))
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, activities, conv.Token, map[string]string{"text": "no type"}, nil))

	var ack directline.ResourceResponse
	assert.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, activities, conv.Token, message, &ack))
	assert.True(t, strings.HasPrefix(ack.ID, conv.ConversationID+"|"), ack.ID)
}

func TestStreamDeliversChunkedActivitySets(t *testing.T) {
	ts := newServer(t, 16)
	conv := openConversation(t, ts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := ws.Dial(ctx, conv.StreamURL, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	message := directline.OutboundMessage{Locale: "en-EN", Type: "message", From: directline.ChannelAccount{ID: "user1"}, Text: "Hello"}
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost,
		ts.URL+"/v3/directline/conversations/"+conv.ConversationID+"/activities", conv.Token, message, nil))

	// user echo, typing, bot reply
	var sets []directline.ActivitySet
	var buf strings.Builder
	frames := 0
	for len(sets) < 3 {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(data), 16)
		frames++

		buf.Write(data)
		if json.Valid([]byte(buf.String())) {
			var set directline.ActivitySet
			require.NoError(t, json.Unmarshal([]byte(buf.String()), &set))
			sets = append(sets, set)
			buf.Reset()
		}
	}

	assert.Greater(t, frames, 3)
	assert.Equal(t, directline.RoleUser, sets[0].Activities[0].From.Role)
	assert.Equal(t, directline.ActivityTypeTyping, sets[1].Activities[0].Type)
	assert.Equal(t, []string{"Hello! How can I help you today?", "Check my order", "Talk to an agent"}, sets[2].BotUtterances())
}

func TestStreamRejectsWrongToken(t *testing.T) {
	ts := newServer(t, 0)
	conv := openConversation(t, ts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bad := strings.Replace(conv.StreamURL, "t="+conv.Token, "t=wrong", 1)
	_, resp, err := ws.Dial(ctx, bad, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestScriptedResponder(t *testing.T) {
	cases := []struct {
		input string
		want  []string
	}{
		{input: "Hello", want: []string{"Hello! How can I help you today?", "Check my order", "Talk to an agent"}},
		{input: "hi there", want: []string{"Hello! How can I help you today?", "Check my order", "Talk to an agent"}},
		{input: "help", want: []string{"I can greet you and repeat what you say."}},
		{input: "order 42", want: []string{"You said: order 42"}},
		{input: "  ", want: []string{""}},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			replies := mockbot.ScriptedResponder{}.Reply(tc.input)
			require.Len(t, replies, 2)
			assert.Equal(t, directline.ActivityTypeTyping, replies[0].Type)
			assert.Equal(t, tc.want, replies[1].Utterances())
		})
	}
}
