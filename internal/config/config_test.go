package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"BOT_TOKEN_ENDPOINT", "PERFORMANCE_BOT_ENDPOINT", "DIRECTLINE_BASE_URL", "BOT_LOCALE",
		"BOT_USER_ID", "BOT_RECEIVE_TIMEOUT", "BOT_HANDSHAKE_TIMEOUT", "BOT_HTTP_TIMEOUT",
		"JUDGE_THRESHOLD", "ARK_TEMPERATURE", "ARK_MODEL", "ARK_API_KEY", "PORT", "MOCKBOT_CHUNK_SIZE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.DirectLine.Enabled())
	assert.Equal(t, DefaultDirectLineBaseURL, cfg.DirectLine.BaseURL)
	assert.Equal(t, "en-EN", cfg.DirectLine.Locale)
	assert.Equal(t, "user1", cfg.DirectLine.UserID)
	assert.Equal(t, 20*time.Second, cfg.DirectLine.ReceiveTimeout)
	assert.Equal(t, DefaultJudgeThreshold, cfg.AI.Threshold)
	require.NotNil(t, cfg.AI.Temperature)
	assert.Zero(t, *cfg.AI.Temperature)
	assert.False(t, cfg.AI.Enabled())
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Zero(t, cfg.Server.ChunkSize)
}

func TestLoadDirectLineOverrides(t *testing.T) {
	t.Setenv("BOT_TOKEN_ENDPOINT", "")
	t.Setenv("PERFORMANCE_BOT_ENDPOINT", "https://bots.example.com/token")
	t.Setenv("DIRECTLINE_BASE_URL", "http://127.0.0.1:9000/v3/directline/")
	t.Setenv("BOT_RECEIVE_TIMEOUT", "1500ms")
	t.Setenv("BOT_HANDSHAKE_TIMEOUT", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.DirectLine.Enabled())
	assert.Equal(t, "https://bots.example.com/token", cfg.DirectLine.TokenEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000/v3/directline", cfg.DirectLine.BaseURL)
	assert.Equal(t, 1500*time.Millisecond, cfg.DirectLine.ReceiveTimeout)
	assert.Equal(t, 5*time.Second, cfg.DirectLine.HandshakeTimeout)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		key   string
		value string
	}{
		{key: "BOT_RECEIVE_TIMEOUT", value: "soon"},
		{key: "BOT_RECEIVE_TIMEOUT", value: "-3"},
		{key: "JUDGE_THRESHOLD", value: "1.5"},
		{key: "JUDGE_THRESHOLD", value: "high"},
		{key: "PORT", value: "80 80"},
		{key: "MOCKBOT_CHUNK_SIZE", value: "big"},
	}

	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestAIConfigEnabled(t *testing.T) {
	cases := []struct {
		name string
		cfg  AIConfig
		want bool
	}{
		{name: "api key", cfg: AIConfig{Model: "ep-1", APIKey: "k"}, want: true},
		{name: "ak/sk", cfg: AIConfig{Model: "ep-1", AccessKey: "a", SecretKey: "s"}, want: true},
		{name: "missing model", cfg: AIConfig{APIKey: "k"}, want: false},
		{name: "half ak/sk", cfg: AIConfig{Model: "ep-1", AccessKey: "a"}, want: false},
	}

	for _, tc := range cases {
		if got := tc.cfg.Enabled(); got != tc.want {
			t.Errorf("%s: Enabled() = %v, want %v", tc.name, got, tc.want)
		}
	}
}
