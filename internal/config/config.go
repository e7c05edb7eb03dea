package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// DefaultDirectLineBaseURL 是 Bot Framework Direct Line v3 的公共入口。
const DefaultDirectLineBaseURL = "https://directline.botframework.com/v3/directline"

// DefaultJudgeThreshold 语义断言的默认阈值。
const DefaultJudgeThreshold = 0.75

// Config 聚合测试客户端、语义评估与本地模拟机器人的配置。
type Config struct {
	DirectLine DirectLineConfig
	AI         AIConfig
	Server     ServerConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	directLine, err := loadDirectLineConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	return &Config{DirectLine: directLine, AI: ai, Server: server}, nil
}

// DirectLineConfig 描述被测机器人的连接参数。
type DirectLineConfig struct {
	TokenEndpoint    string
	BaseURL          string
	Locale           string
	UserID           string
	ReceiveTimeout   time.Duration
	HandshakeTimeout time.Duration
	HTTPTimeout      time.Duration
}

// Enabled 表示是否配置了令牌端点。
func (c DirectLineConfig) Enabled() bool {
	return c.TokenEndpoint != ""
}

func loadDirectLineConfig() (DirectLineConfig, error) {
	receive, err := parseSecondsEnv("BOT_RECEIVE_TIMEOUT", 20*time.Second)
	if err != nil {
		return DirectLineConfig{}, err
	}

	handshake, err := parseSecondsEnv("BOT_HANDSHAKE_TIMEOUT", 30*time.Second)
	if err != nil {
		return DirectLineConfig{}, err
	}

	httpTimeout, err := parseSecondsEnv("BOT_HTTP_TIMEOUT", 30*time.Second)
	if err != nil {
		return DirectLineConfig{}, err
	}

	endpoint := strings.TrimSpace(os.Getenv("BOT_TOKEN_ENDPOINT"))
	if endpoint == "" {
		// 兼容旧脚本使用的变量名
		endpoint = strings.TrimSpace(os.Getenv("PERFORMANCE_BOT_ENDPOINT"))
	}

	return DirectLineConfig{
		TokenEndpoint:    endpoint,
		BaseURL:          strings.TrimSuffix(getEnvOrDefault("DIRECTLINE_BASE_URL", DefaultDirectLineBaseURL), "/"),
		Locale:           getEnvOrDefault("BOT_LOCALE", "en-EN"),
		UserID:           getEnvOrDefault("BOT_USER_ID", "user1"),
		ReceiveTimeout:   receive,
		HandshakeTimeout: handshake,
		HTTPTimeout:      httpTimeout,
	}, nil
}

// AIConfig 描述语义评估所用大模型的配置。
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
	Threshold   float64
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + ARK_MODEL 或 AK/SK 组合")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}
	if temperature == nil {
		// 评估需要稳定输出
		zero := 0.0
		temperature = &zero
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	threshold := DefaultJudgeThreshold
	if override, err := parseOptionalFloatEnv("JUDGE_THRESHOLD"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		if *override < 0 || *override > 1 {
			return AIConfig{}, fmt.Errorf("invalid JUDGE_THRESHOLD value %v: must be within [0,1]", *override)
		}
		threshold = *override
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
		Threshold:   threshold,
	}, nil
}

// ServerConfig 描述模拟机器人服务的配置。
type ServerConfig struct {
	Addr      string
	ChunkSize int
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	chunk, err := parseOptionalIntEnv("MOCKBOT_CHUNK_SIZE")
	if err != nil {
		return ServerConfig{}, err
	}
	chunkSize := 0
	if chunk != nil && *chunk > 0 {
		chunkSize = *chunk
	}

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port, ChunkSize: chunkSize}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, ChunkSize: chunkSize}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// parseSecondsEnv 接受整数秒或 Go duration 字符串（如 "1500ms"）。
func parseSecondsEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds <= 0 {
			return 0, fmt.Errorf("invalid %s value %q: must be positive", key, value)
		}
		return time.Duration(seconds) * time.Second, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: must be positive", key, value)
	}
	return d, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
