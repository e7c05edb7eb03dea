package judge

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// Config 控制语义断言的默认阈值。
type Config struct {
	Threshold float64
}

// Service 通过大模型比较期望文本与实际回复的语义相似度。
type Service struct {
	classifier compose.Runnable[map[string]any, *schema.Message]
	threshold  float64
}

// NewService 编译 prompt -> chat model 链。chatModel 可复用配置中创建的 Ark 模型。
func NewService(ctx context.Context, chatModel model.BaseChatModel, cfg Config) (*Service, error) {
	if chatModel == nil {
		return nil, ErrModelRequired
	}
	if !(cfg.Threshold >= 0 && cfg.Threshold <= 1) {
		return nil, ErrInvalidThreshold
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage(userPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile similarity judge chain: %w", err)
	}

	return &Service{classifier: runnable, threshold: cfg.Threshold}, nil
}

// Threshold returns the configured default threshold.
func (s *Service) Threshold() float64 {
	return s.threshold
}

// Score 请求模型给出 (expected, actual) 的相似度判定。
func (s *Service) Score(ctx context.Context, expected, actual string) (Verdict, error) {
	input := map[string]any{
		"system":   systemPrompt,
		"expected": expected,
		"actual":   actual,
	}

	msg, err := s.classifier.Invoke(ctx, input)
	if err != nil {
		return Verdict{}, fmt.Errorf("judge: invoke chat model: %w", err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return Verdict{}, &ProtocolError{Message: "empty response"}
	}

	verdict, err := parseVerdict(msg.Content)
	if err != nil {
		log.Printf("[judge] failed to parse model output: %v", err)
		return Verdict{}, err
	}
	return verdict, nil
}

// Assert 在分数 >= threshold 时返回分数，否则返回 *AssertionError。
func (s *Service) Assert(ctx context.Context, expected, actual string, threshold float64) (float64, error) {
	if !(threshold >= 0 && threshold <= 1) {
		return 0, ErrInvalidThreshold
	}

	verdict, err := s.Score(ctx, expected, actual)
	if err != nil {
		return 0, err
	}

	log.Printf("[judge] score=%s decision=%s threshold=%s", formatScore(verdict.Score), verdict.Decision, formatScore(threshold))
	return verdict.Score, verdict.Check(expected, actual, threshold)
}

// AssertDefault uses the configured threshold.
func (s *Service) AssertDefault(ctx context.Context, expected, actual string) (float64, error) {
	return s.Assert(ctx, expected, actual, s.threshold)
}
