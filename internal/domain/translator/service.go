package translator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yanqian/zh-translator/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/zh-translator/pkg/errors"
	"github.com/yanqian/zh-translator/pkg/metrics"
)

// Error codes surfaced to the transport layer.
const (
	CodeInvalidInput  = "invalid_input"
	CodeMisconfigured = "misconfigured"
	CodeUpstream      = "upstream_error"
	CodeFailed        = "translate_failed"
)

// Service exposes Chinese to English translation with keyword extraction.
type Service interface {
	Translate(ctx context.Context, req Request) (Response, error)
}

type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

type service struct {
	cfg    Config
	client ChatClient
	logger *slog.Logger
}

// NewService is a wire provider for the translator domain.
func NewService(cfg Config, client ChatClient, logger *slog.Logger) Service {
	return &service{cfg: cfg, client: client, logger: logger.With("component", "translator.service")}
}

func (s *service) Translate(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.Text) == "" {
		return Response{}, apperrors.Wrap(CodeInvalidInput, "text cannot be empty", nil)
	}

	resp, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Messages:    s.buildMessages(req.Text),
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		return Response{}, classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, apperrors.Wrap(CodeFailed, "translation failed", errors.New("chat completion returned no choices"))
	}
	if resp.Usage != nil {
		s.logger.Debug("chat completion usage", "model", s.cfg.Model, "usage", metrics.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		})
	}

	content := cleanReply(resp.Choices[0].Message.Content)
	s.logger.Debug("chat completion received", "content", content)

	parsed, err := parseReply(content)
	if err != nil {
		s.logger.Warn("reply is not valid json, returning raw text", "error", err)
		return degradedReply(content), nil
	}
	return parsed, nil
}

func classifyError(err error) error {
	if errors.Is(err, chatgpt.ErrMissingAPIKey) {
		return apperrors.Wrap(CodeMisconfigured, "service misconfigured", err)
	}
	var apiErr *chatgpt.APIError
	if errors.As(err, &apiErr) {
		return apperrors.Wrap(CodeUpstream, "upstream request failed", err)
	}
	return apperrors.Wrap(CodeFailed, "translation failed", err)
}

func (s *service) buildMessages(text string) []chatgpt.Message {
	return []chatgpt.Message{
		{Role: "system", Content: s.cfg.SystemPrompt},
		{Role: "user", Content: buildPrompt(text, s.cfg.KeywordCount)},
	}
}

func buildPrompt(text string, keywordCount int) string {
	placeholders := make([]string, 0, keywordCount)
	for i := 1; i <= keywordCount; i++ {
		placeholders = append(placeholders, fmt.Sprintf("%q", fmt.Sprintf("关键词%d", i)))
	}
	return fmt.Sprintf("请将以下中文翻译成英文，并提取%d个关键词。\n\n要翻译的中文内容：\n%s\n\n请严格按照以下JSON格式返回结果，不要添加任何其他内容：\n{\"translation\": \"英文翻译结果\", \"keywords\": [%s]}\n",
		keywordCount, text, strings.Join(placeholders, ", "))
}
