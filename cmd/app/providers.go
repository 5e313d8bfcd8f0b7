package main

import (
	"github.com/yanqian/zh-translator/internal/domain/translator"
	"github.com/yanqian/zh-translator/internal/infra/config"
	"github.com/yanqian/zh-translator/internal/infra/llm/chatgpt"
)

func provideTranslatorConfig(cfg *config.Config) translator.Config {
	return translator.Config{
		Model:        cfg.Model.Name,
		Temperature:  cfg.Model.Temperature,
		MaxTokens:    cfg.Model.MaxTokens,
		KeywordCount: cfg.Translation.KeywordCount,
		SystemPrompt: cfg.Translation.SystemPrompt,
	}
}

func provideChatGPTClient(cfg *config.Config) *chatgpt.Client {
	return chatgpt.NewClient(chatgpt.Options{
		APIKey:  cfg.API.Key,
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout(),
	})
}
