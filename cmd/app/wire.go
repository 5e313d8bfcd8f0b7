//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/zh-translator/internal/bootstrap"
	"github.com/yanqian/zh-translator/internal/domain/translator"
	"github.com/yanqian/zh-translator/internal/infra/config"
	"github.com/yanqian/zh-translator/internal/infra/llm/chatgpt"
	httpiface "github.com/yanqian/zh-translator/internal/interface/http"
	"github.com/yanqian/zh-translator/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideTranslatorConfig,
		provideChatGPTClient,
		translator.NewService,
		wire.Bind(new(translator.ChatClient), new(*chatgpt.Client)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
