//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/docassist/internal/bootstrap"
	"github.com/yanqian/docassist/internal/domain/qa"
	"github.com/yanqian/docassist/internal/domain/summarizer"
	"github.com/yanqian/docassist/internal/domain/workspace"
	"github.com/yanqian/docassist/internal/infra/config"
	"github.com/yanqian/docassist/internal/infra/inference"
	httpiface "github.com/yanqian/docassist/internal/interface/http"
	"github.com/yanqian/docassist/pkg/logger"
	"github.com/yanqian/docassist/pkg/metrics"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		metrics.NewRecorder,
		provideSummarizerConfig,
		provideQAConfig,
		provideWorkspaceConfig,
		provideInferenceProvider,
		provideDocumentReader,
		provideObjectStorage,
		provideSessionStore,
		provideQueryLogRepository,
		summarizer.NewService,
		qa.NewService,
		workspace.NewService,
		wire.Bind(new(summarizer.Capability), new(*inference.Provider)),
		wire.Bind(new(qa.Capability), new(*inference.Provider)),
		wire.Bind(new(httpiface.WorkspaceService), new(*workspace.Service)),
		wire.Bind(new(httpiface.UsageReporter), new(*inference.Provider)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
