package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/internal/data/catalog"
	"github.com/akolanti/AviationCompliance/internal/data/store"
	jobmodel "github.com/akolanti/AviationCompliance/internal/domain/jobModel"
	"github.com/akolanti/AviationCompliance/internal/handlers"
	"github.com/akolanti/AviationCompliance/internal/job"
	"github.com/akolanti/AviationCompliance/internal/mcpTools"
	"github.com/akolanti/AviationCompliance/internal/rag"
	"github.com/akolanti/AviationCompliance/internal/rag/embedding"
	"github.com/akolanti/AviationCompliance/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/AviationCompliance/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/AviationCompliance/internal/rag/ingest"
	"github.com/akolanti/AviationCompliance/internal/rag/llm"
	"github.com/akolanti/AviationCompliance/internal/rag/llm/gemini"
	"github.com/akolanti/AviationCompliance/internal/rag/llm/openaiLLM"
	"github.com/akolanti/AviationCompliance/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/AviationCompliance/internal/reader"
	"github.com/akolanti/AviationCompliance/internal/server"
	"github.com/akolanti/AviationCompliance/internal/worker"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
)

const version = "1.0.0"

var (
	listenAddr        string
	settingsPath      string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	envErr := config.LoadEnv()
	logger_i.Init(logger_i.Options{Production: config.IsProd, Level: config.LogLevel})
	var logger = logger_i.NewLogger("main")
	if envErr != nil {
		logger.Warn("Could not load .env", "err", envErr)
	}

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.StringVar(&settingsPath, "config", config.DefaultSettingsPath, "settings file")
	flag.Parse()

	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		logger.Error("Invalid settings", "path", settingsPath, "err", err)
		os.Exit(1)
	}

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}
	logger.Info("Starting job service")

	jobStore := store.GetRedisJobStore(serviceContext)
	messageStore := store.GetRedisMessageStore(serviceContext)
	if jobStore == nil || messageStore == nil {
		if !config.FALLBACK_REDIS_TO_INTERNALSTORE && config.IsProd {
			logger.Error("Redis stores are offline")
			os.Exit(1)
		}
		logger.Warn("Redis stores are offline, using in-memory stores")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		serviceConfig.MessageStore = store.InitMessageStore()
	} else {
		serviceConfig.JobStore = jobStore
		serviceConfig.MessageStore = messageStore
	}
	service := job.InitJobService(serviceConfig)

	registry := reader.NewDefaultRegistry(settings.Readers, logger_i.NewLogger("reader"))

	docCatalog, err := catalog.Open(settings.Catalog.Path, logger_i.NewLogger("catalog"))
	if err != nil {
		logger.Error("Could not open document catalog", "path", settings.Catalog.Path, "err", err)
		os.Exit(1)
	}
	defer docCatalog.Close()

	vectorDB := qdrantDB.GetQuadrantClient(serviceContext, settings.Retrieval)
	embeddingService, embeddingModel := newEmbedder(serviceContext, settings.Providers)
	llmProvider := newLLM(serviceContext, settings.Providers)

	if vectorDB == nil || embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services", "VectorDB", vectorDB != nil, "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		os.Exit(1)
	}

	pipeline := ingest.NewPipeline(registry, embeddingService, vectorDB, docCatalog, settings.Ingest, embeddingModel)
	ragService := rag.NewService(vectorDB, llmProvider, embeddingService, pipeline)

	handlers.InitJobHandler(service)
	handlers.InitDocumentHandler(registry, docCatalog, settings.Ingest.UploadDir)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	mcpHandler := mcpTools.HTTPHandler(mcpTools.NewServer(registry, version, logger_i.NewLogger("mcp")))

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr, mcpHandler)

	<-stopExecution
	logger.Info("Server stopped")
}

func newEmbedder(ctx context.Context, providers config.ProviderSettings) (embedding.Embedder, string) {
	if providers.Embedding == config.ProviderOpenAI {
		return openaiEmbedding.NewOpenAIEmbedder(config.OpenAIAPIKey, providers.OpenAIEmbeddingModel), providers.OpenAIEmbeddingModel
	}
	return googleEmbedding.GetGoogleEmbeddingClient(ctx, providers.GoogleEmbeddingModel, config.GoogleEmbeddingAPIKey), providers.GoogleEmbeddingModel
}

func newLLM(ctx context.Context, providers config.ProviderSettings) llm.Provider {
	if providers.LLM == config.ProviderOpenAI {
		return openaiLLM.NewOpenAIProvider(providers, config.OpenAIAPIKey)
	}
	return gemini.GetGeminiClient(ctx, providers, config.GoogleEmbeddingAPIKey)
}
