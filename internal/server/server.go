package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/inkwell-labs/cartograph/internal/server/routes"
	"github.com/inkwell-labs/cartograph/internal/util"
	"github.com/inkwell-labs/cartograph/pkg/ai"
	"github.com/inkwell-labs/cartograph/pkg/ai/ollama"
	"github.com/inkwell-labs/cartograph/pkg/ai/openai"
	"github.com/inkwell-labs/cartograph/pkg/graph"
	"github.com/inkwell-labs/cartograph/pkg/logger"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newAIClient()
	if err != nil {
		logger.Fatal("Failed to create model client", "err", err)
	}
	if client == nil {
		logger.Info("No model provider configured, running deterministic-only")
	}

	pipeline, err := graph.NewPipeline(client, pipelineConfig())
	if err != nil {
		logger.Fatal("Invalid pipeline configuration", "err", err)
	}

	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("10M"))

	RegisterRoutes(e, routes.NewHandler(pipeline, client))

	go func() {
		port := util.GetEnvString("PORT", "8080")
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

// pipelineConfig overlays environment tuning onto the default pipeline
// configuration.
func pipelineConfig() graph.Config {
	cfg := graph.DefaultConfig()
	cfg.UseEnhancer = util.GetEnvBool("PIPELINE_USE_ENHANCER", cfg.UseEnhancer)
	cfg.StringSimilarityThreshold = util.GetEnvFloat("PIPELINE_STRING_SIMILARITY", cfg.StringSimilarityThreshold)
	cfg.EmbeddingSimilarityThreshold = util.GetEnvFloat("PIPELINE_EMBEDDING_SIMILARITY", cfg.EmbeddingSimilarityThreshold)
	cfg.MinCooccurrenceWeight = util.GetEnvFloat("PIPELINE_MIN_COOCCURRENCE_WEIGHT", cfg.MinCooccurrenceWeight)
	cfg.MinClassifyWeight = util.GetEnvFloat("PIPELINE_MIN_CLASSIFY_WEIGHT", cfg.MinClassifyWeight)
	cfg.MaxRetries = util.GetEnvInt("PIPELINE_MAX_RETRIES", cfg.MaxRetries)
	cfg.MaxLLMClassifications = util.GetEnvInt("PIPELINE_MAX_LLM_CLASSIFICATIONS", cfg.MaxLLMClassifications)
	return cfg
}

// newAIClient builds the model client selected by AI_PROVIDER. An empty or
// "none" provider yields a nil client, which keeps every model-backed stage
// off.
func newAIClient() (ai.GraphAIClient, error) {
	provider := strings.ToLower(util.GetEnvString("AI_PROVIDER", "none"))
	switch provider {
	case "openai":
		return openai.NewGraphOpenAIClient(openai.NewGraphOpenAIClientParams{
			EmbeddingModel:  util.GetEnvString("AI_EMBEDDING_MODEL", "text-embedding-3-small"),
			ExtractionModel: util.GetEnvString("AI_EXTRACTION_MODEL", "gpt-4o-mini"),
			EmbeddingURL:    util.GetEnv("AI_EMBEDDING_URL"),
			EmbeddingKey:    util.GetEnv("AI_EMBEDDING_KEY"),
			ChatURL:         util.GetEnv("AI_CHAT_URL"),
			ChatKey:         util.GetEnv("AI_CHAT_KEY"),
		}), nil
	case "ollama":
		return ollama.NewGraphOllamaClient(ollama.NewGraphOllamaClientParams{
			EmbeddingModel:        util.GetEnvString("AI_EMBEDDING_MODEL", "nomic-embed-text"),
			ExtractionModel:       util.GetEnvString("AI_EXTRACTION_MODEL", "llama3.1"),
			BaseURL:               util.GetEnv("OLLAMA_BASE_URL"),
			ApiKey:                util.GetEnv("OLLAMA_API_KEY"),
			MaxConcurrentRequests: int64(util.GetEnvInt("OLLAMA_MAX_CONCURRENT_REQUESTS", 2)),
		})
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown AI_PROVIDER %q", provider)
	}
}
