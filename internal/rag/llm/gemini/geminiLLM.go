package gemini

import (
	"context"
	"errors"
	"sync"

	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/internal/customHttpClient"
	"github.com/akolanti/AviationCompliance/internal/domain/complianceErrors"
	"github.com/akolanti/AviationCompliance/internal/rag/llm"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client          *genai.Client
	modelName       string
	temperature     float32
	maxOutputTokens int32
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once

func GetGeminiClient(ctx context.Context, settings config.ProviderSettings, apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		newGeminiClient(ctx, settings, apikey)
	})

	if geminiClient == nil {
		return nil
	}
	c := *geminiClient
	return &c
}

func newGeminiClient(ctx context.Context, settings config.ProviderSettings, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apikey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: customHttpClient.NewPooledClient(0),
	})
	if err != nil {
		logger.Error("Error creating Gemini client", "error", err)
		return
	}
	geminiClient = &llmClient{
		client:          c,
		modelName:       settings.GeminiModel,
		temperature:     settings.Temperature,
		maxOutputTokens: settings.MaxOutputTokens,
	}
	logger.Info("Gemini client created", "model", settings.GeminiModel)
	go closeClient(ctx)
}

func (c *llmClient) Generate(ctx context.Context, userQuery string, matches []string, messageHistory []string) (string, error) {
	log := logger.WithTrace(ctx, config.TRACE_ID_KEY)

	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: config.ModelContext}},
		},
		Temperature:     genai.Ptr(c.temperature),
		MaxOutputTokens: c.maxOutputTokens,
	}

	result, err := c.client.Models.GenerateContent(
		ctx,
		c.modelName,
		genai.Text(llm.BuildPrompt(userQuery, matches, messageHistory)),
		contentConfig,
	)
	if err != nil {
		log.Error("Gemini generation failed", "error", err)
		return "", complianceErrors.New(complianceErrors.KindGeneration, "gemini generation failed", err)
	}
	text := result.Text()
	if text == "" {
		return "", complianceErrors.New(complianceErrors.KindGeneration, "gemini returned an empty answer", errors.New("no candidates"))
	}
	return text, nil
}

func closeClient(ctx context.Context) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
}
