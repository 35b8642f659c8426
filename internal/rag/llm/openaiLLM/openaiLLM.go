package openaiLLM

import (
	"context"

	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/internal/customHttpClient"
	"github.com/akolanti/AviationCompliance/internal/domain/complianceErrors"
	"github.com/akolanti/AviationCompliance/internal/rag/llm"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type client struct {
	api             openai.Client
	model           string
	temperature     float64
	maxOutputTokens int64
	logger          *logger_i.Logger
}

func NewOpenAIProvider(settings config.ProviderSettings, apiKey string, opts ...option.RequestOption) llm.Provider {
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(customHttpClient.NewPooledClient(0)),
	}
	return &client{
		api:             openai.NewClient(append(base, opts...)...),
		model:           settings.OpenAIChatModel,
		temperature:     float64(settings.Temperature),
		maxOutputTokens: int64(settings.MaxOutputTokens),
		logger:          logger_i.NewLogger("llm_openai"),
	}
}

func (c *client) Generate(ctx context.Context, userQuery string, matches []string, messageHistory []string) (string, error) {
	log := c.logger.WithTrace(ctx, config.TRACE_ID_KEY)

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(config.ModelContext),
			openai.UserMessage(llm.BuildPrompt(userQuery, matches, messageHistory)),
		},
		Temperature: openai.Float(c.temperature),
	}
	if c.maxOutputTokens > 0 {
		params.MaxTokens = openai.Int(c.maxOutputTokens)
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		log.Error("OpenAI generation failed", "error", err)
		return "", complianceErrors.New(complianceErrors.KindGeneration, "openai generation failed", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", complianceErrors.New(complianceErrors.KindGeneration, "openai returned an empty answer", nil)
	}
	return resp.Choices[0].Message.Content, nil
}
