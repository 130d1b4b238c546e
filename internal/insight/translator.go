package insight

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Translator turns a question into a QuerySpec. Implementations: the
// Anthropic model and the offline keyword fallback.
type Translator interface {
	Translate(ctx context.Context, question string, examples []Example) (QuerySpec, Usage, error)
	Name() string
}

// NewTranslator picks the model translator when a key is configured,
// otherwise the offline heuristic so ask keeps working without network.
func NewTranslator(apiKey, model string, maxTokens int, contextFile string) Translator {
	if apiKey == "" {
		return NewOfflineTranslator()
	}
	return NewModelTranslator(apiKey, model, maxTokens, contextFile)
}

type ModelTranslator struct {
	client       anthropic.Client
	model        string
	maxTokens    int
	systemPrompt string
}

func NewModelTranslator(apiKey, model string, maxTokens int, contextFile string) *ModelTranslator {
	return &ModelTranslator{
		client:       anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:        model,
		maxTokens:    maxTokens,
		systemPrompt: BuildSystemPrompt(LoadDatasetContext(contextFile), time.Now()),
	}
}

func (t *ModelTranslator) Name() string { return "model" }

func (t *ModelTranslator) Translate(ctx context.Context, question string, examples []Example) (QuerySpec, Usage, error) {
	message, err := t.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(t.model),
		MaxTokens: int64(t.maxTokens),
		System: []anthropic.TextBlockParam{
			// The system prompt carries the full dataset context, so cache it.
			{Text: t.systemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildUserPrompt(question, examples))),
		},
	})
	if err != nil {
		return FallbackSpec(), Usage{}, fmt.Errorf("model request: %w", err)
	}

	usage := Usage{
		InputTokens:  message.Usage.InputTokens,
		OutputTokens: message.Usage.OutputTokens,
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			spec, err := ParseSpec(block.Text)
			return spec, usage, err
		}
	}
	return FallbackSpec(), usage, fmt.Errorf("no text content in model response")
}
