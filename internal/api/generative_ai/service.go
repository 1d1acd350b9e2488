package generativeAI

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-event-scout/app/observability/metrics"
	"github.com/FACorreiaa/go-event-scout/config"
	"github.com/FACorreiaa/go-event-scout/internal/types"
)

// Judge is the language-model collaborator used identically for scoring and
// for follow-up answers: one blocking round-trip, free text in and out. No
// structured output support is assumed; callers recover structure themselves.
type Judge interface {
	Complete(ctx context.Context, systemInstructions string, history types.ConversationLog, temperature float32) (string, error)
}

// Ensure implementation satisfies the interface
var _ Judge = (*AIClient)(nil)

// AIClient wraps the Gemini client. The API key is injected by the caller,
// never read from ambient process state here.
type AIClient struct {
	client    *genai.Client
	model     string
	maxTokens int32
	timeout   time.Duration
}

func NewAIClient(ctx context.Context, cfg *config.Config, apiKey string) (*AIClient, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "NewAIClient")
	defer span.End()

	if apiKey == "" {
		err := fmt.Errorf("judge API key is not set")
		span.RecordError(err)
		span.SetStatus(codes.Error, "API key not set")
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create Gemini client")
		return nil, err
	}

	span.SetStatus(codes.Ok, "AI client created successfully")
	return &AIClient{
		client:    client,
		model:     cfg.Judge.Model,
		maxTokens: cfg.Judge.MaxOutputTokens,
		timeout:   cfg.Judge.Timeout,
	}, nil
}

// Complete runs one blocking generation round-trip over the given history.
// The history roles map onto the model's chat roles; system instructions ride
// in the dedicated config slot.
func (ai *AIClient) Complete(ctx context.Context, systemInstructions string, history types.ConversationLog, temperature float32) (string, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "Complete", trace.WithAttributes(
		attribute.Int("history.length", len(history)),
		attribute.String("model", ai.model),
	))
	defer span.End()

	if ai.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ai.timeout)
		defer cancel()
	}

	metrics.Get().JudgeCallsTotal.Add(ctx, 1)

	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := genai.RoleUser
		if msg.Role == types.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](temperature),
		MaxOutputTokens:   ai.maxTokens,
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstructions}}},
	}

	result, err := ai.client.Models.GenerateContent(ctx, ai.model, contents, genConfig)
	if err != nil {
		metrics.Get().JudgeErrorsTotal.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to generate content")
		return "", fmt.Errorf("judge call failed: %w", err)
	}

	responseText := result.Text()
	if responseText == "" {
		metrics.Get().JudgeErrorsTotal.Add(ctx, 1)
		err := fmt.Errorf("judge returned no content")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Empty response")
		return "", err
	}

	span.SetAttributes(attribute.Int("response.length", len(responseText)))
	span.SetStatus(codes.Ok, "Content generated successfully")
	return responseText, nil
}
