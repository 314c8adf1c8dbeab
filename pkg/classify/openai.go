package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	openai "github.com/sashabaranov/go-openai"

	"github.com/rxtech-lab/argo-agents/internal/types"
	"github.com/rxtech-lab/argo-agents/pkg/errors"
)

const (
	defaultModel = "gpt-4o-mini"

	systemPrompt = "You are a trading analyst. Given recent OHLCV bars and detected " +
		"candlestick patterns for a symbol, respond with a JSON object: " +
		`{"action":"BUY"|"SELL"|"NONE","price":<number>,"confidence":<0..1>,` +
		`"sentiment":<string>,"reasoning":<string>,"keyEvents":[<string>]}. ` +
		"Use NONE when there is no actionable signal."
)

// classification is the JSON shape the model is instructed to return.
type classification struct {
	Action     string   `json:"action"`
	Price      float64  `json:"price"`
	Confidence float64  `json:"confidence"`
	Sentiment  string   `json:"sentiment"`
	Reasoning  string   `json:"reasoning"`
	KeyEvents  []string `json:"keyEvents"`
}

// OpenAIClassifier is a Classifier backed by the OpenAI chat completion API.
type OpenAIClassifier struct {
	client *openai.Client
	model  string
}

// NewOpenAIClassifier creates a classifier with the given API key and model.
// An empty model falls back to the package default.
func NewOpenAIClassifier(apiKey, model string) (*OpenAIClassifier, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidProvider, "openai apiKey is required")
	}

	if model == "" {
		model = defaultModel
	}

	return &OpenAIClassifier{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// Classify implements Classifier.
func (c *OpenAIClassifier) Classify(ctx context.Context, symbol string, bars []types.Bar) (optional.Option[types.TradeSignal], error) {
	prompt, err := buildPrompt(symbol, bars)
	if err != nil {
		return optional.None[types.TradeSignal](), err
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return optional.None[types.TradeSignal](), errors.Wrapf(errors.ErrCodeClassificationFailed, err, "classification call failed for %s", symbol)
	}

	if len(resp.Choices) == 0 {
		return optional.None[types.TradeSignal](), errors.Newf(errors.ErrCodeClassificationFailed, "classification returned no choices for %s", symbol)
	}

	return parseClassification(symbol, resp.Choices[0].Message.Content)
}

func buildPrompt(symbol string, bars []types.Bar) (string, error) {
	encoded, err := json.Marshal(bars)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeClassificationFailed, "failed to encode bars", err)
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "Symbol: %s\n", symbol)
	fmt.Fprintf(&sb, "Recent bars (ascending by time, with detected patterns):\n%s\n", encoded)

	return sb.String(), nil
}

func parseClassification(symbol, content string) (optional.Option[types.TradeSignal], error) {
	var result classification
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return optional.None[types.TradeSignal](), errors.Wrapf(errors.ErrCodeClassificationInvalid, err, "unparseable classification for %s", symbol)
	}

	action := types.SignalAction(strings.ToUpper(result.Action))
	if action != types.SignalActionBuy && action != types.SignalActionSell {
		return optional.None[types.TradeSignal](), nil
	}

	if result.Confidence < 0 || result.Confidence > 1 {
		return optional.None[types.TradeSignal](), errors.Newf(errors.ErrCodeClassificationInvalid, "confidence %v out of range for %s", result.Confidence, symbol)
	}

	signal := types.TradeSignal{
		ID:         uuid.New().String(),
		Symbol:     symbol,
		Action:     action,
		Price:      result.Price,
		Confidence: result.Confidence,
		Time:       time.Now(),
		Source:     types.SignalSourceAnalysis,
		Detail: optional.Some(types.SignalDetail{
			Sentiment: result.Sentiment,
			KeyEvents: result.KeyEvents,
			Reasoning: result.Reasoning,
		}),
	}

	return optional.Some(signal), nil
}
