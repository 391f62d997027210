package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/shenikar/resqnet/internal/triage"
)

const openAIName = "openai"

const systemPrompt = `You are a disaster damage assessment assistant. Look at the photo and reply with a JSON object:
{"damage_detected": bool, "damage_types": [string], "confidence": number between 0 and 1, "summary": string}.
Use snake_case damage types such as structure_fire, flooded_roads, infrastructure_collapse, collapsed_building, road_block.
Return an empty list when there is no visible damage. Keep the summary to one sentence.`

// OpenAIOptions - параметры клиента модели с поддержкой изображений
type OpenAIOptions struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAIAnalyzer отправляет изображение в чат-модель и разбирает JSON-ответ
type OpenAIAnalyzer struct {
	client *openai.Client
	model  string
}

func NewOpenAIAnalyzer(opts OpenAIOptions) *OpenAIAnalyzer {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	model := opts.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIAnalyzer{client: openai.NewClientWithConfig(cfg), model: model}
}

func (a *OpenAIAnalyzer) Name() string {
	return openAIName
}

type modelAnswer struct {
	DamageDetected bool     `json:"damage_detected"`
	DamageTypes    []string `json:"damage_types"`
	Confidence     float64  `json:"confidence"`
	Summary        string   `json:"summary"`
}

func (a *OpenAIAnalyzer) Analyze(ctx context.Context, image []byte) (Result, error) {
	contentType := http.DetectContentType(image)
	if !strings.HasPrefix(contentType, "image/") {
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedImage, contentType)
	}
	dataURL := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: "Assess the damage in this field report photo."},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
						URL:    dataURL,
						Detail: openai.ImageURLDetailLow,
					}},
				},
			},
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("vision: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, errors.New("vision: empty model response")
	}

	return parseAnswer(resp.Choices[0].Message.Content)
}

func parseAnswer(content string) (Result, error) {
	var ans modelAnswer
	if err := json.Unmarshal([]byte(content), &ans); err != nil {
		return Result{}, fmt.Errorf("vision: malformed model answer: %w", err)
	}

	types := make([]string, 0, len(ans.DamageTypes))
	for _, t := range ans.DamageTypes {
		if t = normalizeTag(t); t != "" {
			types = append(types, t)
		}
	}

	return Result{
		Assessment: triage.DamageAssessment{
			DamageDetected: ans.DamageDetected || len(types) > 0,
			DamageTypes:    types,
			Confidence:     min(max(ans.Confidence, 0), 1),
		},
		Summary:  strings.TrimSpace(ans.Summary),
		Analyzer: openAIName,
	}, nil
}
