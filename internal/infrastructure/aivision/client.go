package aivision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/jumo/backend/internal/domain"
)

const estimationPrompt = "Estimate the per 100g nutritional breakdown, the portion size and an absolute nutritional breakdown of the food in this image. " +
	"Respond with a JSON object: {\"success\": bool, \"reason\": string, \"data\": {\"name\": string, \"description\": string, \"notes\": string, " +
	"\"nutritionPer100g\": {\"energy\": number, \"energyUnit\": \"kcal\", \"carbohydrates\": number, \"carbohydratesUnit\": \"g\", \"proteins\": number, \"proteinsUnit\": \"g\", " +
	"\"fats\": number, \"fatsUnit\": \"g\", \"salt\": number, \"saltUnit\": \"g\", \"sugar\": number, \"sugarUnit\": \"g\", \"fiber\": number, \"fiberUnit\": \"g\", " +
	"\"saturatedFat\": number, \"saturatedFatUnit\": \"g\", \"sodium\": number, \"sodiumUnit\": \"mg\", \"alcohol\": number, \"alcoholUnit\": \"g\"}, " +
	"\"estimatedPortionSize\": number, \"estimatedPortionSizeUnit\": \"g\"}}. " +
	"If the image is not of food, return success false with a reason."

const nutritionistPrompt = "Your name is Jumo. You are a professional nutritionist and health expert, offering advice on personal health. " +
	"For any other questions or topic, you are to provide a generic response in the lines of 'I am unable to answer such questions.'"

// Client runs food photo estimations against an OpenAI-compatible vision
// model. It implements domain.VisionEstimator.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
	log        zerolog.Logger
}

// NewClient creates a vision client.
func NewClient(apiKey, baseURL, model string, log zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		log:     log,
	}
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// estimationPayload is the model's structured answer.
type estimationPayload struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason"`
	Data    *struct {
		Name                     string         `json:"name"`
		Description              string         `json:"description"`
		Notes                    string         `json:"notes"`
		NutritionPer100g         map[string]any `json:"nutritionPer100g"`
		EstimatedPortionSize     float64        `json:"estimatedPortionSize"`
		EstimatedPortionSizeUnit string         `json:"estimatedPortionSizeUnit"`
	} `json:"data"`
}

// completion runs one chat completion and returns the first choice's
// message content. Transport and provider-side failures come back as
// ErrProviderTransport.
func (c *Client) completion(ctx context.Context, request chatRequest) (string, error) {
	reqBody, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrProviderTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.log.Warn().Int("status", resp.StatusCode).Bytes("body", body).Msg("model error response")
		return "", fmt.Errorf("%w: status %d", domain.ErrProviderTransport, resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("%w: decode: %v", domain.ErrProviderTransport, err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", domain.ErrProviderTransport)
	}

	return chatResp.Choices[0].Message.Content, nil
}

// Estimate sends the photo to the vision model and decodes its
// structured estimation.
func (c *Client) Estimate(ctx context.Context, image []byte, contentType string) (*domain.VisionEstimate, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(image))

	content, err := c.completion(ctx, chatRequest{
		Model: c.model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: estimationPrompt},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
			},
		}},
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}

	var payload estimationPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("%w: estimation decode: %v", domain.ErrProviderTransport, err)
	}

	estimate := &domain.VisionEstimate{
		Success: payload.Success,
		Reason:  payload.Reason,
		Raw:     json.RawMessage(content),
	}
	if payload.Success && payload.Data != nil {
		estimate.Name = payload.Data.Name
		estimate.Description = payload.Data.Description
		estimate.Notes = payload.Data.Notes
		estimate.PortionSize = payload.Data.EstimatedPortionSize
		estimate.PortionSizeUnit = payload.Data.EstimatedPortionSizeUnit
		estimate.NutritionPer100g = payload.Data.NutritionPer100g
	}
	return estimate, nil
}

// Chat answers a nutritionist conversation under the Jumo persona. The
// system prompt keeps the model on nutrition and health topics. It
// implements domain.NutritionAssistant.
func (c *Client) Chat(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	chatMessages := make([]chatMessage, 0, len(messages)+1)
	chatMessages = append(chatMessages, chatMessage{
		Role:    "system",
		Content: []contentPart{{Type: "text", Text: nutritionistPrompt}},
	})
	for _, message := range messages {
		chatMessages = append(chatMessages, chatMessage{
			Role:    message.Role,
			Content: []contentPart{{Type: "text", Text: message.Content}},
		})
	}

	return c.completion(ctx, chatRequest{
		Model:    c.model,
		Messages: chatMessages,
	})
}
