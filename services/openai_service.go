package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIService is the vision/text oracle. It speaks a JSON-in-prompt
// protocol and is treated as untrusted: callers must survive any error or
// empty result it produces.
type OpenAIService struct {
	client *openai.Client
}

func NewOpenAIService(apiKey string) *OpenAIService {
	return &OpenAIService{client: openai.NewClient(apiKey)}
}

type oracleEnvelope struct {
	IsFoodLog bool         `json:"is_food_log"`
	LogData   []OracleItem `json:"log_data"`
	Reply     string       `json:"reply"`
}

// stripFences removes a ```json ... ``` wrapper the model sometimes adds.
func stripFences(content string) string {
	c := strings.TrimSpace(content)
	c = strings.TrimPrefix(c, "```json")
	c = strings.TrimPrefix(c, "```")
	c = strings.TrimSuffix(c, "```")
	return strings.TrimSpace(c)
}

const imagePrompt = `You are an expert AI Nutritionist.
1. Analyze the image and identify the food items.
2. Estimate the weight/quantity of each item based on visual cues.
3. Calculate the calories and macros (Protein, Carbs, Fats) for these estimated quantities.
4. If the user provided a caption: %q, use it to refine your analysis.

Return a JSON object with two keys:
- "log_data": a list of objects, each containing "item", "calories" (int), "protein" (float), "carbs" (float), "fats" (float), "weight_g" (estimated grams), "micronutrients" (short text), "health_score" (int 1-10), "meal_period" (Breakfast/Lunch/Dinner/Snack).
- "reply": a friendly conversational message explaining what you see and the totals. Use the caption's language if any, else English.`

const textPrompt = `You are a friendly AI Nutrition Assistant. The user sent: %q.

1. Determine if the user is trying to log food or just chatting.
2. If logging food: extract items and estimate calories/macros.
3. If chatting: respond helpfully.

Output JSON:
{"is_food_log": bool, "log_data": [{"item", "calories", "protein", "carbs", "fats", "micronutrients", "health_score", "meal_period"}], "reply": "conversational response, matching the user's language and tone"}`

// ExtractFromImage runs the vision analysis over raw image bytes. An empty
// item list with a reply is a valid "no food detected" outcome.
func (s *OpenAIService) ExtractFromImage(ctx context.Context, image []byte, caption string) ([]OracleItem, string, error) {
	dataURI := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4o,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: fmt.Sprintf(imagePrompt, caption)},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURI}},
			},
		}},
		MaxTokens: 500,
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w: image analysis: %v", ErrProvider, err)
	}
	if len(resp.Choices) == 0 {
		return nil, "", fmt.Errorf("%w: image analysis returned no choices", ErrProvider)
	}

	var env oracleEnvelope
	if err := json.Unmarshal([]byte(stripFences(resp.Choices[0].Message.Content)), &env); err != nil {
		return nil, "", fmt.Errorf("%w: parse image analysis JSON: %v", ErrProvider, err)
	}
	reply := env.Reply
	if reply == "" {
		reply = "I processed your image."
	}
	return env.LogData, reply, nil
}

// ExtractFromText decides chat-vs-log for a free text message and extracts
// items when it is a log.
func (s *OpenAIService) ExtractFromText(ctx context.Context, text string) ([]OracleItem, string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a helpful assistant that outputs raw JSON."},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(textPrompt, text)},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w: text analysis: %v", ErrProvider, err)
	}
	if len(resp.Choices) == 0 {
		return nil, "", fmt.Errorf("%w: text analysis returned no choices", ErrProvider)
	}

	var env oracleEnvelope
	if err := json.Unmarshal([]byte(stripFences(resp.Choices[0].Message.Content)), &env); err != nil {
		return nil, "", fmt.Errorf("%w: parse text analysis JSON: %v", ErrProvider, err)
	}
	reply := env.Reply
	if reply == "" {
		reply = "I didn't understand that."
	}
	if !env.IsFoodLog {
		return nil, reply, nil
	}
	return env.LogData, reply, nil
}

const goalPrompt = `You are a nutrition coach. Compute daily calorie and macro goals for:
age %d, gender %s, weight %.1f kg, height %.1f cm, activity level %q.
Use the Mifflin-St Jeor equation and a 30%% protein / 40%% carbs / 30%% fats split.

Output JSON: {"calories": int, "protein": int, "carbs": int, "fats": int, "explanation": "short text"}`

// ComputeGoals delegates the goal calculation to the oracle. Callers fall
// back to CalculateDailyGoals when this fails.
func (s *OpenAIService) ComputeGoals(ctx context.Context, age int, gender string, weight, height float64, activity string) (GoalResult, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a helpful assistant that outputs raw JSON."},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(goalPrompt, age, gender, weight, height, activity)},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return GoalResult{}, fmt.Errorf("%w: goal calculation: %v", ErrProvider, err)
	}
	if len(resp.Choices) == 0 {
		return GoalResult{}, fmt.Errorf("%w: goal calculation returned no choices", ErrProvider)
	}

	var goal GoalResult
	if err := json.Unmarshal([]byte(stripFences(resp.Choices[0].Message.Content)), &goal); err != nil {
		return GoalResult{}, fmt.Errorf("%w: parse goal JSON: %v", ErrProvider, err)
	}
	if goal.Calories <= 0 {
		return GoalResult{}, fmt.Errorf("%w: goal calculation returned no calories", ErrProvider)
	}
	return goal, nil
}
