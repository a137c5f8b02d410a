package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"taskchat-backend/internal/conversations"
	"taskchat-backend/internal/tools"
)

const openAIChatURL = "https://api.openai.com/v1/chat/completions"

// OpenAIResolver is the LLM-backed alternative to RuleResolver: same
// interface, but the model picks the tools. Selected at startup when an
// API key is configured.
type OpenAIResolver struct {
	APIKey string
	Model  string

	registry *tools.Registry
	client   *http.Client
}

func NewOpenAIResolver(apiKey, model string, registry *tools.Registry) *OpenAIResolver {
	return &OpenAIResolver{
		APIKey:   apiKey,
		Model:    model,
		registry: registry,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (o *OpenAIResolver) Resolve(ctx context.Context, userID int, message string, history []conversations.Message) Reply {
	messages := []chatMessage{{
		Role: "system",
		Content: fmt.Sprintf(
			"You are a helpful AI assistant that manages tasks for users. Use the available tools to add, list, complete, delete, or update tasks. Always respect the user_id (%d) when calling tools. The user wants you to help manage their tasks.",
			userID,
		),
	}}
	for _, m := range history {
		messages = append(messages, chatMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: message})

	payload := map[string]any{
		"model":       o.Model,
		"messages":    messages,
		"tools":       o.toolDefinitions(),
		"tool_choice": "auto",
	}

	completion, err := o.complete(ctx, payload)
	if err != nil {
		return Reply{Response: fmt.Sprintf("I'm sorry, I encountered an error: %v", err)}
	}
	if len(completion.Choices) == 0 {
		return Reply{Response: "I'm sorry, I encountered an error: empty completion"}
	}

	msg := completion.Choices[0].Message

	var toolCalls []ToolCall
	var results []map[string]any
	for _, tc := range msg.ToolCalls {
		var args map[string]any
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			results = append(results, map[string]any{
				"success": false,
				"error":   "Tool call failed: " + err.Error(),
			})
			continue
		}
		// The model is never trusted with ownership.
		args["user_id"] = userID

		result, err := o.registry.Call(ctx, tc.Function.Name, args)
		if err != nil {
			results = append(results, map[string]any{
				"success": false,
				"error":   "Tool call failed: " + err.Error(),
			})
			continue
		}

		toolCalls = append(toolCalls, ToolCall{Name: tc.Function.Name, Parameters: args})
		results = append(results, result)
	}

	return Reply{
		Response:  composeResponse(msg.Content, results),
		ToolCalls: toolCalls,
	}
}

func (o *OpenAIResolver) complete(ctx context.Context, payload map[string]any) (*chatCompletionResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIChatURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+o.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(raw, &completion); err != nil {
		return nil, err
	}
	if completion.Error != nil {
		return nil, fmt.Errorf("openai: %s", completion.Error.Message)
	}
	return &completion, nil
}

// toolDefinitions maps the registry catalog into the chat-completions
// function-tool format.
func (o *OpenAIResolver) toolDefinitions() []map[string]any {
	var defs []map[string]any
	for _, t := range o.registry.List() {
		defs = append(defs, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  t.InputSchema,
			},
		})
	}
	return defs
}

// composeResponse prefers the model's own text; with tool calls but no
// text it summarizes what ran.
func composeResponse(content string, results []map[string]any) string {
	if content != "" {
		return content
	}
	if len(results) == 0 {
		return "I've processed your request."
	}

	succeededCount := 0
	var errs []string
	for _, res := range results {
		if succeeded(res) {
			succeededCount++
		} else {
			errs = append(errs, errorText(res))
		}
	}

	var parts []string
	if succeededCount > 0 {
		parts = append(parts, fmt.Sprintf("I've completed %d action(s) successfully.", succeededCount))
	}
	if len(errs) > 0 {
		parts = append(parts, "Some actions had issues: "+strings.Join(errs, "; "))
	}
	if len(parts) == 0 {
		return "I've processed your request."
	}
	return strings.Join(parts, " ")
}
