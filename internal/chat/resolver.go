package chat

import (
	"context"
	"fmt"
	"strings"

	"taskchat-backend/internal/conversations"
	"taskchat-backend/internal/tasks"
	"taskchat-backend/internal/tools"
)

// ToolCall records one tool invocation for the response envelope. It is
// not persisted; only the assistant text survives in the message log.
type ToolCall struct {
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
}

// Reply is what a resolver produces for one user message. Resolvers never
// fail: every internal error becomes apology text in Response.
type Reply struct {
	Response  string
	ToolCalls []ToolCall
}

// Resolver turns a user message plus prior history into a reply,
// invoking task tools as needed. RuleResolver and OpenAIResolver both
// implement it; the choice is made once at construction.
type Resolver interface {
	Resolve(ctx context.Context, userID int, message string, history []conversations.Message) Reply
}

// RuleResolver classifies messages with an ordered keyword rule table,
// evaluated top to bottom; the first matching rule wins.
type RuleResolver struct {
	registry *tools.Registry
	rules    []rule
}

type rule struct {
	matches func(lower string) bool
	handle  func(ctx context.Context, userID int, message, lower string) Reply
}

func NewRuleResolver(registry *tools.Registry) *RuleResolver {
	r := &RuleResolver{registry: registry}
	r.rules = []rule{
		{matchesAdd, r.handleAdd},
		{matchesList, r.handleList},
		{matchesComplete, r.handleComplete},
		{matchesDelete, r.handleDelete},
		{matchesUpdate, r.handleUpdate},
	}
	return r
}

func (r *RuleResolver) Resolve(ctx context.Context, userID int, message string, history []conversations.Message) Reply {
	lower := strings.ToLower(message)
	for _, rl := range r.rules {
		if rl.matches(lower) {
			return rl.handle(ctx, userID, message, lower)
		}
	}
	return Reply{
		Response: fmt.Sprintf("I understand you said: '%s'. I can help you manage your tasks. You can ask me to add, list, complete, delete, or update tasks.", message),
	}
}

// --- rule predicates ---

func matchesAdd(lower string) bool {
	return strings.Contains(lower, "add") &&
		(strings.Contains(lower, "task") || strings.Contains(lower, "todo"))
}

func matchesList(lower string) bool {
	return strings.Contains(lower, "list") &&
		(strings.Contains(lower, "task") || strings.Contains(lower, "todo"))
}

func matchesComplete(lower string) bool {
	return strings.Contains(lower, "complete") ||
		strings.Contains(lower, "done") ||
		strings.Contains(lower, "finish")
}

func matchesDelete(lower string) bool {
	return strings.Contains(lower, "delete") || strings.Contains(lower, "remove")
}

func matchesUpdate(lower string) bool {
	return strings.Contains(lower, "update") ||
		strings.Contains(lower, "change") ||
		strings.Contains(lower, "modify")
}

// --- handlers ---

func (r *RuleResolver) handleAdd(ctx context.Context, userID int, message, lower string) Reply {
	title := extractTitle(message)
	if title == "" {
		return Reply{Response: "I can help you add a task. Please specify what task you'd like to add."}
	}

	params := map[string]any{
		"user_id": userID,
		"title":   title,
	}
	if desc, ok := extractDescription(message, lower); ok {
		params["description"] = desc
	}

	result, err := r.registry.Call(ctx, "add_task", params)
	if err != nil {
		return Reply{Response: fmt.Sprintf("I encountered an error while adding the task: %v", err)}
	}
	if !succeeded(result) {
		return Reply{Response: "I couldn't add the task: " + errorText(result)}
	}
	return Reply{
		Response:  fmt.Sprintf("I've added the task '%s' to your list.", title),
		ToolCalls: []ToolCall{{Name: "add_task", Parameters: params}},
	}
}

func (r *RuleResolver) handleList(ctx context.Context, userID int, message, lower string) Reply {
	status := tasks.StatusAll
	if strings.Contains(lower, "completed") {
		status = tasks.StatusCompleted
	} else if strings.Contains(lower, "pending") || strings.Contains(lower, "incomplete") {
		status = tasks.StatusPending
	}

	params := map[string]any{
		"user_id": userID,
		"status":  status,
	}

	result, err := r.registry.Call(ctx, "list_tasks", params)
	if err != nil {
		return Reply{Response: fmt.Sprintf("I encountered an error while listing tasks: %v", err)}
	}
	if !succeeded(result) {
		return Reply{Response: "I couldn't list your tasks: " + errorText(result)}
	}

	statusText := ""
	if status != tasks.StatusAll {
		statusText = status + " "
	}

	list := taskList(result)
	if len(list) == 0 {
		return Reply{
			Response:  fmt.Sprintf("You don't have any %stasks.", statusText),
			ToolCalls: []ToolCall{{Name: "list_tasks", Parameters: params}},
		}
	}

	var lines []string
	for i, t := range list {
		if i == 5 {
			break
		}
		lines = append(lines, "- "+t.Title)
	}
	rendered := strings.Join(lines, "\n")
	if len(list) > 5 {
		rendered += fmt.Sprintf("\n... and %d more tasks", len(list)-5)
	}

	return Reply{
		Response:  fmt.Sprintf("Here are your %stasks:\n%s", statusText, rendered),
		ToolCalls: []ToolCall{{Name: "list_tasks", Parameters: params}},
	}
}

func (r *RuleResolver) handleComplete(ctx context.Context, userID int, message, lower string) Reply {
	taskID := extractTaskID(message)

	var all []tasks.Task
	if taskID == 0 {
		loaded, ok := r.loadTasks(ctx, userID)
		if !ok {
			return Reply{Response: "I can help you mark a task as complete. Please specify which task."}
		}
		all = loaded
		taskID = resolveTarget(all, lower)
	}

	if taskID == 0 {
		var pending []tasks.Task
		for _, t := range all {
			if !t.Completed {
				pending = append(pending, t)
			}
		}
		if len(pending) == 0 {
			return Reply{
				Response:  "You don't have any pending tasks to complete.",
				ToolCalls: []ToolCall{listAllCall(userID)},
			}
		}
		return Reply{
			Response:  "Which task would you like to complete? Here are your pending tasks:\n" + renderCandidates(pending),
			ToolCalls: []ToolCall{listAllCall(userID)},
		}
	}

	params := map[string]any{
		"user_id": userID,
		"task_id": taskID,
	}
	result, err := r.registry.Call(ctx, "complete_task", params)
	if err != nil {
		return Reply{Response: fmt.Sprintf("I encountered an error while completing the task: %v", err)}
	}
	if !succeeded(result) {
		return Reply{Response: "I couldn't complete the task: " + errorText(result)}
	}
	return Reply{
		Response:  "I've marked the task as complete.",
		ToolCalls: []ToolCall{{Name: "complete_task", Parameters: params}},
	}
}

func (r *RuleResolver) handleDelete(ctx context.Context, userID int, message, lower string) Reply {
	taskID := extractTaskID(message)

	var all []tasks.Task
	if taskID == 0 {
		loaded, ok := r.loadTasks(ctx, userID)
		if !ok {
			return Reply{Response: "I can help you delete a task. Please specify which task."}
		}
		all = loaded
		taskID = resolveTarget(all, lower)
	}

	if taskID == 0 {
		if len(all) == 0 {
			return Reply{
				Response:  "You don't have any tasks to delete.",
				ToolCalls: []ToolCall{listAllCall(userID)},
			}
		}
		return Reply{
			Response:  "Which task would you like to delete? Here are your tasks:\n" + renderCandidates(all),
			ToolCalls: []ToolCall{listAllCall(userID)},
		}
	}

	params := map[string]any{
		"user_id": userID,
		"task_id": taskID,
	}
	result, err := r.registry.Call(ctx, "delete_task", params)
	if err != nil {
		return Reply{Response: fmt.Sprintf("I encountered an error while deleting the task: %v", err)}
	}
	if !succeeded(result) {
		return Reply{Response: "I couldn't delete the task: " + errorText(result)}
	}
	return Reply{
		Response:  "I've deleted the task.",
		ToolCalls: []ToolCall{{Name: "delete_task", Parameters: params}},
	}
}

func (r *RuleResolver) handleUpdate(ctx context.Context, userID int, message, lower string) Reply {
	taskID := extractTaskID(message)

	var all []tasks.Task
	if taskID == 0 {
		loaded, ok := r.loadTasks(ctx, userID)
		if !ok {
			return Reply{Response: "I can help you update a task. Please specify which task and what changes to make."}
		}
		all = loaded
		taskID = resolveTarget(all, lower)
	}

	if taskID == 0 {
		if len(all) == 0 {
			return Reply{
				Response:  "You don't have any tasks to update.",
				ToolCalls: []ToolCall{listAllCall(userID)},
			}
		}
		return Reply{
			Response:  "Which task would you like to update? Here are your tasks:\n" + renderCandidates(all),
			ToolCalls: []ToolCall{listAllCall(userID)},
		}
	}

	params := map[string]any{
		"user_id": userID,
		"task_id": taskID,
	}
	if newTitle := extractTitle(message); newTitle != "" {
		params["title"] = newTitle
	}

	result, err := r.registry.Call(ctx, "update_task", params)
	if err != nil {
		return Reply{Response: fmt.Sprintf("I encountered an error while updating the task: %v", err)}
	}
	if !succeeded(result) {
		return Reply{Response: "I couldn't update the task: " + errorText(result)}
	}
	return Reply{
		Response:  "I've updated the task.",
		ToolCalls: []ToolCall{{Name: "update_task", Parameters: params}},
	}
}

// loadTasks fetches the user's full task list for target resolution and
// the clarification listings.
func (r *RuleResolver) loadTasks(ctx context.Context, userID int) ([]tasks.Task, bool) {
	result, err := r.registry.Call(ctx, "list_tasks", map[string]any{
		"user_id": userID,
		"status":  tasks.StatusAll,
	})
	if err != nil || !succeeded(result) {
		return nil, false
	}
	return taskList(result), true
}

func listAllCall(userID int) ToolCall {
	return ToolCall{
		Name: "list_tasks",
		Parameters: map[string]any{
			"user_id": userID,
			"status":  tasks.StatusAll,
		},
	}
}

// renderCandidates shows up to ten tasks as "[id] title" bullets so the
// user can answer with an id or a name next turn.
func renderCandidates(list []tasks.Task) string {
	var lines []string
	for i, t := range list {
		if i == 10 {
			break
		}
		lines = append(lines, fmt.Sprintf("- [%d] %s", t.ID, t.Title))
	}
	out := strings.Join(lines, "\n")
	if len(list) > 10 {
		out += fmt.Sprintf("\n... and %d more", len(list)-10)
	}
	return out
}

// --- result helpers ---

func succeeded(result map[string]any) bool {
	ok, _ := result["success"].(bool)
	return ok
}

func errorText(result map[string]any) string {
	if s, ok := result["error"].(string); ok && s != "" {
		return s
	}
	return "Unknown error"
}

func taskList(result map[string]any) []tasks.Task {
	list, _ := result["tasks"].([]tasks.Task)
	return list
}
