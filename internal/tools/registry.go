// Package tools exposes the fixed catalog of task operations the chat
// agent may invoke, with a single dispatch entry point.
package tools

import (
	"context"
	"errors"
	"fmt"

	"taskchat-backend/internal/tasks"
)

// ErrToolNotFound is returned by Call for an unknown tool name. Every other
// failure, including store errors, is reported inside the result map.
var ErrToolNotFound = errors.New("tool not found")

type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// Registry holds the static tool catalog and dispatches calls to the task
// store. It has no per-request state; one instance is shared by all
// requests.
type Registry struct {
	store   tasks.Store
	catalog []Tool
}

func NewRegistry(store tasks.Store) *Registry {
	return &Registry{
		store:   store,
		catalog: catalog(),
	}
}

func catalog() []Tool {
	userProp := map[string]any{"type": "integer", "description": "The ID of the user"}
	taskProp := map[string]any{"type": "integer", "description": "The ID of the task"}

	return []Tool{
		{
			Name:        "add_task",
			Description: "Creates a new task for a user",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"user_id":     userProp,
					"title":       map[string]any{"type": "string", "description": "The title of the task"},
					"description": map[string]any{"type": "string", "description": "Optional description of the task"},
				},
				"required": []string{"user_id", "title"},
			},
		},
		{
			Name:        "list_tasks",
			Description: "Returns tasks for a user filtered by status",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"user_id": userProp,
					"status": map[string]any{
						"type":        "string",
						"enum":        []string{"all", "pending", "completed"},
						"description": "Filter tasks by status",
					},
				},
				"required": []string{"user_id"},
			},
		},
		{
			Name:        "complete_task",
			Description: "Marks a specified task as complete",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"user_id": userProp,
					"task_id": taskProp,
				},
				"required": []string{"user_id", "task_id"},
			},
		},
		{
			Name:        "delete_task",
			Description: "Removes a specified task",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"user_id": userProp,
					"task_id": taskProp,
				},
				"required": []string{"user_id", "task_id"},
			},
		},
		{
			Name:        "update_task",
			Description: "Updates task details",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"user_id":     userProp,
					"task_id":     taskProp,
					"title":       map[string]any{"type": "string", "description": "New title for the task (optional)"},
					"description": map[string]any{"type": "string", "description": "New description for the task (optional)"},
				},
				"required": []string{"user_id", "task_id"},
			},
		},
	}
}

// List returns the tool catalog for introspection.
func (r *Registry) List() []Tool {
	out := make([]Tool, len(r.catalog))
	copy(out, r.catalog)
	return out
}

// Call dispatches a named tool call. The result always carries
// "success"; on failure it carries "error" as well. Store failures never
// escape as Go errors.
func (r *Registry) Call(ctx context.Context, name string, params map[string]any) (map[string]any, error) {
	switch name {
	case "add_task":
		return r.addTask(ctx, params), nil
	case "list_tasks":
		return r.listTasks(ctx, params), nil
	case "complete_task":
		return r.completeTask(ctx, params), nil
	case "delete_task":
		return r.deleteTask(ctx, params), nil
	case "update_task":
		return r.updateTask(ctx, params), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrToolNotFound, name)
	}
}

func (r *Registry) addTask(ctx context.Context, params map[string]any) map[string]any {
	userID := intParam(params, "user_id")
	title := stringParam(params, "title")
	if userID == 0 || title == "" {
		return failure("Missing required parameters: user_id and title are required")
	}

	t, err := r.store.Create(ctx, userID, title, stringParam(params, "description"))
	if err != nil {
		return failure(err.Error())
	}

	return map[string]any{
		"success":   true,
		"task_id":   t.ID,
		"title":     t.Title,
		"completed": t.Completed,
		"message":   fmt.Sprintf("Task %q created successfully", t.Title),
	}
}

func (r *Registry) listTasks(ctx context.Context, params map[string]any) map[string]any {
	userID := intParam(params, "user_id")
	if userID == 0 {
		return failure("Missing required parameter: user_id is required")
	}

	status := stringParam(params, "status")
	if status == "" {
		status = tasks.StatusAll
	}
	if status != tasks.StatusAll && status != tasks.StatusPending && status != tasks.StatusCompleted {
		return failure(fmt.Sprintf("Invalid status filter %q", status))
	}

	list, err := r.store.List(ctx, userID, status)
	if err != nil {
		return failure(err.Error())
	}

	return map[string]any{
		"success":       true,
		"tasks":         list,
		"count":         len(list),
		"status_filter": status,
	}
}

func (r *Registry) completeTask(ctx context.Context, params map[string]any) map[string]any {
	userID := intParam(params, "user_id")
	taskID := intParam(params, "task_id")
	if userID == 0 || taskID == 0 {
		return failure("Missing required parameters: user_id and task_id are required")
	}

	t, err := r.store.SetCompleted(ctx, userID, taskID)
	if errors.Is(err, tasks.ErrNotFound) {
		return failure(fmt.Sprintf("Task with ID %d not found for user %d", taskID, userID))
	}
	if err != nil {
		return failure(err.Error())
	}

	return map[string]any{
		"success":   true,
		"task_id":   t.ID,
		"title":     t.Title,
		"completed": t.Completed,
		"message":   fmt.Sprintf("Task %q marked as complete", t.Title),
	}
}

func (r *Registry) deleteTask(ctx context.Context, params map[string]any) map[string]any {
	userID := intParam(params, "user_id")
	taskID := intParam(params, "task_id")
	if userID == 0 || taskID == 0 {
		return failure("Missing required parameters: user_id and task_id are required")
	}

	t, err := r.store.Delete(ctx, userID, taskID)
	if errors.Is(err, tasks.ErrNotFound) {
		return failure(fmt.Sprintf("Task with ID %d not found for user %d", taskID, userID))
	}
	if err != nil {
		return failure(err.Error())
	}

	return map[string]any{
		"success": true,
		"task_id": t.ID,
		"title":   t.Title,
		"message": fmt.Sprintf("Task %q deleted successfully", t.Title),
	}
}

func (r *Registry) updateTask(ctx context.Context, params map[string]any) map[string]any {
	userID := intParam(params, "user_id")
	taskID := intParam(params, "task_id")
	if userID == 0 || taskID == 0 {
		return failure("Missing required parameters: user_id and task_id are required")
	}

	var title, description *string
	if v, ok := params["title"]; ok {
		if s, ok := v.(string); ok {
			title = &s
		}
	}
	if v, ok := params["description"]; ok {
		if s, ok := v.(string); ok {
			description = &s
		}
	}

	t, err := r.store.Update(ctx, userID, taskID, title, description)
	if errors.Is(err, tasks.ErrNotFound) {
		return failure(fmt.Sprintf("Task with ID %d not found for user %d", taskID, userID))
	}
	if err != nil {
		return failure(err.Error())
	}

	return map[string]any{
		"success":     true,
		"task_id":     t.ID,
		"title":       t.Title,
		"description": t.Description,
		"message":     fmt.Sprintf("Task %q updated successfully", t.Title),
	}
}

func failure(msg string) map[string]any {
	return map[string]any{
		"success": false,
		"error":   msg,
	}
}

// intParam reads an integer parameter, accepting the float64 that
// encoding/json produces for numbers.
func intParam(params map[string]any, key string) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func stringParam(params map[string]any, key string) string {
	s, _ := params[key].(string)
	return s
}
