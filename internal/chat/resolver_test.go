package chat

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"taskchat-backend/internal/tasks"
	"taskchat-backend/internal/tools"
)

func newTestResolver() (*RuleResolver, *tasks.MemoryStore) {
	store := tasks.NewMemoryStore()
	return NewRuleResolver(tools.NewRegistry(store)), store
}

func seed(t *testing.T, store *tasks.MemoryStore, userID int, title string, completed bool) tasks.Task {
	t.Helper()
	task, err := store.Create(context.Background(), userID, title, "")
	if err != nil {
		t.Fatal(err)
	}
	if completed {
		task, err = store.SetCompleted(context.Background(), userID, task.ID)
		if err != nil {
			t.Fatal(err)
		}
	}
	return task
}

func onlyToolCall(t *testing.T, reply Reply, name string) ToolCall {
	t.Helper()
	if len(reply.ToolCalls) != 1 {
		t.Fatalf("got %d tool calls (%v), want 1", len(reply.ToolCalls), reply.ToolCalls)
	}
	if reply.ToolCalls[0].Name != name {
		t.Fatalf("tool call = %q, want %q", reply.ToolCalls[0].Name, name)
	}
	return reply.ToolCalls[0]
}

func TestResolveAddTask(t *testing.T) {
	r, store := newTestResolver()

	reply := r.Resolve(context.Background(), 1, "Add a task to buy groceries for tomorrow", nil)

	call := onlyToolCall(t, reply, "add_task")
	if call.Parameters["title"] != "buy groceries for tomorrow" {
		t.Errorf("title = %v, want buy groceries for tomorrow", call.Parameters["title"])
	}
	if call.Parameters["user_id"] != 1 {
		t.Errorf("user_id = %v, want 1", call.Parameters["user_id"])
	}
	if reply.Response != "I've added the task 'buy groceries for tomorrow' to your list." {
		t.Errorf("response = %q", reply.Response)
	}

	list, _ := store.List(context.Background(), 1, tasks.StatusAll)
	if len(list) != 1 || list[0].Title != "buy groceries for tomorrow" || list[0].Completed {
		t.Errorf("stored tasks = %+v", list)
	}
}

func TestResolveAddWithDescription(t *testing.T) {
	r, store := newTestResolver()

	reply := r.Resolve(context.Background(), 1, "add task to buy milk description: from the corner shop", nil)

	call := onlyToolCall(t, reply, "add_task")
	if call.Parameters["description"] != "from the corner shop" {
		t.Errorf("description = %v", call.Parameters["description"])
	}
	// The raw title keeps the description tail; that's the documented
	// extraction behavior.
	title, _ := call.Parameters["title"].(string)
	if !strings.HasPrefix(title, "buy milk") {
		t.Errorf("title = %q, want prefix 'buy milk'", title)
	}

	list, _ := store.List(context.Background(), 1, tasks.StatusAll)
	if len(list) != 1 || list[0].Description != "from the corner shop" {
		t.Errorf("stored tasks = %+v", list)
	}
}

func TestResolveListVariants(t *testing.T) {
	r, store := newTestResolver()
	seed(t, store, 1, "buy milk", false)
	seed(t, store, 1, "old chore", true)

	cases := []struct {
		message    string
		wantStatus string
		wantTitles []string
	}{
		{"List all my tasks", "all", []string{"buy milk", "old chore"}},
		{"List my pending tasks", "pending", []string{"buy milk"}},
		{"list my completed todos", "completed", []string{"old chore"}},
	}
	for _, tc := range cases {
		reply := r.Resolve(context.Background(), 1, tc.message, nil)
		call := onlyToolCall(t, reply, "list_tasks")
		if call.Parameters["status"] != tc.wantStatus {
			t.Errorf("%q: status = %v, want %s", tc.message, call.Parameters["status"], tc.wantStatus)
		}
		for _, title := range tc.wantTitles {
			if !strings.Contains(reply.Response, "- "+title) {
				t.Errorf("%q: response %q missing %q", tc.message, reply.Response, title)
			}
		}
	}
}

func TestResolveListEmpty(t *testing.T) {
	r, _ := newTestResolver()

	reply := r.Resolve(context.Background(), 1, "list my tasks", nil)
	if reply.Response != "You don't have any tasks." {
		t.Errorf("response = %q", reply.Response)
	}

	reply = r.Resolve(context.Background(), 1, "list my pending tasks", nil)
	if reply.Response != "You don't have any pending tasks." {
		t.Errorf("response = %q", reply.Response)
	}
}

func TestResolveListTruncation(t *testing.T) {
	r, store := newTestResolver()
	for i := 1; i <= 7; i++ {
		seed(t, store, 1, fmt.Sprintf("task number %d", i), false)
	}

	reply := r.Resolve(context.Background(), 1, "list my tasks", nil)
	if !strings.Contains(reply.Response, "... and 2 more tasks") {
		t.Errorf("response = %q, want truncation suffix", reply.Response)
	}
	if strings.Count(reply.Response, "- ") != 5 {
		t.Errorf("response lists %d bullets, want 5: %q", strings.Count(reply.Response, "- "), reply.Response)
	}
	if strings.Contains(reply.Response, "task number 6") {
		t.Errorf("response shows a truncated title: %q", reply.Response)
	}
}

func TestResolveCompleteByTitle(t *testing.T) {
	r, store := newTestResolver()
	task := seed(t, store, 1, "buy milk", false)

	reply := r.Resolve(context.Background(), 1, "complete buy milk", nil)

	call := onlyToolCall(t, reply, "complete_task")
	if call.Parameters["task_id"] != task.ID {
		t.Errorf("task_id = %v, want %d", call.Parameters["task_id"], task.ID)
	}
	if reply.Response != "I've marked the task as complete." {
		t.Errorf("response = %q", reply.Response)
	}

	got, _ := store.Get(context.Background(), 1, task.ID)
	if !got.Completed {
		t.Error("task not completed in store")
	}
}

func TestResolveCompleteClarification(t *testing.T) {
	r, store := newTestResolver()
	pending := seed(t, store, 1, "water plants", false)
	seed(t, store, 1, "archived chore", true)

	reply := r.Resolve(context.Background(), 1, "complete something unrelated", nil)

	call := onlyToolCall(t, reply, "list_tasks")
	if call.Parameters["status"] != tasks.StatusAll {
		t.Errorf("clarification listed with status %v, want all", call.Parameters["status"])
	}
	if !strings.Contains(reply.Response, "Which task would you like to complete?") {
		t.Errorf("response = %q", reply.Response)
	}
	if !strings.Contains(reply.Response, fmt.Sprintf("[%d] water plants", pending.ID)) {
		t.Errorf("response %q missing pending candidate", reply.Response)
	}
	// Only the pending subset is offered.
	if strings.Contains(reply.Response, "archived chore") {
		t.Errorf("response %q offers a completed task", reply.Response)
	}
}

func TestResolveCompleteNoPending(t *testing.T) {
	r, store := newTestResolver()
	seed(t, store, 1, "archived chore", true)

	reply := r.Resolve(context.Background(), 1, "complete whatever is left", nil)
	if reply.Response != "You don't have any pending tasks to complete." {
		t.Errorf("response = %q", reply.Response)
	}
}

func TestResolveDeleteByTitle(t *testing.T) {
	r, store := newTestResolver()
	task := seed(t, store, 1, "buy milk", false)

	reply := r.Resolve(context.Background(), 1, "delete buy milk", nil)

	call := onlyToolCall(t, reply, "delete_task")
	if call.Parameters["task_id"] != task.ID {
		t.Errorf("task_id = %v, want %d", call.Parameters["task_id"], task.ID)
	}
	if reply.Response != "I've deleted the task." {
		t.Errorf("response = %q", reply.Response)
	}

	list, _ := store.List(context.Background(), 1, tasks.StatusAll)
	if len(list) != 0 {
		t.Errorf("store still holds %+v", list)
	}
}

func TestResolveDeleteClarificationListsAll(t *testing.T) {
	r, store := newTestResolver()
	seed(t, store, 1, "buy milk", false)
	seed(t, store, 1, "archived chore", true)

	reply := r.Resolve(context.Background(), 1, "remove one of these", nil)

	onlyToolCall(t, reply, "list_tasks")
	if !strings.Contains(reply.Response, "Which task would you like to delete?") {
		t.Errorf("response = %q", reply.Response)
	}
	// Unlike the complete fallback, delete offers completed tasks too.
	if !strings.Contains(reply.Response, "archived chore") || !strings.Contains(reply.Response, "buy milk") {
		t.Errorf("response %q should list every task", reply.Response)
	}
}

func TestResolveUpdate(t *testing.T) {
	r, store := newTestResolver()
	task := seed(t, store, 1, "buy milk", false)

	reply := r.Resolve(context.Background(), 1, "update buy milk", nil)

	call := onlyToolCall(t, reply, "update_task")
	if call.Parameters["task_id"] != task.ID {
		t.Errorf("task_id = %v, want %d", call.Parameters["task_id"], task.ID)
	}
	// No lead-in phrase in the message, so the whole message stands in
	// as the new title.
	if call.Parameters["title"] != "update buy milk" {
		t.Errorf("title = %v", call.Parameters["title"])
	}
	if reply.Response != "I've updated the task." {
		t.Errorf("response = %q", reply.Response)
	}
}

func TestResolveDefault(t *testing.T) {
	r, _ := newTestResolver()

	reply := r.Resolve(context.Background(), 1, "What can you help me with?", nil)
	if len(reply.ToolCalls) != 0 {
		t.Errorf("tool calls = %v, want none", reply.ToolCalls)
	}
	want := "I understand you said: 'What can you help me with?'. I can help you manage your tasks. You can ask me to add, list, complete, delete, or update tasks."
	if reply.Response != want {
		t.Errorf("response = %q", reply.Response)
	}
}

func TestRuleOrderAddBeatsList(t *testing.T) {
	r, _ := newTestResolver()

	// Matches both the add and list predicates; the table is ordered, add
	// wins.
	reply := r.Resolve(context.Background(), 1, "add task to list my chores", nil)
	onlyToolCall(t, reply, "add_task")
}

func TestResolverScopedToUser(t *testing.T) {
	r, store := newTestResolver()
	seed(t, store, 1, "buy milk", false)

	reply := r.Resolve(context.Background(), 2, "complete buy milk", nil)
	// User 2 has no tasks, so resolution fails and there is nothing
	// pending to offer.
	if reply.Response != "You don't have any pending tasks to complete." {
		t.Errorf("response = %q", reply.Response)
	}
}
