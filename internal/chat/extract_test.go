package chat

import (
	"testing"

	"taskchat-backend/internal/tasks"
)

func TestExtractTitle(t *testing.T) {
	cases := []struct {
		message string
		want    string
	}{
		{"Add a task to buy groceries for tomorrow", "buy groceries for tomorrow"},
		{"add task to call mom", "call mom"},
		{"create task water the plants", "water the plants"},
		{"create a task clean the garage", "clean the garage"},
		{"add buy milk", "buy milk"},
		{"make dinner reservations", "dinner reservations"},
		{"create a new playlist", "a new playlist"},
		{"add buy milk please", "buy milk"},
		{"add buy milk please.", "buy milk"},
		{"add buy milk!", "buy milk"},
		{"add buy milk, thanks", "buy milk,"},
		// No lead-in phrase: the whole message stands in.
		{"something entirely different", "something entirely different"},
		{"  padded message  ", "padded message"},
	}
	for _, tc := range cases {
		if got := extractTitle(tc.message); got != tc.want {
			t.Errorf("extractTitle(%q) = %q, want %q", tc.message, got, tc.want)
		}
	}
}

func TestExtractDescription(t *testing.T) {
	cases := []struct {
		message string
		want    string
		found   bool
	}{
		{"add task to buy milk description: from the corner shop", "from the corner shop", true},
		{"add task to buy milk description from the shop", "from the shop", true},
		{"add task to buy milk desc: quick run", "quick run", true},
		{"add task to buy milk", "", false},
		{"add task to buy milk description", "", true},
	}
	for _, tc := range cases {
		lower := lowercase(tc.message)
		got, found := extractDescription(tc.message, lower)
		if found != tc.found || got != tc.want {
			t.Errorf("extractDescription(%q) = (%q, %v), want (%q, %v)",
				tc.message, got, found, tc.want, tc.found)
		}
	}
}

func lowercase(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r >= 'A' && r <= 'Z' {
			out[i] = r + ('a' - 'A')
		}
	}
	return string(out)
}

func TestExtractTaskIDIsAStub(t *testing.T) {
	for _, msg := range []string{"complete task 3", "delete 17", "finish #42"} {
		if got := extractTaskID(msg); got != 0 {
			t.Errorf("extractTaskID(%q) = %d, want 0", msg, got)
		}
	}
}

func TestResolveTarget(t *testing.T) {
	all := []tasks.Task{
		{ID: 1, Title: "buy milk"},
		{ID: 2, Title: "write the quarterly report"},
		{ID: 3, Title: "call dentist"},
	}

	cases := []struct {
		name    string
		message string
		want    int
	}{
		{"exact substring", "complete buy milk", 1},
		{"substring mid-sentence", "i just finished buy milk today", 1},
		{"word overlap half title", "finish the quarterly report now", 2},
		// A two-word title needs only one shared word.
		{"single shared word", "done with dentist", 3},
		{"one word of two-word title", "delete milk", 1},
		{"substring on call dentist", "please call dentist done", 3},
		{"no match", "complete something unrelated", 0},
	}
	for _, tc := range cases {
		if got := resolveTarget(all, tc.message); got != tc.want {
			t.Errorf("%s: resolveTarget(%q) = %d, want %d", tc.name, tc.message, got, tc.want)
		}
	}
}

func TestResolveTargetSecondPass(t *testing.T) {
	all := []tasks.Task{
		{ID: 9, Title: "buy groceries and cook dinner"},
	}

	// First pass fails: no substring, one shared word out of five.
	// Second pass: text after "delete" is contained in the title.
	if got := resolveTarget(all, "delete groceries"); got != 9 {
		t.Errorf("resolveTarget second pass = %d, want 9", got)
	}

	// All four split keywords work.
	if got := resolveTarget(all, "kill dinner"); got != 9 {
		t.Errorf("resolveTarget kill keyword = %d, want 9", got)
	}

	// Second pass only runs for delete-style keywords.
	if got := resolveTarget(all, "complete groceries please maybe"); got != 0 {
		t.Errorf("resolveTarget without delete keyword = %d, want 0", got)
	}

	// Keyword at the end of the message: nothing after it to compare.
	if got := resolveTarget(all, "what should i delete"); got != 0 {
		t.Errorf("resolveTarget trailing keyword = %d, want 0", got)
	}
}

func TestResolveTargetScanOrder(t *testing.T) {
	all := []tasks.Task{
		{ID: 1, Title: "buy milk"},
		{ID: 2, Title: "buy milk"},
	}
	if got := resolveTarget(all, "complete buy milk"); got != 1 {
		t.Errorf("resolveTarget ambiguous titles = %d, want first match 1", got)
	}
}
