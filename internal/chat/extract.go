package chat

import (
	"strings"

	"taskchat-backend/internal/tasks"
)

// Lead-in phrases tried in order against the lower-cased message; the
// text after the first hit becomes the raw title.
var titleLeadIns = []string{
	"add task to ",
	"add a task to ",
	"create task ",
	"create a task ",
	"add ",
	"make ",
	"create ",
}

// Courtesy/punctuation suffixes stripped from the end of a raw title,
// one pass in this order.
var titleSuffixes = []string{".", "!", "?", "please", "thanks", "thank you"}

// extractTitle pulls a task title out of a free-text message. When no
// lead-in phrase matches, the whole message stands in as the title.
func extractTitle(message string) string {
	lower := strings.ToLower(message)

	for _, leadIn := range titleLeadIns {
		idx := strings.Index(lower, leadIn)
		if idx == -1 {
			continue
		}

		title := strings.TrimSpace(message[idx+len(leadIn):])
		for _, suffix := range titleSuffixes {
			if strings.HasSuffix(strings.ToLower(title), suffix) {
				title = strings.TrimSpace(title[:len(title)-len(suffix)])
			}
		}

		if title == "" {
			return message
		}
		return title
	}

	return strings.TrimSpace(message)
}

// extractDescription returns the description parameter when the message
// carries a "description"/"desc" marker. The split offsets are 11 after
// "description" and 5 after "desc".
func extractDescription(message, lower string) (string, bool) {
	descIdx := strings.Index(lower, "desc")
	fullIdx := strings.Index(lower, "description")
	if descIdx == -1 && fullIdx == -1 {
		return "", false
	}

	start := descIdx
	if fullIdx > start {
		start = fullIdx
	}

	offset := 5
	if fullIdx != -1 {
		offset = 11
	}

	cut := start + offset
	if cut > len(message) {
		cut = len(message)
	}

	desc := strings.TrimSpace(message[cut:])
	desc = strings.TrimSpace(strings.TrimPrefix(desc, ":"))
	return desc, true
}

// extractTaskID would parse an explicit numeric task id out of the
// message. It currently never finds one, so every target goes through
// title-based resolution instead.
func extractTaskID(message string) int {
	return 0
}

// Second-pass keywords: text after one of these is compared against task
// titles by mutual containment.
var targetSplitKeywords = []string{"delete", "remove", "kill", "erase"}

// resolveTarget maps a free-text reference to a stored task id. Tasks are
// scanned in store-return order; the first one whose title is contained
// in the message, or whose words overlap the message by at least half the
// title's word count, wins. A delete-style second pass handles "remove
// the X" phrasings. Returns 0 when nothing matches.
func resolveTarget(all []tasks.Task, lower string) int {
	msgWords := wordSet(lower)

	for _, t := range all {
		titleLower := strings.ToLower(t.Title)
		if strings.Contains(lower, titleLower) {
			return t.ID
		}

		titleWords := wordSet(titleLower)
		overlap := 0
		for w := range titleWords {
			if msgWords[w] {
				overlap++
			}
		}
		if overlap > 0 && overlap*2 >= len(titleWords) {
			return t.ID
		}
	}

	for _, kw := range targetSplitKeywords {
		idx := strings.Index(lower, kw)
		if idx == -1 {
			continue
		}
		after := strings.TrimSpace(lower[idx+len(kw):])
		if after == "" {
			continue
		}
		for _, t := range all {
			titleLower := strings.ToLower(t.Title)
			if strings.Contains(titleLower, after) || strings.Contains(after, titleLower) {
				return t.ID
			}
		}
	}

	return 0
}

func wordSet(s string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		out[w] = true
	}
	return out
}
