package backend

import (
	"regexp"
	"strings"
	"unicode"

	"notesync/models"
)

var (
	sentenceSplit = regexp.MustCompile(`[\n.!?;]+`)
	bulletPrefix  = regexp.MustCompile(`^\s*(?:(?:[-*•]|\d+[.)]|\[[ xX]?\])\s*)+`)
)

// actionMarkers introduce an action item. Longer markers come first so
// "i need to" wins over "need to".
var actionMarkers = []string{
	"don't forget to",
	"dont forget to",
	"remember to",
	"i need to",
	"we need to",
	"need to",
	"needs to",
	"i have to",
	"we have to",
	"have to",
	"i must",
	"we must",
	"must",
	"should",
	"todo:",
	"todo",
	"to do:",
	"action:",
	"please",
}

var (
	highWords = []string{"urgent", "asap", "immediately", "today", "critical"}
	lowWords  = []string{"someday", "eventually", "maybe", "sometime", "when possible"}
)

// ExtractTasks finds action items in free text and turns them into drafts.
// Bulleted lines are always treated as items.
func ExtractTasks(text string) []models.TaskDraft {
	drafts := []models.TaskDraft{}
	seen := make(map[string]bool)

	for _, line := range strings.Split(text, "\n") {
		bulleted := bulletPrefix.MatchString(line) && strings.TrimSpace(bulletPrefix.ReplaceAllString(line, "")) != ""
		for _, sentence := range sentenceSplit.Split(bulletPrefix.ReplaceAllString(line, ""), -1) {
			title, ok := actionTitle(sentence, bulleted)
			if !ok {
				continue
			}
			key := strings.ToLower(title)
			if seen[key] {
				continue
			}
			seen[key] = true
			drafts = append(drafts, models.TaskDraft{Title: title, Priority: priorityOf(sentence)})
		}
	}
	return drafts
}

func actionTitle(sentence string, bulleted bool) (string, bool) {
	s := strings.TrimSpace(sentence)
	if s == "" {
		return "", false
	}

	lower := strings.ToLower(s)
	found := bulleted
	for _, m := range actionMarkers {
		idx := strings.Index(lower, m)
		if idx < 0 || !wordBoundary(lower, idx, len(m)) {
			continue
		}
		s = strings.TrimSpace(s[idx+len(m):])
		found = true
		break
	}
	if !found {
		return "", false
	}

	s = strings.Trim(s, " ,:-")
	if len([]rune(s)) < 3 {
		return "", false
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	if len(r) > 200 {
		r = r[:200]
	}
	return string(r), true
}

func wordBoundary(s string, idx, n int) bool {
	if idx > 0 && isWordByte(s[idx-1]) {
		return false
	}
	end := idx + n
	return end >= len(s) || !isWordByte(s[end]) || !isWordByte(s[end-1])
}

func isWordByte(b byte) bool {
	return b == '_' || b == '\'' || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

func priorityOf(sentence string) models.Priority {
	lower := strings.ToLower(sentence)
	for _, w := range highWords {
		if strings.Contains(lower, w) {
			return models.PriorityHigh
		}
	}
	for _, w := range lowWords {
		if strings.Contains(lower, w) {
			return models.PriorityLow
		}
	}
	return models.PriorityMedium
}
