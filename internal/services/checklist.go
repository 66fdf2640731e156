package services

import (
	"iter"
	"regexp"
	"strings"
)

// checklistLinePattern matches a markdown task-list item whose first token is
// an @mention, e.g. "- [ ] @octocat" or "- [x] @octocat looks good".
// Team mentions such as "@org/team" are not reviewers.
var checklistLinePattern = regexp.MustCompile(`^\s*-\s+\[([ xX])\]\s+@([A-Za-z0-9_-]+)(?:$|[^A-Za-z0-9_/-])`)

// ChecklistItem is one reviewer mention found in a pull request body
type ChecklistItem struct {
	Login     string
	Completed bool
}

// ChecklistItems lazily yields every checklist line of body in order.
// Lines that are not checklist items are skipped.
func ChecklistItems(body string) iter.Seq[ChecklistItem] {
	return func(yield func(ChecklistItem) bool) {
		for line := range strings.Lines(body) {
			match := checklistLinePattern.FindStringSubmatch(strings.TrimRight(line, "\r\n"))
			if match == nil {
				continue
			}
			item := ChecklistItem{
				Login:     match[2],
				Completed: match[1] != " ",
			}
			if !yield(item) {
				return
			}
		}
	}
}

// UniqueReviewers collapses repeated logins. Logins compare case-insensitively,
// keep the spelling and position of their first mention, and take the
// completion state of their last mention.
func UniqueReviewers(items iter.Seq[ChecklistItem]) []ChecklistItem {
	var reviewers []ChecklistItem
	index := make(map[string]int)

	for item := range items {
		key := strings.ToLower(item.Login)
		if i, ok := index[key]; ok {
			reviewers[i].Completed = item.Completed
			continue
		}
		index[key] = len(reviewers)
		reviewers = append(reviewers, item)
	}

	return reviewers
}

// ParseChecklist returns the unique reviewers mentioned in body
func ParseChecklist(body string) []ChecklistItem {
	return UniqueReviewers(ChecklistItems(body))
}
