package services

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestChecklistItems(t *testing.T) {
	testCases := []struct {
		name string
		body string
		want []ChecklistItem
	}{
		{
			name: "Unchecked reviewers",
			body: "- [ ] @aergonaut\n- [ ] @BrentW\n",
			want: []ChecklistItem{{Login: "aergonaut"}, {Login: "BrentW"}},
		},
		{
			name: "Checked and unchecked",
			body: "- [ ] @aergonaut\n- [x] @BrentW\n",
			want: []ChecklistItem{{Login: "aergonaut"}, {Login: "BrentW", Completed: true}},
		},
		{
			name: "Uppercase X and trailing text",
			body: "- [X] @octo-cat thanks!",
			want: []ChecklistItem{{Login: "octo-cat", Completed: true}},
		},
		{
			name: "Punctuation after login",
			body: "- [ ] @aergonaut, please look\n- [x] @BrentW: done\n",
			want: []ChecklistItem{{Login: "aergonaut"}, {Login: "BrentW", Completed: true}},
		},
		{
			name: "Team mentions are skipped",
			body: "- [ ] @octo-org/reviewers\n- [ ] @aergonaut\n- [x] @org/team done\n",
			want: []ChecklistItem{{Login: "aergonaut"}},
		},
		{
			name: "Indented items and CRLF",
			body: "Reviewers:\r\n  - [ ] @first_user\r\n\t- [x] @second\r\n",
			want: []ChecklistItem{{Login: "first_user"}, {Login: "second", Completed: true}},
		},
		{
			name: "Duplicates are kept in raw sequence",
			body: "- [ ] @BrentW\n- [ ] @BrentW\n",
			want: []ChecklistItem{{Login: "BrentW"}, {Login: "BrentW"}},
		},
		{
			name: "Non matching lines",
			body: "## Summary\n- [ ] write docs\n* [ ] @starbullet\n- [] @nospace\n@plain mention\n[x] @nodash",
			want: nil,
		},
		{
			name: "Empty body",
			body: "",
			want: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := slices.Collect(ChecklistItems(tc.body))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ChecklistItems() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestChecklistItemsStopsEarly(t *testing.T) {
	var seen []string
	for item := range ChecklistItems("- [ ] @one\n- [ ] @two\n- [ ] @three\n") {
		seen = append(seen, item.Login)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"one", "two"}, seen)
}

func TestParseChecklist(t *testing.T) {
	testCases := []struct {
		name string
		body string
		want []ChecklistItem
	}{
		{
			name: "Duplicate login counts once",
			body: "- [ ] @BrentW\n- [ ] @BrentW\n",
			want: []ChecklistItem{{Login: "BrentW"}},
		},
		{
			name: "Last occurrence state wins",
			body: "- [ ] @BrentW\n- [ ] @aergonaut\n- [x] @BrentW\n",
			want: []ChecklistItem{{Login: "BrentW", Completed: true}, {Login: "aergonaut"}},
		},
		{
			name: "Later unchecked mention reopens review",
			body: "- [x] @BrentW\n- [ ] @brentw\n",
			want: []ChecklistItem{{Login: "BrentW"}},
		},
		{
			name: "No checklist",
			body: "Just a description",
			want: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseChecklist(tc.body)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ParseChecklist() mismatch (-want +got):\n%s", diff)
			}
			raw := slices.Collect(ChecklistItems(tc.body))
			assert.LessOrEqual(t, len(got), len(raw))
		})
	}
}
