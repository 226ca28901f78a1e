package main

import (
	"testing"
)

func TestParseMarkdown_FrontMatterAndListItems(t *testing.T) {
	input := `---
priority: 1
status: in_progress
owner: user-7
---
# Sprint tasks

- Fix the login bug
* Write release notes
-   Trim me
not a list item
`
	frontMatter, items, err := parseMarkdown(input)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("items = %v", items)
	}
	if items[0] != "Fix the login bug" || items[1] != "Write release notes" || items[2] != "Trim me" {
		t.Fatalf("items = %v", items)
	}

	in, err := frontMatterToInput(frontMatter)
	if err != nil {
		t.Fatalf("front matter: %v", err)
	}
	if in.Priority == nil || *in.Priority != 1 {
		t.Fatalf("priority = %v", in.Priority)
	}
	if in.Status == nil || *in.Status != "in_progress" {
		t.Fatalf("status = %v", in.Status)
	}
	if in.OwnerUID != "user-7" {
		t.Fatalf("owner = %q", in.OwnerUID)
	}
}

func TestParseMarkdown_NoFrontMatter(t *testing.T) {
	frontMatter, items, err := parseMarkdown("- only item\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(frontMatter) != 0 {
		t.Fatalf("front matter = %v", frontMatter)
	}
	if len(items) != 1 || items[0] != "only item" {
		t.Fatalf("items = %v", items)
	}
}

func TestParseMarkdown_UnclosedFrontMatterFails(t *testing.T) {
	if _, _, err := parseMarkdown("---\npriority: 2\n- item\n"); err == nil {
		t.Fatal("expected unclosed front matter error")
	}
}

func TestFrontMatterToInput_RejectsNonNumericPriority(t *testing.T) {
	if _, err := frontMatterToInput(map[string]any{"priority": "high"}); err == nil {
		t.Fatal("expected priority type error")
	}
}

func TestFrontMatterToInput_ParsesDueDate(t *testing.T) {
	in, err := frontMatterToInput(map[string]any{"due": "2026-09-30"})
	if err != nil {
		t.Fatalf("front matter: %v", err)
	}
	if in.DueDate == nil {
		t.Fatal("due date not set")
	}
	if got := in.DueDate.Format("2006-01-02"); got != "2026-09-30" {
		t.Fatalf("due = %s", got)
	}
}
