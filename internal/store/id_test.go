package store

import (
	"regexp"
	"strings"
	"testing"
)

var idPattern = regexp.MustCompile(`^[a-z]+-[0-9a-z]{4}$`)

func TestGenerateID_ShapeAndPrefix(t *testing.T) {
	id, err := GenerateTaskID(nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.HasPrefix(id, "td-") {
		t.Fatalf("id = %q, want td- prefix", id)
	}
	if !idPattern.MatchString(id) {
		t.Fatalf("id = %q, want prefix-xxxx base36 shape", id)
	}

	id, err = GenerateAttachmentID(nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.HasPrefix(id, "at-") {
		t.Fatalf("id = %q, want at- prefix", id)
	}
}

func TestGenerateID_RetriesOnCollision(t *testing.T) {
	calls := 0
	id, err := GenerateID("td", func(candidate string) (bool, error) {
		calls++
		// First two candidates "exist"; the third is free.
		return calls < 3, nil
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if id == "" {
		t.Fatal("expected an id after retry")
	}
}

func TestGenerateID_GivesUpAfterMaxAttempts(t *testing.T) {
	_, err := GenerateID("td", func(string) (bool, error) { return true, nil })
	if err == nil {
		t.Fatal("expected exhaustion error")
	}
}

func TestGenerateID_RequiresPrefix(t *testing.T) {
	if _, err := GenerateID("", nil); err == nil {
		t.Fatal("expected prefix error")
	}
}
