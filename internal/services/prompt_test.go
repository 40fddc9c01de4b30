package services

import (
	"strings"
	"testing"

	"cardlab-backend/internal/llm"
)

func TestRecommendedCardCount(t *testing.T) {
	tests := []struct {
		name     string
		length   int
		expected int
	}{
		{"1500 chars", 1500, 11},
		{"clamped to minimum", 100, 3},
		{"zero length", 0, 3},
		{"1000 chars", 1000, 7},
		{"clamped to maximum", 10000, 50},
		{"just above min clamp", 500, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := recommendedCardCount(tc.length)
			if got != tc.expected {
				t.Errorf("recommendedCardCount(%d): expected %d, got %d", tc.length, tc.expected, got)
			}
		})
	}
}

func TestBuildGenerationMessages(t *testing.T) {
	text := strings.Repeat("a", 1500)
	messages := buildGenerationMessages(text)

	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Role != llm.RoleSystem {
		t.Errorf("expected system role first, got %q", messages[0].Role)
	}
	if messages[1].Role != llm.RoleUser {
		t.Errorf("expected user role second, got %q", messages[1].Role)
	}
	if !strings.Contains(messages[1].Content, text) {
		t.Error("expected input text embedded in user message")
	}
	if !strings.Contains(messages[1].Content, "11 flashcards") {
		t.Errorf("expected recommended count 11 in user message")
	}
	if !strings.Contains(messages[1].Content, "same language") {
		t.Error("expected answer-in-input-language instruction")
	}
}
