package services

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"cardlab-backend/internal/llm"
)

const (
	minRecommendedCards = 3
	maxRecommendedCards = 50
)

const flashcardSystemPrompt = `You are an expert flashcard creator. Generate high-quality flashcards from the text the user provides.

Rules:
- Each flashcard has a front (question or term) and a back (answer or definition)
- Fronts must be between 10 and 500 characters
- Backs must be between 10 and 1000 characters and self-contained
- No two cards may test the same concept
- Prefer questions that require understanding over rote recall

Return ONLY a JSON object with a "flashcards" array. No preamble, no markdown, no backticks.`

// recommendedCardCount derives a target card count from the input length:
// the midpoint of a 5-per-1000-chars floor and a 10-per-1000-chars ceiling,
// clamped to [3, 50].
func recommendedCardCount(textLength int) int {
	low := int(math.Ceil(float64(textLength) / 1000.0 * 5))
	high := int(math.Ceil(float64(textLength) / 1000.0 * 10))
	count := (low + high) / 2

	if count < minRecommendedCards {
		return minRecommendedCards
	}
	if count > maxRecommendedCards {
		return maxRecommendedCards
	}
	return count
}

// buildGenerationMessages produces the fixed system/user message pair for one
// generation request. Pure; the text is embedded as-is.
func buildGenerationMessages(inputText string) []llm.Message {
	count := recommendedCardCount(utf8.RuneCountInString(inputText))

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Generate approximately %d flashcards from the following text. ", count))
	b.WriteString("Answer in the same language as the text.\n\n")
	b.WriteString("---TEXT START---\n")
	b.WriteString(inputText)
	b.WriteString("\n---TEXT END---\n")

	return []llm.Message{
		{Role: llm.RoleSystem, Content: flashcardSystemPrompt},
		{Role: llm.RoleUser, Content: b.String()},
	}
}
