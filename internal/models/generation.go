package models

import (
	"time"

	"github.com/google/uuid"
)

// AIGenerationBatch tracks one AI generation request and its review outcome.
// A batch counts as reviewed once cards_accepted + cards_rejected > 0; review
// is a one-time transition.
type AIGenerationBatch struct {
	ID                  uuid.UUID `json:"id"`
	UserID              uuid.UUID `json:"user_id"`
	GeneratedAt         time.Time `json:"generated_at"`
	InputTextLength     int       `json:"input_text_length"`
	TotalCardsGenerated int       `json:"total_cards_generated"`
	CardsAccepted       int       `json:"cards_accepted"`
	CardsRejected       int       `json:"cards_rejected"`
	CardsEdited         int       `json:"cards_edited"`
	TimeTakenMs         int       `json:"time_taken_ms"`
	ModelUsed           string    `json:"model_used"`
}

func (b *AIGenerationBatch) IsReviewed() bool {
	return b.CardsAccepted+b.CardsRejected > 0
}

// GeneratedCardPreview is an AI-produced card that has not been persisted yet.
// Index is unique within its batch and zero-based in generation order.
type GeneratedCardPreview struct {
	Index     int    `json:"index"`
	FrontText string `json:"front_text"`
	BackText  string `json:"back_text"`
}

type GenerateFlashcardsRequest struct {
	InputText string `json:"input_text"`
}

type GenerationResponse struct {
	BatchID             uuid.UUID              `json:"batch_id"`
	GeneratedAt         time.Time              `json:"generated_at"`
	InputTextLength     int                    `json:"input_text_length"`
	GeneratedCards      []GeneratedCardPreview `json:"generated_cards"`
	TotalCardsGenerated int                    `json:"total_cards_generated"`
	TimeTakenMs         int                    `json:"time_taken_ms"`
	ModelUsed           string                 `json:"model_used"`
}

// Review decision actions.
const (
	ActionAccept = "accept"
	ActionReject = "reject"
	ActionEdit   = "edit"
)

type ReviewDecision struct {
	Index     int    `json:"index"`
	Action    string `json:"action"`
	FrontText string `json:"front_text"`
	BackText  string `json:"back_text"`
}

type ReviewFlashcardsRequest struct {
	Decisions []ReviewDecision `json:"decisions"`
}

type ReviewFlashcardsResponse struct {
	BatchID           uuid.UUID      `json:"batch_id"`
	CardsAccepted     int            `json:"cards_accepted"`
	CardsRejected     int            `json:"cards_rejected"`
	CardsEdited       int            `json:"cards_edited"`
	CreatedFlashcards []FlashcardDTO `json:"created_flashcards"`
}

type BatchListResponse struct {
	Batches []AIGenerationBatch `json:"batches"`
}
