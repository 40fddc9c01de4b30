package models

import (
	"time"

	"github.com/google/uuid"
)

type Flashcard struct {
	ID                uuid.UUID  `json:"id"`
	UserID            uuid.UUID  `json:"user_id"`
	FrontText         string     `json:"front_text"`
	BackText          string     `json:"back_text"`
	GenerationBatchID *uuid.UUID `json:"generation_batch_id"`
	IsAIGenerated     bool       `json:"is_ai_generated"`
	WasEdited         bool       `json:"was_edited"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// FlashcardDTO is the public shape returned to clients. The owner column
// never leaves the API.
type FlashcardDTO struct {
	ID                uuid.UUID  `json:"id"`
	FrontText         string     `json:"front_text"`
	BackText          string     `json:"back_text"`
	GenerationBatchID *uuid.UUID `json:"generation_batch_id"`
	IsAIGenerated     bool       `json:"is_ai_generated"`
	WasEdited         bool       `json:"was_edited"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (f *Flashcard) DTO() FlashcardDTO {
	return FlashcardDTO{
		ID:                f.ID,
		FrontText:         f.FrontText,
		BackText:          f.BackText,
		GenerationBatchID: f.GenerationBatchID,
		IsAIGenerated:     f.IsAIGenerated,
		WasEdited:         f.WasEdited,
		CreatedAt:         f.CreatedAt,
		UpdatedAt:         f.UpdatedAt,
	}
}

type CreateFlashcardRequest struct {
	FrontText string `json:"front_text"`
	BackText  string `json:"back_text"`
}

type UpdateFlashcardRequest struct {
	FrontText *string `json:"front_text"`
	BackText  *string `json:"back_text"`
}

type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
}

type FlashcardListResponse struct {
	Flashcards []FlashcardDTO `json:"flashcards"`
	Pagination Pagination     `json:"pagination"`
}
