package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"cardlab-backend/internal/llm"
	"cardlab-backend/internal/models"
)

const (
	// Per-user flashcard capacity, counted across manual and AI cards.
	maxFlashcardsPerUser = 500

	// Service-level bounds on the trimmed input. The HTTP boundary applies
	// its own, tighter 1000-char floor; both checks are kept.
	minInputLength = 100
	maxInputLength = 10000

	apiKeyEnvVar = "OPENROUTER_API_KEY"
)

// ChatClient is the slice of the llm client the service needs.
type ChatClient interface {
	Chat(ctx context.Context, messages []llm.Message, opts *llm.RequestOptions) (*llm.Response, error)
}

// BatchStore persists generation batches.
type BatchStore interface {
	Create(ctx context.Context, batch *models.AIGenerationBatch) error
	GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.AIGenerationBatch, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.AIGenerationBatch, error)
	UpdateReviewCounts(ctx context.Context, id uuid.UUID, accepted, rejected, edited int) error
}

// FlashcardStore persists reviewed flashcards.
type FlashcardStore interface {
	CreateMany(ctx context.Context, cards []*models.Flashcard) error
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
}

type GenerationService struct {
	cfg     llm.Config
	batches BatchStore
	cards   FlashcardStore

	// newClient is swapped out in tests.
	newClient func(cfg llm.Config) (ChatClient, error)
}

func NewGenerationService(cfg llm.Config, batches BatchStore, cards FlashcardStore) *GenerationService {
	return &GenerationService{
		cfg:     cfg,
		batches: batches,
		cards:   cards,
		newClient: func(cfg llm.Config) (ChatClient, error) {
			return llm.NewClient(cfg)
		},
	}
}

// generatedFlashcards is the structured-output payload the model must return.
type generatedFlashcards struct {
	Flashcards []struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	} `json:"flashcards"`
}

func flashcardResponseFormat() *llm.ResponseFormat {
	return &llm.ResponseFormat{
		Name:   "flashcards",
		Strict: true,
		Schema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"flashcards": map[string]interface{}{
					"type":     "array",
					"minItems": 1,
					"maxItems": 50,
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"question": map[string]interface{}{"type": "string", "minLength": 10, "maxLength": 500},
							"answer":   map[string]interface{}{"type": "string", "minLength": 10, "maxLength": 1000},
						},
						"required":             []string{"question", "answer"},
						"additionalProperties": false,
					},
				},
			},
			"required":             []string{"flashcards"},
			"additionalProperties": false,
		},
		Validate: func(raw json.RawMessage) (interface{}, error) {
			var out generatedFlashcards
			if err := json.Unmarshal(raw, &out); err != nil {
				return nil, err
			}
			if len(out.Flashcards) == 0 {
				return nil, fmt.Errorf("flashcards array is empty")
			}
			if len(out.Flashcards) > 50 {
				return nil, fmt.Errorf("flashcards array exceeds 50 items")
			}
			for i, c := range out.Flashcards {
				q := utf8.RuneCountInString(c.Question)
				a := utf8.RuneCountInString(c.Answer)
				if q < 10 || q > 500 {
					return nil, fmt.Errorf("flashcard %d question length %d outside [10,500]", i, q)
				}
				if a < 10 || a > 1000 {
					return nil, fmt.Errorf("flashcard %d answer length %d outside [10,1000]", i, a)
				}
			}
			return &out, nil
		},
	}
}

// Generate runs one AI generation round: validates the input, calls the chat
// API with a strict JSON schema, records the batch, and returns the previews.
// The API key resolves parameter → configured default → environment.
func (s *GenerationService) Generate(ctx context.Context, userID uuid.UUID, inputText, apiKey string) (*models.GenerationResponse, error) {
	trimmed := strings.TrimSpace(inputText)
	length := utf8.RuneCountInString(trimmed)
	if length < minInputLength || length > maxInputLength {
		return nil, &ValidationError{Fields: map[string]string{
			"input_text": fmt.Sprintf("Input text must be between %d and %d characters", minInputLength, maxInputLength),
		}}
	}

	key := apiKey
	if key == "" {
		key = s.cfg.APIKey
	}
	if key == "" {
		key = os.Getenv(apiKeyEnvVar)
	}
	if key == "" {
		return nil, &ConfigurationError{Message: "No AI API key is configured"}
	}

	cfg := s.cfg
	cfg.APIKey = key
	client, err := s.newClient(cfg)
	if err != nil {
		return nil, &ConfigurationError{Message: err.Error()}
	}

	start := time.Now()
	resp, err := client.Chat(ctx, buildGenerationMessages(trimmed), &llm.RequestOptions{
		ResponseFormat: flashcardResponseFormat(),
	})
	if err != nil {
		return nil, mapChatError(err)
	}

	payload, ok := resp.Parsed.(*generatedFlashcards)
	if !ok || payload == nil || len(payload.Flashcards) == 0 {
		return nil, &GenerationError{Message: "The AI service returned no flashcards. Please try again."}
	}

	previews := make([]models.GeneratedCardPreview, len(payload.Flashcards))
	for i, c := range payload.Flashcards {
		previews[i] = models.GeneratedCardPreview{
			Index:     i,
			FrontText: c.Question,
			BackText:  c.Answer,
		}
	}

	modelUsed := resp.Model
	if modelUsed == "" {
		modelUsed = cfg.Model
	}

	batch := &models.AIGenerationBatch{
		UserID:              userID,
		GeneratedAt:         time.Now().UTC(),
		InputTextLength:     length,
		TotalCardsGenerated: len(previews),
		TimeTakenMs:         int(time.Since(start).Milliseconds()),
		ModelUsed:           modelUsed,
	}
	if err := s.batches.Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to record generation batch: %w", err)
	}

	return &models.GenerationResponse{
		BatchID:             batch.ID,
		GeneratedAt:         batch.GeneratedAt,
		InputTextLength:     batch.InputTextLength,
		GeneratedCards:      previews,
		TotalCardsGenerated: batch.TotalCardsGenerated,
		TimeTakenMs:         batch.TimeTakenMs,
		ModelUsed:           batch.ModelUsed,
	}, nil
}

// mapChatError reclassifies chat client failures into service errors with
// user-facing messages. Domain errors pass through unchanged.
func mapChatError(err error) error {
	var llmErr *llm.Error
	if errors.As(err, &llmErr) {
		switch llmErr.Kind {
		case llm.KindConfig:
			return &ConfigurationError{Message: llmErr.Message}
		case llm.KindRateLimit:
			return &GenerationError{Message: "The AI service is receiving too many requests. Please try again in a moment."}
		case llm.KindValidation:
			return &GenerationError{Message: "The AI service returned an unexpected response. Please try again."}
		default:
			return &GenerationError{Message: "The AI service is temporarily unavailable. Please try again later."}
		}
	}

	switch err.(type) {
	case *ValidationError, *ConfigurationError, *GenerationError, *NotFoundError, *ConflictError, *LimitExceededError:
		return err
	}
	return &GenerationError{Message: "The AI service is temporarily unavailable. Please try again later."}
}

func (s *GenerationService) ListBatches(ctx context.Context, userID uuid.UUID) (*models.BatchListResponse, error) {
	batches, err := s.batches.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if batches == nil {
		batches = []models.AIGenerationBatch{}
	}
	return &models.BatchListResponse{Batches: batches}, nil
}

func (s *GenerationService) GetBatch(ctx context.Context, userID, batchID uuid.UUID) (*models.AIGenerationBatch, error) {
	batch, err := s.batches.GetByIDAndUser(ctx, batchID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Generation batch not found"}
		}
		return nil, err
	}
	return batch, nil
}

// Review applies a user's accept/reject/edit decisions to a batch exactly
// once, persisting accepted and edited cards. Index uniqueness is enforced by
// the HTTP boundary; this layer checks domain bounds only.
func (s *GenerationService) Review(ctx context.Context, batchID, userID uuid.UUID, decisions []models.ReviewDecision) (*models.ReviewFlashcardsResponse, error) {
	batch, err := s.batches.GetByIDAndUser(ctx, batchID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Generation batch not found"}
		}
		return nil, err
	}

	if batch.IsReviewed() {
		return nil, &ConflictError{Message: "This batch has already been reviewed"}
	}

	maxInvalid := -1
	for _, d := range decisions {
		if d.Index >= batch.TotalCardsGenerated && d.Index > maxInvalid {
			maxInvalid = d.Index
		}
	}
	if maxInvalid >= 0 {
		return nil, &ValidationError{Fields: map[string]string{
			"decisions": fmt.Sprintf("Decision index %d is out of range: the batch has %d cards", maxInvalid, batch.TotalCardsGenerated),
		}}
	}

	var accepted, rejected, edited int
	creation := make([]models.ReviewDecision, 0, len(decisions))
	for _, d := range decisions {
		switch d.Action {
		case models.ActionAccept:
			accepted++
			creation = append(creation, d)
		case models.ActionReject:
			rejected++
		case models.ActionEdit:
			edited++
			creation = append(creation, d)
		}
	}

	current, err := s.cards.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current+len(creation) > maxFlashcardsPerUser {
		return nil, &LimitExceededError{
			Message:      fmt.Sprintf("Accepting these cards would exceed your limit of %d flashcards", maxFlashcardsPerUser),
			CurrentCount: current,
			Limit:        maxFlashcardsPerUser,
			Suggestion:   "Delete some existing flashcards or accept fewer cards from this batch.",
		}
	}

	cards := make([]*models.Flashcard, 0, len(creation))
	for _, d := range creation {
		cards = append(cards, &models.Flashcard{
			UserID:            userID,
			FrontText:         d.FrontText,
			BackText:          d.BackText,
			GenerationBatchID: &batch.ID,
			IsAIGenerated:     true,
			WasEdited:         d.Action == models.ActionEdit,
		})
	}

	if len(cards) > 0 {
		if err := s.cards.CreateMany(ctx, cards); err != nil {
			return nil, err
		}
	}

	// Marks the batch reviewed for future calls. Runs after the insert with
	// no shared transaction: a failure here leaves the cards created but the
	// batch unreviewed (known consistency gap).
	if err := s.batches.UpdateReviewCounts(ctx, batch.ID, accepted, rejected, edited); err != nil {
		return nil, err
	}

	created := make([]models.FlashcardDTO, len(cards))
	for i, c := range cards {
		created[i] = c.DTO()
	}

	return &models.ReviewFlashcardsResponse{
		BatchID:           batch.ID,
		CardsAccepted:     accepted,
		CardsRejected:     rejected,
		CardsEdited:       edited,
		CreatedFlashcards: created,
	}, nil
}
