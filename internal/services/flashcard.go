package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"cardlab-backend/internal/models"
)

const (
	frontTextMinLength = 10
	frontTextMaxLength = 500
	backTextMinLength  = 10
	backTextMaxLength  = 1000

	defaultPerPage = 20
	maxPerPage     = 100
)

// CardStore is the full flashcard persistence surface used by manual CRUD.
type CardStore interface {
	Create(ctx context.Context, f *models.Flashcard) error
	GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.Flashcard, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page, perPage int) ([]*models.Flashcard, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	Update(ctx context.Context, f *models.Flashcard) error
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)
}

type FlashcardService struct {
	store CardStore
}

func NewFlashcardService(store CardStore) *FlashcardService {
	return &FlashcardService{store: store}
}

func (s *FlashcardService) Create(ctx context.Context, userID uuid.UUID, req models.CreateFlashcardRequest) (*models.FlashcardDTO, error) {
	front := strings.TrimSpace(req.FrontText)
	back := strings.TrimSpace(req.BackText)
	if fields := validateCardText(front, back); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	current, err := s.store.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current >= maxFlashcardsPerUser {
		return nil, &LimitExceededError{
			Message:      fmt.Sprintf("You have reached your limit of %d flashcards", maxFlashcardsPerUser),
			CurrentCount: current,
			Limit:        maxFlashcardsPerUser,
			Suggestion:   "Delete some existing flashcards to make room for new ones.",
		}
	}

	card := &models.Flashcard{
		UserID:    userID,
		FrontText: front,
		BackText:  back,
	}
	if err := s.store.Create(ctx, card); err != nil {
		return nil, err
	}

	dto := card.DTO()
	return &dto, nil
}

func (s *FlashcardService) Get(ctx context.Context, userID, cardID uuid.UUID) (*models.FlashcardDTO, error) {
	card, err := s.store.GetByIDAndUser(ctx, cardID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Flashcard not found"}
		}
		return nil, err
	}
	dto := card.DTO()
	return &dto, nil
}

func (s *FlashcardService) List(ctx context.Context, userID uuid.UUID, page, perPage int) (*models.FlashcardListResponse, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	total, err := s.store.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	cards, err := s.store.ListByUser(ctx, userID, page, perPage)
	if err != nil {
		return nil, err
	}

	dtos := make([]models.FlashcardDTO, len(cards))
	for i, c := range cards {
		dtos[i] = c.DTO()
	}

	return &models.FlashcardListResponse{
		Flashcards: dtos,
		Pagination: models.Pagination{Page: page, PerPage: perPage, Total: total},
	}, nil
}

// Update applies only the fields present in the request. Editing an
// AI-generated card marks it as edited.
func (s *FlashcardService) Update(ctx context.Context, userID, cardID uuid.UUID, req models.UpdateFlashcardRequest) (*models.FlashcardDTO, error) {
	card, err := s.store.GetByIDAndUser(ctx, cardID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Flashcard not found"}
		}
		return nil, err
	}

	if req.FrontText == nil && req.BackText == nil {
		return nil, &ValidationError{Fields: map[string]string{
			"request": "At least one of front_text or back_text is required",
		}}
	}

	front := card.FrontText
	back := card.BackText
	if req.FrontText != nil {
		front = strings.TrimSpace(*req.FrontText)
	}
	if req.BackText != nil {
		back = strings.TrimSpace(*req.BackText)
	}
	if fields := validateCardText(front, back); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	card.FrontText = front
	card.BackText = back
	if card.IsAIGenerated {
		card.WasEdited = true
	}

	if err := s.store.Update(ctx, card); err != nil {
		return nil, err
	}

	dto := card.DTO()
	return &dto, nil
}

func (s *FlashcardService) Delete(ctx context.Context, userID, cardID uuid.UUID) error {
	deleted, err := s.store.Delete(ctx, cardID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return &NotFoundError{Message: "Flashcard not found"}
	}
	return nil
}

func validateCardText(front, back string) map[string]string {
	fields := map[string]string{}
	if n := utf8.RuneCountInString(front); n < frontTextMinLength || n > frontTextMaxLength {
		fields["front_text"] = fmt.Sprintf("Front text must be between %d and %d characters", frontTextMinLength, frontTextMaxLength)
	}
	if n := utf8.RuneCountInString(back); n < backTextMinLength || n > backTextMaxLength {
		fields["back_text"] = fmt.Sprintf("Back text must be between %d and %d characters", backTextMinLength, backTextMaxLength)
	}
	return fields
}
