package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"cardlab-backend/internal/models"
)

type fakeCardStore struct {
	cards map[uuid.UUID]*models.Flashcard
}

func newFakeCardStore() *fakeCardStore {
	return &fakeCardStore{cards: map[uuid.UUID]*models.Flashcard{}}
}

func (f *fakeCardStore) Create(ctx context.Context, c *models.Flashcard) error {
	c.ID = uuid.New()
	f.cards[c.ID] = c
	return nil
}

func (f *fakeCardStore) GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.Flashcard, error) {
	c, ok := f.cards[id]
	if !ok || c.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCardStore) ListByUser(ctx context.Context, userID uuid.UUID, page, perPage int) ([]*models.Flashcard, error) {
	var out []*models.Flashcard
	for _, c := range f.cards {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCardStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	n := 0
	for _, c := range f.cards {
		if c.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeCardStore) Update(ctx context.Context, c *models.Flashcard) error {
	existing, ok := f.cards[c.ID]
	if !ok || existing.UserID != c.UserID {
		return pgx.ErrNoRows
	}
	f.cards[c.ID] = c
	return nil
}

func (f *fakeCardStore) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	c, ok := f.cards[id]
	if !ok || c.UserID != userID {
		return false, nil
	}
	delete(f.cards, id)
	return true, nil
}

func TestFlashcardCreate_Valid(t *testing.T) {
	store := newFakeCardStore()
	svc := NewFlashcardService(store)
	userID := uuid.New()

	card, err := svc.Create(context.Background(), userID, models.CreateFlashcardRequest{
		FrontText: "What is a goroutine?",
		BackText:  "A lightweight thread managed by the Go runtime.",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if card.IsAIGenerated {
		t.Error("Manual card should not be marked AI-generated")
	}
	if len(store.cards) != 1 {
		t.Fatalf("Expected 1 stored card, got %d", len(store.cards))
	}
}

func TestFlashcardCreate_TextBounds(t *testing.T) {
	tests := []struct {
		name      string
		front     string
		back      string
		wantField string
	}{
		{"front too short", "short", strings.Repeat("a", 20), "front_text"},
		{"front too long", strings.Repeat("a", 501), strings.Repeat("a", 20), "front_text"},
		{"back too short", strings.Repeat("a", 20), "short", "back_text"},
		{"back too long", strings.Repeat("a", 20), strings.Repeat("a", 1001), "back_text"},
	}

	svc := NewFlashcardService(newFakeCardStore())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), uuid.New(), models.CreateFlashcardRequest{
				FrontText: tc.front,
				BackText:  tc.back,
			})
			verr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if verr.Fields[tc.wantField] == "" {
				t.Errorf("Expected a field error on %q, got %v", tc.wantField, verr.Fields)
			}
		})
	}
}

func TestFlashcardCreate_AtCapacity(t *testing.T) {
	store := newFakeCardStore()
	svc := NewFlashcardService(store)
	userID := uuid.New()

	for i := 0; i < maxFlashcardsPerUser; i++ {
		store.cards[uuid.New()] = &models.Flashcard{UserID: userID}
	}

	_, err := svc.Create(context.Background(), userID, models.CreateFlashcardRequest{
		FrontText: "What is a channel in Go?",
		BackText:  "A typed conduit for sending values between goroutines.",
	})
	lerr, ok := err.(*LimitExceededError)
	if !ok {
		t.Fatalf("Expected LimitExceededError, got %v", err)
	}
	if lerr.CurrentCount != maxFlashcardsPerUser || lerr.Limit != maxFlashcardsPerUser {
		t.Errorf("Expected counts %d/%d, got %d/%d", maxFlashcardsPerUser, maxFlashcardsPerUser, lerr.CurrentCount, lerr.Limit)
	}
}

func TestFlashcardUpdate_PartialFields(t *testing.T) {
	store := newFakeCardStore()
	svc := NewFlashcardService(store)
	userID := uuid.New()

	card := &models.Flashcard{
		UserID:    userID,
		FrontText: "What is a mutex used for?",
		BackText:  "Protecting shared state from concurrent access.",
	}
	store.Create(context.Background(), card)

	newBack := "Serializing access to shared state across goroutines."
	updated, err := svc.Update(context.Background(), userID, card.ID, models.UpdateFlashcardRequest{
		BackText: &newBack,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.FrontText != card.FrontText {
		t.Errorf("Front text should be unchanged, got %q", updated.FrontText)
	}
	if updated.BackText != newBack {
		t.Errorf("Expected updated back text, got %q", updated.BackText)
	}
}

func TestFlashcardUpdate_MarksAICardEdited(t *testing.T) {
	store := newFakeCardStore()
	svc := NewFlashcardService(store)
	userID := uuid.New()

	card := &models.Flashcard{
		UserID:        userID,
		FrontText:     "What does the select statement do?",
		BackText:      "Waits on multiple channel operations at once.",
		IsAIGenerated: true,
	}
	store.Create(context.Background(), card)

	newFront := "What is the select statement for in Go?"
	updated, err := svc.Update(context.Background(), userID, card.ID, models.UpdateFlashcardRequest{
		FrontText: &newFront,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !updated.WasEdited {
		t.Error("Editing an AI-generated card should set was_edited")
	}
}

func TestFlashcardUpdate_NoFields(t *testing.T) {
	store := newFakeCardStore()
	svc := NewFlashcardService(store)
	userID := uuid.New()

	card := &models.Flashcard{
		UserID:    userID,
		FrontText: "What is an interface in Go?",
		BackText:  "A set of method signatures a type can satisfy implicitly.",
	}
	store.Create(context.Background(), card)

	_, err := svc.Update(context.Background(), userID, card.ID, models.UpdateFlashcardRequest{})
	if _, ok := err.(*ValidationError); !ok {
		t.Fatalf("Expected ValidationError for empty update, got %v", err)
	}
}

func TestFlashcardGet_ForeignCardNotFound(t *testing.T) {
	store := newFakeCardStore()
	svc := NewFlashcardService(store)

	card := &models.Flashcard{
		UserID:    uuid.New(),
		FrontText: "What is a defer statement?",
		BackText:  "Schedules a call to run when the function returns.",
	}
	store.Create(context.Background(), card)

	_, err := svc.Get(context.Background(), uuid.New(), card.ID)
	if _, ok := err.(*NotFoundError); !ok {
		t.Fatalf("Expected NotFoundError for foreign card, got %v", err)
	}
}

func TestFlashcardDelete(t *testing.T) {
	store := newFakeCardStore()
	svc := NewFlashcardService(store)
	userID := uuid.New()

	card := &models.Flashcard{
		UserID:    userID,
		FrontText: "What is a slice header?",
		BackText:  "A pointer, length and capacity describing an array segment.",
	}
	store.Create(context.Background(), card)

	if err := svc.Delete(context.Background(), userID, card.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := svc.Delete(context.Background(), userID, card.ID); err == nil {
		t.Fatal("Expected NotFoundError on second delete")
	}
}

func TestFlashcardList_Defaults(t *testing.T) {
	store := newFakeCardStore()
	svc := NewFlashcardService(store)
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		store.cards[uuid.New()] = &models.Flashcard{UserID: userID}
	}

	resp, err := svc.List(context.Background(), userID, 0, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if resp.Pagination.Page != 1 || resp.Pagination.PerPage != defaultPerPage {
		t.Errorf("Expected default pagination 1/%d, got %d/%d", defaultPerPage, resp.Pagination.Page, resp.Pagination.PerPage)
	}
	if resp.Pagination.Total != 3 {
		t.Errorf("Expected total 3, got %d", resp.Pagination.Total)
	}
	if len(resp.Flashcards) != 3 {
		t.Errorf("Expected 3 flashcards, got %d", len(resp.Flashcards))
	}
}
