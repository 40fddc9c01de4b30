package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"cardlab-backend/internal/models"
)

type FlashcardRepo struct {
	pool *pgxpool.Pool
}

func NewFlashcardRepo(pool *pgxpool.Pool) *FlashcardRepo {
	return &FlashcardRepo{pool: pool}
}

func (r *FlashcardRepo) Create(ctx context.Context, f *models.Flashcard) error {
	f.ID = uuid.New()

	query := `INSERT INTO flashcards (id, user_id, front_text, back_text, generation_batch_id, is_ai_generated, was_edited)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		f.ID, f.UserID, f.FrontText, f.BackText, f.GenerationBatchID, f.IsAIGenerated, f.WasEdited,
	).Scan(&f.CreatedAt, &f.UpdatedAt)
}

func (r *FlashcardRepo) CreateMany(ctx context.Context, cards []*models.Flashcard) error {
	for _, f := range cards {
		if err := r.Create(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func (r *FlashcardRepo) GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.Flashcard, error) {
	f := &models.Flashcard{}
	query := `SELECT id, user_id, front_text, back_text, generation_batch_id, is_ai_generated, was_edited, created_at, updated_at
		FROM flashcards WHERE id = $1 AND user_id = $2`

	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&f.ID, &f.UserID, &f.FrontText, &f.BackText, &f.GenerationBatchID,
		&f.IsAIGenerated, &f.WasEdited, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *FlashcardRepo) ListByUser(ctx context.Context, userID uuid.UUID, page, perPage int) ([]*models.Flashcard, error) {
	query := `SELECT id, user_id, front_text, back_text, generation_batch_id, is_ai_generated, was_edited, created_at, updated_at
		FROM flashcards WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []*models.Flashcard
	for rows.Next() {
		f := &models.Flashcard{}
		err := rows.Scan(
			&f.ID, &f.UserID, &f.FrontText, &f.BackText, &f.GenerationBatchID,
			&f.IsAIGenerated, &f.WasEdited, &f.CreatedAt, &f.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		cards = append(cards, f)
	}
	return cards, rows.Err()
}

func (r *FlashcardRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM flashcards WHERE user_id = $1", userID).Scan(&count)
	return count, err
}

func (r *FlashcardRepo) Update(ctx context.Context, f *models.Flashcard) error {
	query := `UPDATE flashcards SET front_text = $1, back_text = $2, was_edited = $3, updated_at = NOW()
		WHERE id = $4 AND user_id = $5 RETURNING updated_at`

	return r.pool.QueryRow(ctx, query,
		f.FrontText, f.BackText, f.WasEdited, f.ID, f.UserID,
	).Scan(&f.UpdatedAt)
}

func (r *FlashcardRepo) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM flashcards WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
