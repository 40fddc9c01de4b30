package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"cardlab-backend/internal/models"
)

type BatchRepo struct {
	pool *pgxpool.Pool
}

func NewBatchRepo(pool *pgxpool.Pool) *BatchRepo {
	return &BatchRepo{pool: pool}
}

func (r *BatchRepo) Create(ctx context.Context, b *models.AIGenerationBatch) error {
	b.ID = uuid.New()

	query := `INSERT INTO ai_generation_batches
		(id, user_id, generated_at, input_text_length, total_cards_generated, time_taken_ms, model_used)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		b.ID, b.UserID, b.GeneratedAt, b.InputTextLength, b.TotalCardsGenerated, b.TimeTakenMs, b.ModelUsed,
	)
	return err
}

// GetByIDAndUser scopes the lookup to the owner; a foreign batch is
// indistinguishable from a missing one.
func (r *BatchRepo) GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.AIGenerationBatch, error) {
	b := &models.AIGenerationBatch{}
	query := `SELECT id, user_id, generated_at, input_text_length, total_cards_generated,
		cards_accepted, cards_rejected, cards_edited, time_taken_ms, model_used
		FROM ai_generation_batches WHERE id = $1 AND user_id = $2`

	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&b.ID, &b.UserID, &b.GeneratedAt, &b.InputTextLength, &b.TotalCardsGenerated,
		&b.CardsAccepted, &b.CardsRejected, &b.CardsEdited, &b.TimeTakenMs, &b.ModelUsed,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BatchRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.AIGenerationBatch, error) {
	query := `SELECT id, user_id, generated_at, input_text_length, total_cards_generated,
		cards_accepted, cards_rejected, cards_edited, time_taken_ms, model_used
		FROM ai_generation_batches WHERE user_id = $1 ORDER BY generated_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []models.AIGenerationBatch
	for rows.Next() {
		b := models.AIGenerationBatch{}
		err := rows.Scan(
			&b.ID, &b.UserID, &b.GeneratedAt, &b.InputTextLength, &b.TotalCardsGenerated,
			&b.CardsAccepted, &b.CardsRejected, &b.CardsEdited, &b.TimeTakenMs, &b.ModelUsed,
		)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

func (r *BatchRepo) UpdateReviewCounts(ctx context.Context, id uuid.UUID, accepted, rejected, edited int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE ai_generation_batches SET cards_accepted = $1, cards_rejected = $2, cards_edited = $3 WHERE id = $4`,
		accepted, rejected, edited, id,
	)
	return err
}
