package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/orbitapp/orbit-backend/internal/domain"
	"github.com/orbitapp/orbit-backend/internal/repository"
)

type reviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// done_review is the write-once guard; enforcing it here instead of in
	// the client closes the double-submit window.
	result, err := tx.ExecContext(ctx, `
		UPDATE users SET done_review = TRUE
		WHERE id = $1 AND done_review = FALSE
	`, review.UserID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT TRUE FROM users WHERE id = $1`, review.UserID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrUserNotFound
			}
			return err
		}
		return domain.ErrReviewExists
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO reviews (user_id, username, rating, body)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, review.UserID, review.Username, review.Rating, review.Body).Scan(&review.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *reviewRepository) GetByUserID(ctx context.Context, userID string) (*domain.Review, error) {
	var review domain.Review
	query := `SELECT user_id, username, rating, body, created_at FROM reviews WHERE user_id = $1`
	err := r.db.GetContext(ctx, &review, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) List(ctx context.Context, search string, limit, offset int) ([]*domain.Review, error) {
	var reviews []*domain.Review
	query := `
		SELECT user_id, username, rating, body, created_at
		FROM reviews
		WHERE ($1 = '' OR username ILIKE '%' || $1 || '%')
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	err := r.db.SelectContext(ctx, &reviews, query, search, limit, offset)
	return reviews, err
}

func (r *reviewRepository) Count(ctx context.Context, search string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM reviews WHERE ($1 = '' OR username ILIKE '%' || $1 || '%')`
	err := r.db.GetContext(ctx, &count, query, search)
	return count, err
}
