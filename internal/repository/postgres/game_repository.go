package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/orbitapp/orbit-backend/internal/domain"
	"github.com/orbitapp/orbit-backend/internal/repository"
)

type gameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) repository.GameRepository {
	return &gameRepository{db: db}
}

func (r *gameRepository) Create(ctx context.Context, game *domain.Game) error {
	query := `
		INSERT INTO games (id, title, image, popularity)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, game.ID, game.Title, game.Image, game.Popularity)
	return err
}

func (r *gameRepository) GetByID(ctx context.Context, id string) (*domain.Game, error) {
	var game domain.Game
	query := `SELECT id, title, image, popularity FROM games WHERE id = $1`
	err := r.db.GetContext(ctx, &game, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGameNotFound
		}
		return nil, err
	}
	return &game, nil
}

func (r *gameRepository) List(ctx context.Context, search string, limit, offset int) ([]*domain.Game, error) {
	var games []*domain.Game
	query := `
		SELECT id, title, image, popularity
		FROM games
		WHERE ($1 = '' OR title ILIKE '%' || $1 || '%')
		ORDER BY title
		LIMIT $2 OFFSET $3
	`
	err := r.db.SelectContext(ctx, &games, query, search, limit, offset)
	return games, err
}

func (r *gameRepository) Count(ctx context.Context, search string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM games WHERE ($1 = '' OR title ILIKE '%' || $1 || '%')`
	err := r.db.GetContext(ctx, &count, query, search)
	return count, err
}

func (r *gameRepository) ListPopular(ctx context.Context, limit int) ([]*domain.Game, error) {
	var games []*domain.Game
	query := `
		SELECT id, title, image, popularity
		FROM games
		ORDER BY popularity DESC, title
		LIMIT $1
	`
	err := r.db.SelectContext(ctx, &games, query, limit)
	return games, err
}

func (r *gameRepository) ListPlayedBy(ctx context.Context, userID string) ([]*domain.Game, error) {
	var games []*domain.Game
	query := `
		SELECT g.id, g.title, g.image, g.popularity
		FROM games g
		JOIN user_games ug ON ug.game_id = g.id
		WHERE ug.user_id = $1
		ORDER BY g.title
	`
	err := r.db.SelectContext(ctx, &games, query, userID)
	return games, err
}

// SelectForUser runs the one transactional path of the system: both records
// are verified, popularity is bumped and played membership recorded, or the
// whole thing aborts.
func (r *gameRepository) SelectForUser(ctx context.Context, userID, gameID string) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.GetContext(ctx, &exists, `SELECT TRUE FROM users WHERE id = $1`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrUserNotFound
		}
		return 0, err
	}

	var popularity int
	err = tx.QueryRowContext(ctx, `
		UPDATE games SET popularity = popularity + 1
		WHERE id = $1
		RETURNING popularity
	`, gameID).Scan(&popularity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrGameNotFound
		}
		return 0, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_games (user_id, game_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, game_id) DO NOTHING
	`, userID, gameID)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return popularity, nil
}

func (r *gameRepository) UpdateImage(ctx context.Context, gameID, imagePath string) error {
	query := `UPDATE games SET image = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, imagePath, gameID)
	if err != nil {
		return err
	}
	return requireRow(result, domain.ErrGameNotFound)
}
