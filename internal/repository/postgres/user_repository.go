package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/orbitapp/orbit-backend/internal/domain"
	"github.com/orbitapp/orbit-backend/internal/repository"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `
	id, username, gender, bio, birthdate, profile_image,
	favorite_genres, platforms, email_consent, survey_completed,
	is_online, is_admin, done_review, last_seen, created_at
`

func scanUser(row interface {
	Scan(dest ...interface{}) error
}) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Gender, &user.Bio, &user.Birthdate,
		&user.ProfileImage, pq.Array(&user.FavoriteGenres), pq.Array(&user.Platforms),
		&user.EmailConsent, &user.SurveyCompleted, &user.IsOnline, &user.IsAdmin,
		&user.DoneReview, &user.LastSeen, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, username, birthdate, email_consent)
		VALUES ($1, $2, $3, $4)
		RETURNING last_seen, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Birthdate, user.EmailConsent,
	).Scan(&user.LastSeen, &user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return domain.ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET username = $1, gender = $2, bio = $3, profile_image = $4,
		    favorite_genres = $5, platforms = $6, email_consent = $7
		WHERE id = $8
	`
	result, err := r.db.ExecContext(ctx, query,
		user.Username, user.Gender, user.Bio, user.ProfileImage,
		pq.Array(user.FavoriteGenres), pq.Array(user.Platforms),
		user.EmailConsent, user.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(result, domain.ErrUserNotFound)
}

func (r *userRepository) CompleteSurvey(ctx context.Context, userID string, upd *repository.SurveyUpdate) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE users
		SET gender = $1, bio = $2, favorite_genres = $3, platforms = $4,
		    email_consent = $5, survey_completed = TRUE
		WHERE id = $6 AND survey_completed = FALSE
	`
	result, err := tx.ExecContext(ctx, query,
		upd.Gender, upd.Bio, pq.Array(upd.FavoriteGenres), pq.Array(upd.Platforms),
		upd.EmailConsent, userID,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Distinguish a missing user from a repeated submission.
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT TRUE FROM users WHERE id = $1`, userID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrUserNotFound
			}
			return err
		}
		return domain.ErrSurveyCompleted
	}

	for _, gameID := range upd.SelectedGames {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO user_games (user_id, game_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, game_id) DO NOTHING
		`, userID, gameID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *userRepository) ListDiscoverable(ctx context.Context) ([]*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email_consent = TRUE AND survey_completed = TRUE
	`
	return r.queryUsers(ctx, query)
}

func (r *userRepository) SetOnline(ctx context.Context, id string, online bool) error {
	query := `UPDATE users SET is_online = $1, last_seen = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, online, id)
	if err != nil {
		return err
	}
	return requireRow(result, domain.ErrUserNotFound)
}

func (r *userRepository) SetAdmin(ctx context.Context, id string, admin bool) error {
	query := `UPDATE users SET is_admin = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, admin, id)
	if err != nil {
		return err
	}
	return requireRow(result, domain.ErrUserNotFound)
}

func (r *userRepository) Heartbeat(ctx context.Context, id string) error {
	query := `UPDATE users SET last_seen = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return requireRow(result, domain.ErrUserNotFound)
}

func (r *userRepository) UpdateProfileImage(ctx context.Context, id string, imagePath string) error {
	query := `UPDATE users SET profile_image = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, imagePath, id)
	if err != nil {
		return err
	}
	return requireRow(result, domain.ErrUserNotFound)
}

func (r *userRepository) List(ctx context.Context, search string, limit, offset int) ([]*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE ($1 = '' OR username ILIKE '%' || $1 || '%')
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryUsers(ctx, query, search, limit, offset)
}

func (r *userRepository) Count(ctx context.Context, search string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM users WHERE ($1 = '' OR username ILIKE '%' || $1 || '%')`
	err := r.db.GetContext(ctx, &count, query, search)
	return count, err
}

func (r *userRepository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func requireRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
