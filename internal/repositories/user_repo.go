package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"khidmaBack/internal/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r *UserRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `
        INSERT INTO users (name, phone, email, password, role, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `
	user.CreatedAt = time.Now()
	user.UpdatedAt = &user.CreatedAt
	result, err := r.DB.ExecContext(ctx, query,
		user.Name, user.Phone, user.Email, user.Password, user.Role,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return models.User{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.User{}, err
	}
	user.ID = int(id)

	if user.Role == models.RoleProvider {
		_, err = r.DB.ExecContext(ctx,
			`INSERT INTO provider_profiles (user_id, bio, years_of_exp, governorate, review_rating, reviews_count) VALUES (?, '', 0, '', 0, 0)`,
			user.ID,
		)
		if err != nil {
			return models.User{}, err
		}
	}
	return user, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int) (models.User, error) {
	var user models.User
	query := `
        SELECT id, name, phone, email, password, role, avatar_path, created_at, updated_at
        FROM users
        WHERE id = ?
    `
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Phone, &user.Email, &user.Password,
		&user.Role, &user.AvatarPath, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	if user.Role == models.RoleProvider {
		if err := r.attachProviderProfile(ctx, &user); err != nil {
			return models.User{}, err
		}
	}
	return user, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	query := `
        SELECT id, name, phone, email, password, role, avatar_path, created_at, updated_at
        FROM users
        WHERE email = ?
    `
	err := r.DB.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Phone, &user.Email, &user.Password,
		&user.Role, &user.AvatarPath, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	if user.Role == models.RoleProvider {
		if err := r.attachProviderProfile(ctx, &user); err != nil {
			return models.User{}, err
		}
	}
	return user, nil
}

func (r *UserRepository) GetUserByPhone(ctx context.Context, phone string) (models.User, error) {
	var user models.User
	query := `
        SELECT id, name, phone, email, password, role, avatar_path, created_at, updated_at
        FROM users
        WHERE phone = ?
    `
	err := r.DB.QueryRowContext(ctx, query, phone).Scan(
		&user.ID, &user.Name, &user.Phone, &user.Email, &user.Password,
		&user.Role, &user.AvatarPath, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	if user.Role == models.RoleProvider {
		if err := r.attachProviderProfile(ctx, &user); err != nil {
			return models.User{}, err
		}
	}
	return user, nil
}

func (r *UserRepository) attachProviderProfile(ctx context.Context, user *models.User) error {
	var p models.Provider
	query := `
        SELECT bio, years_of_exp, governorate, review_rating, reviews_count
        FROM provider_profiles
        WHERE user_id = ?
    `
	err := r.DB.QueryRowContext(ctx, query, user.ID).Scan(
		&p.Bio, &p.YearsOfExp, &p.Governorate, &p.ReviewRating, &p.ReviewsCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		user.Provider = &models.Provider{}
		return nil
	}
	if err != nil {
		return err
	}
	user.Provider = &p
	return nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `
        UPDATE users
        SET name = ?, phone = ?, email = ?, avatar_path = ?, updated_at = ?
        WHERE id = ?
    `
	updatedAt := time.Now()
	user.UpdatedAt = &updatedAt
	result, err := r.DB.ExecContext(ctx, query,
		user.Name, user.Phone, user.Email, user.AvatarPath, user.UpdatedAt, user.ID,
	)
	if err != nil {
		return models.User{}, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return models.User{}, err
	}
	if rowsAffected == 0 {
		return models.User{}, models.ErrUserNotFound
	}
	return r.GetUserByID(ctx, user.ID)
}

func (r *UserRepository) CreateSession(ctx context.Context, s models.Session) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO sessions (user_id, role, refresh_token, expires_at) VALUES (?, ?, ?, ?)`,
		s.UserID, s.Role, s.RefreshToken, s.ExpiresAt,
	)
	return err
}

func (r *UserRepository) GetSessionByToken(ctx context.Context, refreshToken string) (models.Session, error) {
	var s models.Session
	err := r.DB.QueryRowContext(ctx,
		`SELECT user_id, role, refresh_token, expires_at FROM sessions WHERE refresh_token = ?`,
		refreshToken,
	).Scan(&s.UserID, &s.Role, &s.RefreshToken, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, nil
	}
	if err != nil {
		return models.Session{}, err
	}
	return s, nil
}

func (r *UserRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE refresh_token = ?`, refreshToken)
	return err
}

func (r *UserRepository) InsertNotifyToken(ctx context.Context, userID int, token string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO notify_tokens (user_id, token) VALUES (?, ?)`,
		userID, token,
	)
	return err
}

func (r *UserRepository) DeleteNotifyToken(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM notify_tokens WHERE token = ?`, token)
	return err
}

func (r *UserRepository) GetNotifyTokens(ctx context.Context, userID int) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT token FROM notify_tokens WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}
