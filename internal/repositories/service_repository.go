package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"khidmaBack/internal/models"
)

type ServiceRepository struct {
	DB *sql.DB
}

func (r *ServiceRepository) CreateService(ctx context.Context, s models.Service) (models.Service, error) {
	query := `
        INSERT INTO services (provider_id, title, category, description, price, online, status, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `
	now := time.Now()
	result, err := r.DB.ExecContext(ctx, query,
		s.ProviderID, s.Title, s.Category, s.Description, s.Price, s.Online, s.Status, now,
	)
	if err != nil {
		return models.Service{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Service{}, err
	}
	s.ID = int(id)
	s.CreatedAt = now
	return s, nil
}

func (r *ServiceRepository) GetServiceByID(ctx context.Context, id int) (models.Service, error) {
	var s models.Service
	query := `
        SELECT id, provider_id, title, category, description, price, online, status, created_at, updated_at
        FROM services
        WHERE id = ?
    `
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.ProviderID, &s.Title, &s.Category, &s.Description,
		&s.Price, &s.Online, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Service{}, models.ErrServiceNotFound
	}
	if err != nil {
		return models.Service{}, err
	}
	return s, nil
}

func (r *ServiceRepository) ListByProvider(ctx context.Context, providerID int) ([]models.Service, error) {
	query := `
        SELECT id, provider_id, title, category, description, price, online, status, created_at, updated_at
        FROM services
        WHERE provider_id = ?
        ORDER BY created_at DESC
    `
	rows, err := r.DB.QueryContext(ctx, query, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []models.Service
	for rows.Next() {
		var s models.Service
		if err := rows.Scan(&s.ID, &s.ProviderID, &s.Title, &s.Category, &s.Description,
			&s.Price, &s.Online, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}
