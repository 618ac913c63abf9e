package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habitHiveAPI/internal/apperrors"
	"habitHiveAPI/internal/types/habit"
)

// CatalogService reads the administered habit category list. The table
// is seeded out of band and never written by the API.
type CatalogService struct {
	db *pgxpool.Pool
}

func NewCatalogService(db *pgxpool.Pool) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]*habit.Category, error) {
	query := `
	SELECT id, name, kind, description, methods, quote, created_at
	FROM habit_categories
	ORDER BY kind, name
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch habit categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*habit.Category, 0)
	for rows.Next() {
		c := &habit.Category{}
		err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.Kind,
			&c.Description,
			&c.Methods,
			&c.Quote,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit category: %w", err)
		}
		categories = append(categories, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return categories, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, categoryID uuid.UUID) (*habit.Category, error) {
	query := `
	SELECT id, name, kind, description, methods, quote, created_at
	FROM habit_categories
	WHERE id = $1
	`

	c := &habit.Category{}
	err := s.db.QueryRow(ctx, query, categoryID).Scan(
		&c.ID,
		&c.Name,
		&c.Kind,
		&c.Description,
		&c.Methods,
		&c.Quote,
		&c.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("habit category not found")
		}
		return nil, fmt.Errorf("failed to get habit category: %w", err)
	}

	return c, nil
}
