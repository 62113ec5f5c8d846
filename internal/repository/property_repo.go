package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"propertybot/internal/models"
)

type PropertyRepo struct {
	pool *pgxpool.Pool
}

func NewPropertyRepo(pool *pgxpool.Pool) *PropertyRepo {
	return &PropertyRepo{pool: pool}
}

// List returns every listing, oldest first, so catalog order is stable
// across restarts.
func (r *PropertyRepo) List(ctx context.Context) ([]models.Property, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, price::float8, location, description, features,
		       bedrooms, bathrooms, area_sqm::float8, image_url
		FROM properties
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var props []models.Property
	for rows.Next() {
		var p models.Property
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Price, &p.Location, &p.Description, &p.Features,
			&p.Bedrooms, &p.Bathrooms, &p.AreaSqm, &p.ImageURL,
		); err != nil {
			return nil, err
		}
		props = append(props, p)
	}
	return props, rows.Err()
}

// Upsert inserts p or refreshes the listing with the same title.
func (r *PropertyRepo) Upsert(ctx context.Context, p *models.Property) error {
	features := p.Features
	if features == nil {
		features = []string{}
	}

	query := `
		INSERT INTO properties (title, price, location, description, features, bedrooms, bathrooms, area_sqm, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (title) DO UPDATE SET
			price = EXCLUDED.price,
			location = EXCLUDED.location,
			description = EXCLUDED.description,
			features = EXCLUDED.features,
			bedrooms = EXCLUDED.bedrooms,
			bathrooms = EXCLUDED.bathrooms,
			area_sqm = EXCLUDED.area_sqm,
			image_url = EXCLUDED.image_url,
			updated_at = NOW()
		RETURNING id
	`

	if err := r.pool.QueryRow(ctx, query,
		p.Title, p.Price, p.Location, p.Description, features,
		p.Bedrooms, p.Bathrooms, p.AreaSqm, p.ImageURL,
	).Scan(&p.ID); err != nil {
		return fmt.Errorf("failed to upsert property %q: %w", p.Title, err)
	}
	return nil
}
