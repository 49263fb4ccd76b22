package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mathieu-neron/vidsource/internal/model"
)

type SourceRepo struct {
	pool *pgxpool.Pool
}

func NewSourceRepo(pool *pgxpool.Pool) *SourceRepo {
	return &SourceRepo{pool: pool}
}

// ListSources returns all enabled sources in display order.
func (r *SourceRepo) ListSources(ctx context.Context) ([]model.Source, error) {
	query := `
		SELECT key, name, COALESCE(detail, ''), COALESCE(api, '')
		FROM api_sites
		WHERE disabled = false
		ORDER BY sort_order ASC, key ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sources := []model.Source{}
	for rows.Next() {
		var s model.Source
		if err := rows.Scan(&s.Key, &s.Name, &s.Detail, &s.API); err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}
