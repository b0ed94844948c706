package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists generation history in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const generationColumns = `id, status, COALESCE(error_kind, ''), strictness, band, COALESCE(brand_kit, ''),
	COALESCE(shot_recipe, ''), base_prompt, COALESCE(prompt, ''), style_fallback, COALESCE(input_mime_type, ''),
	COALESCE(media_key, ''), COALESCE(media_url, ''), duration_ms, created_at`

// CreateGeneration stores the provided record.
func (s *PostgresStore) CreateGeneration(ctx context.Context, input Generation) (Generation, error) {
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	if input.CreatedAt.IsZero() {
		input.CreatedAt = time.Now()
	}

	if _, err := s.pool.Exec(ctx,
		`INSERT INTO generations (id, status, error_kind, strictness, band, brand_kit, shot_recipe, base_prompt, prompt,
			style_fallback, input_mime_type, media_key, media_url, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		input.ID, input.Status, input.ErrorKind, input.Strictness, input.Band, input.BrandKit, input.ShotRecipe,
		input.BasePrompt, input.Prompt, input.StyleFallback, input.InputMIMEType, input.MediaKey, input.MediaURL,
		input.DurationMS, input.CreatedAt); err != nil {
		return Generation{}, fmt.Errorf("insert generation: %w", err)
	}

	return input, nil
}

// ListGenerations returns the most recent matching records.
func (s *PostgresStore) ListGenerations(ctx context.Context, filter ListFilter) ([]Generation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+generationColumns+` FROM generations
		WHERE ($2::text = '' OR status = $2::text)
		ORDER BY created_at DESC LIMIT $1`, clampLimit(filter.Limit), string(filter.Status))
	if err != nil {
		return nil, fmt.Errorf("query generations: %w", err)
	}
	defer rows.Close()

	generations := []Generation{}
	for rows.Next() {
		item, err := scanGeneration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		generations = append(generations, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generations: %w", err)
	}

	return generations, nil
}

// GetGeneration loads one record.
func (s *PostgresStore) GetGeneration(ctx context.Context, id string) (Generation, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+generationColumns+` FROM generations WHERE id = $1`, id)
	item, err := scanGeneration(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Generation{}, ErrNotFound
	}
	if err != nil {
		return Generation{}, fmt.Errorf("get generation: %w", err)
	}
	return item, nil
}

// Close releases database resources.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func scanGeneration(row pgx.Row) (Generation, error) {
	var g Generation
	err := row.Scan(&g.ID, &g.Status, &g.ErrorKind, &g.Strictness, &g.Band, &g.BrandKit, &g.ShotRecipe,
		&g.BasePrompt, &g.Prompt, &g.StyleFallback, &g.InputMIMEType, &g.MediaKey, &g.MediaURL,
		&g.DurationMS, &g.CreatedAt)
	return g, err
}
