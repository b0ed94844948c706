package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates that a generation could not be located in the backing store.
var ErrNotFound = errors.New("generation not found")

// Status is the terminal outcome of a generation.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// historyLimit caps how many records are listed or kept in memory.
const historyLimit = 50

// Generation is the audit record of one mockup request. The pipeline only
// writes these; nothing here feeds back into a later generation.
type Generation struct {
	ID            string    `json:"id"`
	Status        Status    `json:"status"`
	ErrorKind     string    `json:"error_kind,omitempty"`
	Strictness    int       `json:"strictness"`
	Band          string    `json:"band"`
	BrandKit      string    `json:"brand_kit,omitempty"`
	ShotRecipe    string    `json:"shot_recipe,omitempty"`
	BasePrompt    string    `json:"base_prompt"`
	Prompt        string    `json:"prompt,omitempty"`
	StyleFallback bool      `json:"style_fallback"`
	InputMIMEType string    `json:"input_mime_type,omitempty"`
	MediaKey      string    `json:"media_key,omitempty"`
	MediaURL      string    `json:"media_url,omitempty"`
	DurationMS    int64     `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

// ListFilter narrows a history listing. The zero value lists the newest
// records of any status.
type ListFilter struct {
	Limit  int
	Status Status
}

// Store defines the persistence behaviors the application relies on.
type Store interface {
	CreateGeneration(ctx context.Context, input Generation) (Generation, error)
	ListGenerations(ctx context.Context, filter ListFilter) ([]Generation, error)
	GetGeneration(ctx context.Context, id string) (Generation, error)
	Close()
}

// NewStore selects a backing store based on whether a database URL is provided.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	if databaseURL == "" {
		return NewInMemoryStore(), nil
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := ensureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS generations (
        id TEXT PRIMARY KEY,
        status TEXT NOT NULL,
        error_kind TEXT,
        strictness INTEGER NOT NULL,
        band TEXT NOT NULL,
        brand_kit TEXT,
        shot_recipe TEXT,
        base_prompt TEXT NOT NULL,
        prompt TEXT,
        style_fallback BOOLEAN NOT NULL DEFAULT false,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`)
	if err != nil {
		return fmt.Errorf("create generations table: %w", err)
	}

	var schemaAlters = []string{
		`ALTER TABLE generations ADD COLUMN IF NOT EXISTS input_mime_type TEXT`,
		`ALTER TABLE generations ADD COLUMN IF NOT EXISTS media_key TEXT`,
		`ALTER TABLE generations ADD COLUMN IF NOT EXISTS media_url TEXT`,
		`ALTER TABLE generations ADD COLUMN IF NOT EXISTS duration_ms BIGINT NOT NULL DEFAULT 0`,
		`CREATE INDEX IF NOT EXISTS generations_created_at_idx ON generations (created_at DESC)`,
	}
	for _, stmt := range schemaAlters {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("alter generations table: %w", err)
		}
	}

	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > historyLimit {
		return historyLimit
	}
	return limit
}
