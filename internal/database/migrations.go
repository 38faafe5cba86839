package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS collections (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL UNIQUE,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE
	)`,

	// JSON rather than JSONB keeps the key order clients wrote.
	`CREATE TABLE IF NOT EXISTS documents (
		id BIGSERIAL PRIMARY KEY,
		collection_id BIGINT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
		data JSON NOT NULL DEFAULT '{}',
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE
	)`,

	`CREATE TABLE IF NOT EXISTS saved_searches (
		id BIGSERIAL PRIMARY KEY,
		collection_id BIGINT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		query JSON NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE
	)`,

	`CREATE INDEX IF NOT EXISTS idx_documents_collection_id ON documents(collection_id, id)`,
	`CREATE INDEX IF NOT EXISTS idx_saved_searches_collection_id ON saved_searches(collection_id, id)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
