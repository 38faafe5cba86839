package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dimitrije/ingressearch-api/internal/database"
	"github.com/dimitrije/ingressearch-api/internal/models"
	"github.com/dimitrije/ingressearch-api/internal/query"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Postgres is a Store backed by the documents schema in database.Migrate.
type Postgres struct {
	db *database.DB
}

func NewPostgres(db *database.DB) *Postgres {
	return &Postgres{db: db}
}

// translate maps driver errors onto the store's sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return ErrNotFound
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

func (s *Postgres) CreateCollection(ctx context.Context, name string) (*models.Collection, error) {
	var c models.Collection
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO collections (name)
		VALUES ($1)
		RETURNING id, name, created_at, updated_at
	`, name).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *Postgres) GetCollection(ctx context.Context, id int64) (*models.Collection, error) {
	var c models.Collection
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, name, created_at, updated_at
		FROM collections WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *Postgres) ListCollections(ctx context.Context) ([]models.Collection, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, name, created_at, updated_at
		FROM collections
		ORDER BY id
	`)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	collections := []models.Collection{}
	for rows.Next() {
		var c models.Collection
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, translate(err)
		}
		collections = append(collections, c)
	}
	return collections, translate(rows.Err())
}

func (s *Postgres) RenameCollection(ctx context.Context, id int64, name string) (*models.Collection, error) {
	var c models.Collection
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE collections
		SET name = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, name, created_at, updated_at
	`, name, id).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *Postgres) DeleteCollection(ctx context.Context, id int64) error {
	result, err := s.db.Pool.Exec(ctx, `DELETE FROM collections WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) CreateDocument(ctx context.Context, collectionID int64, data json.RawMessage) (*models.Document, error) {
	var d models.Document
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO documents (collection_id, data)
		VALUES ($1, $2)
		RETURNING id, collection_id, data, created_at, updated_at
	`, collectionID, data).Scan(&d.ID, &d.CollectionID, &d.Data, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (s *Postgres) GetDocument(ctx context.Context, collectionID, id int64) (*models.Document, error) {
	var d models.Document
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, collection_id, data, created_at, updated_at
		FROM documents WHERE collection_id = $1 AND id = $2
	`, collectionID, id).Scan(&d.ID, &d.CollectionID, &d.Data, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

// ListDocuments reads the collection with one statement, which Postgres
// runs against a single snapshot.
func (s *Postgres) ListDocuments(ctx context.Context, collectionID int64) ([]models.Document, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, collection_id, data, created_at, updated_at
		FROM documents WHERE collection_id = $1
		ORDER BY id
	`, collectionID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	documents := []models.Document{}
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.CollectionID, &d.Data, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, translate(err)
		}
		documents = append(documents, d)
	}
	return documents, translate(rows.Err())
}

func (s *Postgres) UpdateDocument(ctx context.Context, collectionID, id int64, data json.RawMessage) (*models.Document, error) {
	var d models.Document
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE documents
		SET data = $1, updated_at = NOW()
		WHERE collection_id = $2 AND id = $3
		RETURNING id, collection_id, data, created_at, updated_at
	`, data, collectionID, id).Scan(&d.ID, &d.CollectionID, &d.Data, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (s *Postgres) DeleteDocument(ctx context.Context, collectionID, id int64) error {
	result, err := s.db.Pool.Exec(ctx, `DELETE FROM documents WHERE collection_id = $1 AND id = $2`, collectionID, id)
	if err != nil {
		return translate(err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) CreateSavedSearch(ctx context.Context, collectionID int64, name string, q query.Query) (*models.SavedSearch, error) {
	encoded, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	return s.scanSavedSearch(s.db.Pool.QueryRow(ctx, `
		INSERT INTO saved_searches (collection_id, name, query)
		VALUES ($1, $2, $3)
		RETURNING id, collection_id, name, query, version, created_at, updated_at
	`, collectionID, name, json.RawMessage(encoded)))
}

func (s *Postgres) GetSavedSearch(ctx context.Context, collectionID, id int64) (*models.SavedSearch, error) {
	return s.scanSavedSearch(s.db.Pool.QueryRow(ctx, `
		SELECT id, collection_id, name, query, version, created_at, updated_at
		FROM saved_searches WHERE collection_id = $1 AND id = $2
	`, collectionID, id))
}

func (s *Postgres) ListSavedSearches(ctx context.Context, collectionID int64) ([]models.SavedSearch, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, collection_id, name, query, version, created_at, updated_at
		FROM saved_searches WHERE collection_id = $1
		ORDER BY id
	`, collectionID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	searches := []models.SavedSearch{}
	for rows.Next() {
		search, err := s.scanSavedSearch(rows)
		if err != nil {
			return nil, err
		}
		searches = append(searches, *search)
	}
	return searches, translate(rows.Err())
}

// UpdateSavedSearch only writes when the stored version still equals
// expectedVersion. A miss is told apart from a lost race by re-reading.
func (s *Postgres) UpdateSavedSearch(ctx context.Context, collectionID, id int64, name string, q query.Query, expectedVersion int) (*models.SavedSearch, error) {
	encoded, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	search, err := s.scanSavedSearch(s.db.Pool.QueryRow(ctx, `
		UPDATE saved_searches
		SET name = $1, query = $2, version = version + 1, updated_at = NOW()
		WHERE collection_id = $3 AND id = $4 AND version = $5
		RETURNING id, collection_id, name, query, version, created_at, updated_at
	`, name, json.RawMessage(encoded), collectionID, id, expectedVersion))
	if err == nil {
		return search, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return nil, s.checkVersionConflict(ctx, collectionID, id, expectedVersion)
}

func (s *Postgres) checkVersionConflict(ctx context.Context, collectionID, id int64, expectedVersion int) error {
	var currentVersion int
	err := s.db.Pool.QueryRow(ctx, `
		SELECT version FROM saved_searches WHERE collection_id = $1 AND id = $2
	`, collectionID, id).Scan(&currentVersion)
	if err != nil {
		return translate(err)
	}
	return fmt.Errorf("%w: version %d, expected %d", ErrConflict, currentVersion, expectedVersion)
}

func (s *Postgres) DeleteSavedSearch(ctx context.Context, collectionID, id int64) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM saved_searches WHERE collection_id = $1 AND id = $2`, collectionID, id)
	return translate(err)
}

func (s *Postgres) scanSavedSearch(row pgx.Row) (*models.SavedSearch, error) {
	var (
		search models.SavedSearch
		raw    json.RawMessage
	)
	err := row.Scan(&search.ID, &search.CollectionID, &search.Name, &raw, &search.Version, &search.CreatedAt, &search.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	if err := json.Unmarshal(raw, &search.Query); err != nil {
		return nil, fmt.Errorf("decode saved search %d: %w", search.ID, err)
	}
	return &search, nil
}
