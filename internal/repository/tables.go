package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type schemaRepository struct {
	db *sqlx.DB
}

func NewSchemaRepository(db *sqlx.DB) SchemaRepository {
	return &schemaRepository{db: db}
}

// CountTables reports how many tables exist in the public schema.
func (r *schemaRepository) CountTables(ctx context.Context) (int, error) {
	var count int

	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = 'public'
	`)
	if err != nil {
		return 0, fmt.Errorf("count tables: %w", err)
	}

	return count, nil
}
