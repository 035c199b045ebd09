package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// RequiredTables lists the tables created by the schema bootstrap.
var RequiredTables = []string{"users", "posts"}

type schemaRepository struct {
	db *sqlx.DB
}

func NewSchemaRepository(db *sqlx.DB) SchemaRepository {
	return &schemaRepository{db: db}
}

// MissingTables returns the required tables absent from the public schema.
func (r *schemaRepository) MissingTables(ctx context.Context) ([]string, error) {
	var present []string

	err := r.db.SelectContext(ctx, &present, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = ANY($1)
	`, pq.Array(RequiredTables))
	if err != nil {
		return nil, fmt.Errorf("ошибка при проверке таблиц базы данных: %w", err)
	}

	found := make(map[string]bool, len(present))
	for _, name := range present {
		found[name] = true
	}

	missing := []string{}
	for _, name := range RequiredTables {
		if !found[name] {
			missing = append(missing, name)
		}
	}
	return missing, nil
}
